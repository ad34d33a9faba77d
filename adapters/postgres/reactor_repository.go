package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"reactorviz/domain/core"
	"reactorviz/domain/reactor"
	"reactorviz/internal/errors"
	"reactorviz/internal/migration"
	"reactorviz/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// entryRow is the reactor_entries row layout
type entryRow struct {
	RunID                   string          `db:"run_id"`
	SourceRow               int             `db:"source_row"`
	Country                 string          `db:"country"`
	Name                    string          `db:"name"`
	Block                   string          `db:"block"`
	NetCapacityMW           sql.NullFloat64 `db:"net_capacity_mw"`
	ConstructionStart       sql.NullTime    `db:"construction_start"`
	GridSync                sql.NullTime    `db:"grid_sync"`
	CommercialOperation     sql.NullTime    `db:"commercial_operation"`
	Shutdown                sql.NullTime    `db:"shutdown"`
	Abandoned               sql.NullTime    `db:"abandoned"`
	Status                  string          `db:"status"`
	RawStatus               string          `db:"raw_status"`
	ClosingAge              sql.NullFloat64 `db:"closing_age"`
	ConstructionTime        sql.NullFloat64 `db:"construction_time"`
	ConstructionAbortedTime sql.NullFloat64 `db:"construction_aborted_time"`
	OperationalAge          sql.NullFloat64 `db:"operational_age"`
}

const entryColumns = `run_id, source_row, country, name, block, net_capacity_mw,
	construction_start, grid_sync, commercial_operation, shutdown, abandoned,
	status, raw_status, closing_age, construction_time, construction_aborted_time, operational_age`

// reactorRepository implements ports.RunRepository on sqlx
type reactorRepository struct {
	db       *sqlx.DB
	migrator migration.Migrator
}

// NewReactorRepository creates a new publication repository
func NewReactorRepository(db *sqlx.DB) ports.RunRepository {
	return &reactorRepository{db: db, migrator: migration.NewRunner()}
}

// Migrate creates the schema if needed
func (r *reactorRepository) Migrate(ctx context.Context) error {
	return r.migrator.Run(ctx, r.db)
}

// SaveRun writes the run and all entries in one transaction. A missing run
// ID or timestamp is filled in.
func (r *reactorRepository) SaveRun(ctx context.Context, run *reactor.ImportRun, entries []reactor.Entry) error {
	if run.ID == "" {
		run.ID = core.NewID().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Count = len(entries)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO import_runs (id, source, reactor_count, fingerprint, created_at)
		VALUES (:id, :source, :reactor_count, :fingerprint, :created_at)
	`, run)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return errors.InvalidInput(fmt.Sprintf("import run %s already exists", run.ID))
		}
		return errors.DatabaseError("failed to insert import run", err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO reactor_entries (`+entryColumns+`)
		VALUES (:run_id, :source_row, :country, :name, :block, :net_capacity_mw,
			:construction_start, :grid_sync, :commercial_operation, :shutdown, :abandoned,
			:status, :raw_status, :closing_age, :construction_time, :construction_aborted_time, :operational_age)
	`)
	if err != nil {
		return errors.DatabaseError("failed to prepare entry insert", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, toRow(run.ID, e)); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert reactor row %d", e.Reactor.Row), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit import run", err)
	}
	return nil
}

// ListRun returns the entries of a run in source row order
func (r *reactorRepository) ListRun(ctx context.Context, id string) ([]reactor.Entry, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT COUNT(*) FROM import_runs WHERE id = ?`), id)
	if err != nil {
		return nil, errors.DatabaseError("failed to look up import run", err)
	}
	if exists == 0 {
		return nil, errors.WithCode(errors.CodeNotFound, core.NewNotFoundError(core.ErrRunNotFound, id))
	}

	var rows []entryRow
	err = r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT `+entryColumns+`
		FROM reactor_entries
		WHERE run_id = ?
		ORDER BY source_row
	`), id)
	if err != nil {
		return nil, errors.DatabaseError("failed to list reactor entries", err)
	}

	entries := make([]reactor.Entry, len(rows))
	for i, row := range rows {
		entries[i] = fromRow(row)
	}
	return entries, nil
}

// LatestRun returns the most recently created run
func (r *reactorRepository) LatestRun(ctx context.Context) (*reactor.ImportRun, error) {
	var run reactor.ImportRun
	err := r.db.GetContext(ctx, &run, `
		SELECT id, source, reactor_count, fingerprint, created_at
		FROM import_runs
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.WithCode(errors.CodeNotFound, core.ErrRunNotFound)
		}
		return nil, errors.DatabaseError("failed to get latest import run", err)
	}
	run.CreatedAt = run.CreatedAt.UTC()
	return &run, nil
}

func toRow(runID string, e reactor.Entry) entryRow {
	r, m := e.Reactor, e.Metrics
	return entryRow{
		RunID:                   runID,
		SourceRow:               r.Row,
		Country:                 r.Country,
		Name:                    r.Name,
		Block:                   r.Block,
		NetCapacityMW:           sql.NullFloat64{Float64: r.NetCapacityMW, Valid: r.HasCapacity},
		ConstructionStart:       nullTime(r.ConstructionStart),
		GridSync:                nullTime(r.GridSync),
		CommercialOperation:     nullTime(r.CommercialOperation),
		Shutdown:                nullTime(r.Shutdown),
		Abandoned:               nullTime(r.Abandoned),
		Status:                  string(r.Status),
		RawStatus:               r.RawStatus,
		ClosingAge:              nullFloat(m.ClosingAge),
		ConstructionTime:        nullFloat(m.ConstructionTime),
		ConstructionAbortedTime: nullFloat(m.ConstructionAbortedTime),
		OperationalAge:          nullFloat(m.OperationalAge),
	}
}

// fromRow rebuilds an entry. Stored durations are kept as published; the
// year fields are recomputed from the dates.
func fromRow(row entryRow) reactor.Entry {
	r := reactor.Reactor{
		Row:                 row.SourceRow,
		Country:             row.Country,
		Name:                row.Name,
		Block:               row.Block,
		NetCapacityMW:       row.NetCapacityMW.Float64,
		HasCapacity:         row.NetCapacityMW.Valid,
		ConstructionStart:   dateOf(row.ConstructionStart),
		GridSync:            dateOf(row.GridSync),
		CommercialOperation: dateOf(row.CommercialOperation),
		Shutdown:            dateOf(row.Shutdown),
		Abandoned:           dateOf(row.Abandoned),
		Status:              reactor.Status(row.Status),
		RawStatus:           row.RawStatus,
	}
	m := reactor.Derive(r, time.Time{})
	m.ClosingAge = floatOf(row.ClosingAge)
	m.ConstructionTime = floatOf(row.ConstructionTime)
	m.ConstructionAbortedTime = floatOf(row.ConstructionAbortedTime)
	m.OperationalAge = floatOf(row.OperationalAge)
	return reactor.Entry{Reactor: r, Metrics: m}
}

func nullTime(d core.Date) sql.NullTime {
	return sql.NullTime{Time: d.Time, Valid: d.Valid}
}

func dateOf(t sql.NullTime) core.Date {
	if !t.Valid {
		return core.NullDate()
	}
	y, m, d := t.Time.Date()
	return core.DateOf(y, m, d)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatOf(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
