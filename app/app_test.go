package app

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"reactorviz/adapters/excel"
	"reactorviz/adapters/postgres"
	"reactorviz/adapters/static"
	"reactorviz/domain/core"
	"reactorviz/domain/reactor"
	"reactorviz/internal"
	"reactorviz/internal/config"
	"reactorviz/internal/errors"
	"reactorviz/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var referenceDate = time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	reactors []reactor.Reactor
	err      error
	loads    atomic.Int32
}

func (f *fakeSource) Load(ctx context.Context) ([]reactor.Reactor, error) {
	f.loads.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.reactors, nil
}

func (f *fakeSource) Describe() string { return "fixture.xlsx" }

func fixtureReactors() []reactor.Reactor {
	return []reactor.Reactor{
		{Row: 2, Country: "Germany", Name: "Isar", Block: "2", NetCapacityMW: 1410, HasCapacity: true,
			ConstructionStart: core.DateOf(1982, 9, 15), CommercialOperation: core.DateOf(1988, 4, 9),
			Shutdown: core.DateOf(2023, 4, 15), Status: reactor.StatusDecommissioned},
		{Row: 3, Country: "France", Name: "Flamanville", Block: "1", NetCapacityMW: 1330, HasCapacity: true,
			ConstructionStart: core.DateOf(1979, 12, 1), CommercialOperation: core.DateOf(1986, 12, 4),
			Status: reactor.StatusOperating},
		{Row: 4, Country: "France", Name: "Fessenheim", Block: "1", NetCapacityMW: 880, HasCapacity: true,
			ConstructionStart: core.DateOf(1971, 9, 1), CommercialOperation: core.DateOf(1978, 1, 1),
			Shutdown: core.DateOf(2020, 2, 22), Status: reactor.StatusDecommissioned},
		{Row: 5, Country: "Austria", Name: "Zwentendorf", Block: "1", NetCapacityMW: 692, HasCapacity: true,
			ConstructionStart: core.DateOf(1972, 4, 1), Shutdown: core.DateOf(1978, 12, 15),
			Abandoned: core.DateOf(1978, 12, 15), Status: reactor.StatusAbandoned},
		{Row: 6, Country: "Belgium", Name: "Doel", Block: "3", NetCapacityMW: 1006, HasCapacity: true,
			ConstructionStart: core.DateOf(1975, 1, 1), CommercialOperation: core.DateOf(1982, 10, 1),
			Shutdown: core.DateOf(2022, 9, 23), Status: reactor.StatusDecommissioned},
		{Row: 7, Country: "Czech Republic", Name: "Temelín", Block: "1", NetCapacityMW: 1026, HasCapacity: true,
			ConstructionStart: core.DateOf(1987, 2, 1), CommercialOperation: core.DateOf(2002, 6, 10),
			Status: reactor.StatusOperating},
	}
}

type fixture struct {
	source   *fakeSource
	pipeline *Pipeline
	presets  *config.Presets
	buckets  *BucketService
	timeline *TimelineService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	presets, err := config.DefaultPresets()
	require.NoError(t, err)
	palette, err := presets.Palette()
	require.NoError(t, err)

	src := &fakeSource{reactors: fixtureReactors()}
	pipeline := NewPipeline(src, ports.FixedClock{At: referenceDate}, 0, internal.NewNopLogger())
	buckets := NewBucketService(pipeline, presets, palette)
	return &fixture{
		source:   src,
		pipeline: pipeline,
		presets:  presets,
		buckets:  buckets,
		timeline: NewTimelineService(pipeline, presets, palette, nil),
	}
}

func TestPipeline_CachesUntilReload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.pipeline.Dataset(ctx)
	require.NoError(t, err)
	second, err := f.pipeline.Dataset(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.EqualValues(t, 1, f.source.loads.Load())
	assert.Equal(t, referenceDate, first.Now)
	assert.Equal(t, "fixture.xlsx", first.Source)
	assert.Len(t, first.Entries, 6)
	assert.False(t, first.Fingerprint.IsEmpty())

	_, err = f.pipeline.Reload(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.source.loads.Load())
}

func TestPipeline_ExpiresAfterTTL(t *testing.T) {
	src := &fakeSource{reactors: fixtureReactors()}
	p := NewPipeline(src, ports.FixedClock{At: referenceDate}, time.Nanosecond, internal.NewNopLogger())

	_, err := p.Dataset(context.Background())
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = p.Dataset(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.loads.Load())
}

func TestPipeline_ConcurrentCallers(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.pipeline.Dataset(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, f.source.loads.Load(), int32(8))
	assert.GreaterOrEqual(t, f.source.loads.Load(), int32(1))
}

func TestPipeline_SourceError(t *testing.T) {
	boom := stderrors.New("sheet locked")
	p := NewPipeline(&fakeSource{err: boom}, nil, 0, internal.NewNopLogger())
	_, err := p.Dataset(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestBucketService_ClosingAge(t *testing.T) {
	f := newFixture(t)
	c, err := f.buckets.Build(context.Background(), reactor.MetricClosingAge)
	require.NoError(t, err)

	// Zwentendorf never operated (0), Isar and Doel close at 35 and 40,
	// Fessenheim at 42.
	assert.Equal(t, []int{1, 0, 0, 2, 1}, c.Histogram.Counts)
	assert.Equal(t, 4, c.Histogram.Total)
	assert.Len(t, c.Donut.Slices, 5)
	assert.Len(t, c.Figure.Data, 5)
	assert.Equal(t, "barpolar", c.Figure.Data[0].Type)
}

func TestBucketService_BuildAll(t *testing.T) {
	f := newFixture(t)
	charts, err := f.buckets.BuildAll(context.Background())
	require.NoError(t, err)
	require.Len(t, charts, len(f.presets.Metrics()))
	assert.Equal(t, reactor.MetricClosingAge, charts[0].Metric)
}

func TestTimelineService_DefaultWindow(t *testing.T) {
	f := newFixture(t)
	c, err := f.timeline.Build(context.Background(), TimelineRequest{Window: f.timeline.DefaultWindow()})
	require.NoError(t, err)

	// Flamanville was commissioned before 1990 and Zwentendorf never ran.
	assert.Equal(t, 4, c.Layout.Count)
	require.Len(t, c.Layout.Series, 4)
	assert.Equal(t, "Germany", c.Layout.Series[0].Country)
	assert.Equal(t, "Czech Republic", c.Layout.Series[3].Country)
	assert.NotNil(t, c.Layout.Regression)
	assert.Equal(t, 1989, c.Layout.XMin.Year())
	assert.Equal(t, 2024, c.Layout.XMax.Year())
	assert.Equal(t, -50.0, c.Layout.YMin)
	assert.Equal(t, 30.0, c.Layout.YMax)
	assert.Contains(t, c.Labels.Title, "since 1990")
}

func TestTimelineService_Dashboard(t *testing.T) {
	f := newFixture(t)
	window := reactor.YearWindow{Start: 2021, End: 2023}
	c, err := f.timeline.Build(context.Background(), TimelineRequest{Window: window, Dashboard: true})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Layout.Count)
	assert.Equal(t, 2021, c.Layout.XMin.Year())
	assert.Equal(t, 2023, c.Layout.XMax.Year())
	assert.Equal(t, 1980, f.timeline.DashboardWindow().Start)
	assert.Equal(t, 5, f.timeline.MarkStep())
}

func TestTimelineService_InvalidWindow(t *testing.T) {
	f := newFixture(t)
	_, err := f.timeline.Build(context.Background(), TimelineRequest{Window: reactor.YearWindow{Start: 2020, End: 1990}})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.ErrorIs(t, err, core.ErrInvalidWindow)
}

func TestRenderService_RenderAll(t *testing.T) {
	f := newFixture(t)
	dir := filepath.Join(t.TempDir(), "out")
	svc := NewRenderService(f.buckets, f.timeline, static.NewRenderer(), "svg", internal.NewNopLogger())

	manifest, err := svc.RenderAll(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, manifest.ID, 36)
	data, err := f.pipeline.Dataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, data.Fingerprint, manifest.Fingerprint)
	assert.Equal(t, referenceDate, manifest.Now)
	assert.True(t, manifest.CreatedAt.After(referenceDate))
	assert.Len(t, manifest.Artifacts, 2*(len(f.presets.Metrics())+1))
	for _, a := range manifest.Artifacts {
		info, err := os.Stat(a.Path)
		require.NoError(t, err, a.Path)
		assert.Positive(t, info.Size(), a.Path)
	}
	assert.FileExists(t, filepath.Join(dir, ManifestFile))
	assert.FileExists(t, filepath.Join(dir, "timeline.svg"))
	assert.FileExists(t, filepath.Join(dir, "closing_age.html"))
}

func TestReportService(t *testing.T) {
	f := newFixture(t)
	svc := NewReportService(f.buckets, f.timeline)

	md, err := svc.Markdown(context.Background())
	require.NoError(t, err)
	assert.Contains(t, md, "# Evolution of Nuclear Power Plants in Europe")
	assert.Contains(t, md, "6 reactor units from `fixture.xlsx`, ages as of 2023-04-15.")
	assert.Contains(t, md, "| Decommissioned | 3 | 3296 |")
	assert.Contains(t, md, "- Decommissioned: 3")
	assert.Contains(t, md, "Age at decommissioning trend")

	html, err := svc.HTML(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")
	assert.Contains(t, string(html), "<h2 id=\"status\">Status</h2>")
}

func TestExportService(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, NewExportService(f.buckets, excel.NewWriter(internal.NewNopLogger())).Export(context.Background(), path))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(excel.MetricsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 7)
}

type memoryRepo struct {
	migrated bool
	runs     []*reactor.ImportRun
	entries  map[string][]reactor.Entry
}

func (m *memoryRepo) Migrate(ctx context.Context) error { m.migrated = true; return nil }

func (m *memoryRepo) SaveRun(ctx context.Context, run *reactor.ImportRun, entries []reactor.Entry) error {
	run.ID = "run-" + string(rune('a'+len(m.runs)))
	run.Count = len(entries)
	m.runs = append(m.runs, run)
	if m.entries == nil {
		m.entries = map[string][]reactor.Entry{}
	}
	m.entries[run.ID] = entries
	return nil
}

func (m *memoryRepo) ListRun(ctx context.Context, id string) ([]reactor.Entry, error) {
	return m.entries[id], nil
}

func (m *memoryRepo) LatestRun(ctx context.Context) (*reactor.ImportRun, error) {
	if len(m.runs) == 0 {
		return nil, errors.WithCode(errors.CodeNotFound, core.ErrRunNotFound)
	}
	return m.runs[len(m.runs)-1], nil
}

func TestPublishService(t *testing.T) {
	f := newFixture(t)
	repo := &memoryRepo{}
	svc := NewPublishService(f.pipeline, repo, internal.NewNopLogger())

	before := time.Now().UTC()
	run, err := svc.Publish(context.Background())
	require.NoError(t, err)
	assert.True(t, repo.migrated)
	assert.Equal(t, 6, run.Count)
	assert.False(t, run.CreatedAt.Before(before))
	assert.Equal(t, "fixture.xlsx", run.Source)
	assert.Len(t, run.Fingerprint, 64)

	latest, entries, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
	assert.Len(t, entries, 6)
}

func TestPublishService_NoDatabase(t *testing.T) {
	f := newFixture(t)
	_, err := NewPublishService(f.pipeline, nil, internal.NewNopLogger()).Publish(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

type mockRunRepository struct {
	mock.Mock
}

func (m *mockRunRepository) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockRunRepository) SaveRun(ctx context.Context, run *reactor.ImportRun, entries []reactor.Entry) error {
	return m.Called(ctx, run, entries).Error(0)
}

func (m *mockRunRepository) ListRun(ctx context.Context, id string) ([]reactor.Entry, error) {
	args := m.Called(ctx, id)
	entries, _ := args.Get(0).([]reactor.Entry)
	return entries, args.Error(1)
}

func (m *mockRunRepository) LatestRun(ctx context.Context) (*reactor.ImportRun, error) {
	args := m.Called(ctx)
	run, _ := args.Get(0).(*reactor.ImportRun)
	return run, args.Error(1)
}

func TestPublishService_MigrationFailure(t *testing.T) {
	f := newFixture(t)
	repo := &mockRunRepository{}
	repo.On("Migrate", mock.Anything).Return(errors.DatabaseError("failed to create import_runs table", stderrors.New("permission denied")))

	_, err := NewPublishService(f.pipeline, repo, internal.NewNopLogger()).Publish(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	repo.AssertNotCalled(t, "SaveRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishService_SavesFingerprintedRun(t *testing.T) {
	f := newFixture(t)
	data, err := f.pipeline.Dataset(context.Background())
	require.NoError(t, err)

	repo := &mockRunRepository{}
	repo.On("Migrate", mock.Anything).Return(nil)
	repo.On("SaveRun", mock.Anything, mock.MatchedBy(func(run *reactor.ImportRun) bool {
		return run.Source == "fixture.xlsx" &&
			run.Fingerprint == data.Fingerprint.String() &&
			run.CreatedAt.After(referenceDate)
	}), mock.AnythingOfType("[]reactor.Entry")).Return(nil).Once()

	_, err = NewPublishService(f.pipeline, repo, internal.NewNopLogger()).Publish(context.Background())
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPublishService_RepublishUnderPinnedDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	db, err := postgres.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := NewPublishService(f.pipeline, postgres.NewReactorRepository(db), internal.NewNopLogger())

	first, err := svc.Publish(ctx)
	require.NoError(t, err)
	second, err := svc.Publish(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.CreatedAt.Equal(referenceDate))

	latest, entries, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Len(t, entries, 6)
}

func TestPublishService_LatestNotFound(t *testing.T) {
	f := newFixture(t)
	repo := &mockRunRepository{}
	repo.On("LatestRun", mock.Anything).Return(nil, errors.WithCode(errors.CodeNotFound, core.ErrRunNotFound))

	_, _, err := NewPublishService(f.pipeline, repo, internal.NewNopLogger()).Latest(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.ErrorIs(t, err, core.ErrNotFound)
	repo.AssertNotCalled(t, "ListRun", mock.Anything, mock.Anything)
}
