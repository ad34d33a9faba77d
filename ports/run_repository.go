package ports

import (
	"context"

	"reactorviz/domain/reactor"
)

// RunRepository stores published datasets. Each publication is an import run.
type RunRepository interface {
	Migrate(ctx context.Context) error
	SaveRun(ctx context.Context, run *reactor.ImportRun, entries []reactor.Entry) error
	ListRun(ctx context.Context, id string) ([]reactor.Entry, error)
	LatestRun(ctx context.Context) (*reactor.ImportRun, error)
}
