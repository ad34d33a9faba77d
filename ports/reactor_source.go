package ports

import (
	"context"

	"reactorviz/domain/reactor"
)

// ReactorSource loads reactor records from wherever they live
type ReactorSource interface {
	Load(ctx context.Context) ([]reactor.Reactor, error)
	// Describe names the source for logs and publication runs
	Describe() string
}
