package app

import (
	"context"
	"sync"
	"time"

	"reactorviz/domain/core"
	"reactorviz/domain/reactor"
	"reactorviz/internal"
	"reactorviz/internal/errors"
	"reactorviz/ports"

	"golang.org/x/sync/singleflight"
)

// Dataset is one load of the source with derived metrics. Fingerprint
// changes whenever the loaded records change.
type Dataset struct {
	Entries     []reactor.Entry `json:"entries"`
	Source      string          `json:"source"`
	Fingerprint core.Hash       `json:"fingerprint"`
	Now         time.Time       `json:"now"`
	LoadedAt    time.Time       `json:"loaded_at"`
}

// Pipeline loads reactors, derives metrics and caches the result for ttl.
// A ttl of zero caches until Reload.
type Pipeline struct {
	source ports.ReactorSource
	clock  ports.Clock
	ttl    time.Duration
	logger *internal.Logger

	mu     sync.RWMutex
	cached *Dataset
	group  singleflight.Group
}

// NewPipeline creates a pipeline over source
func NewPipeline(source ports.ReactorSource, clock ports.Clock, ttl time.Duration, logger *internal.Logger) *Pipeline {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Pipeline{source: source, clock: clock, ttl: ttl, logger: logger}
}

// Dataset returns the cached dataset or loads it if missing or stale
func (p *Pipeline) Dataset(ctx context.Context) (*Dataset, error) {
	p.mu.RLock()
	if p.cached != nil && (p.ttl == 0 || time.Since(p.cached.LoadedAt) < p.ttl) {
		data := p.cached
		p.mu.RUnlock()
		return data, nil
	}
	p.mu.RUnlock()

	return p.Reload(ctx)
}

// Reload reads the source again. Concurrent callers share one load.
func (p *Pipeline) Reload(ctx context.Context) (*Dataset, error) {
	v, err, shared := p.group.Do("load", func() (interface{}, error) {
		return p.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		p.logger.Debug("[Pipeline] Shared in-flight load of %s", p.source.Describe())
	}
	return v.(*Dataset), nil
}

func (p *Pipeline) load(ctx context.Context) (*Dataset, error) {
	start := time.Now()
	reactors, err := p.source.Load(ctx)
	if err != nil {
		p.logger.Error("[Pipeline] Loading %s failed: %v", p.source.Describe(), err)
		return nil, err
	}

	fingerprint, err := reactor.Fingerprint(reactors)
	if err != nil {
		return nil, errors.DataError("failed to fingerprint records", err)
	}

	now := p.clock.Now()
	data := &Dataset{
		Entries:     reactor.DeriveAll(reactors, now),
		Source:      p.source.Describe(),
		Fingerprint: fingerprint,
		Now:         now,
		LoadedAt:    time.Now(),
	}

	p.mu.Lock()
	p.cached = data
	p.mu.Unlock()

	p.logger.Info("[Pipeline] Loaded %d reactors from %s (%s) in %.2fms",
		len(data.Entries), data.Source, fingerprint.Short(), float64(time.Since(start).Nanoseconds())/1e6)
	return data, nil
}
