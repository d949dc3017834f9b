package tileset

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/pixelatelabs/mapforge/internal/logger"
	"github.com/pixelatelabs/mapforge/internal/pixellab"
	"github.com/pixelatelabs/mapforge/internal/store"
	"github.com/pixelatelabs/mapforge/internal/wang"
)

// Service is the slice of the generation API the manager needs.
// *pixellab.Client satisfies it; tests substitute stubs.
type Service interface {
	CreateTileset(ctx context.Context, req pixellab.TilesetRequest) (string, error)
	GetTileset(ctx context.Context, jobID string) (*pixellab.TilesetJob, error)
}

// Options configure a Manager.
type Options struct {
	// PollInterval is the initial delay between job status polls.
	PollInterval time.Duration

	// MaxWait is the default ceiling on waiting for one job.
	MaxWait time.Duration

	// MaxChainTerrains caps the terrain list length in CreateChain.
	MaxChainTerrains int
}

// DefaultOptions returns the default manager options.
func DefaultOptions() Options {
	return Options{
		PollInterval:     5 * time.Second,
		MaxWait:          5 * time.Minute,
		MaxChainTerrains: 16,
	}
}

// inflight tracks one in-progress generation so concurrent callers for
// the same cache key share a single paid request.
type inflight struct {
	done   chan struct{}
	result *TilePairResult
	err    error
}

// Manager generates Wang tilesets through the external service and
// caches completed results in the store. Each Manager owns its own
// service client and cache handle; there is no process-wide state.
type Manager struct {
	svc  Service
	st   store.Store
	opts Options

	mu       sync.Mutex
	inflight map[string]*inflight
}

// NewManager creates a Manager using the given service client and store.
func NewManager(svc Service, st store.Store, opts Options) *Manager {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultOptions().PollInterval
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultOptions().MaxWait
	}
	if opts.MaxChainTerrains <= 0 {
		opts.MaxChainTerrains = DefaultOptions().MaxChainTerrains
	}
	return &Manager{
		svc:      svc,
		st:       st,
		opts:     opts,
		inflight: make(map[string]*inflight),
	}
}

// RequestPair submits a tileset generation job for the ordered terrain
// pair. Nothing is polled or persisted until the job is awaited.
func (m *Manager) RequestPair(ctx context.Context, lower, upper string, params Params) (*Job, error) {
	if lower == "" || upper == "" {
		return nil, &pixellab.RequestError{Message: "both terrain descriptions are required"}
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	jobID, err := m.svc.CreateTileset(ctx, params.request(lower, upper))
	if err != nil {
		return nil, fmt.Errorf("requesting tileset %q -> %q: %w", lower, upper, err)
	}

	return &Job{
		ID:        jobID,
		Lower:     lower,
		Upper:     upper,
		Params:    params,
		CacheKey:  CacheKey(lower, upper, params),
		CreatedAt: time.Now(),
	}, nil
}

// AwaitCompletion polls the job until it completes, fails, or maxWait
// elapses. The poll delay starts at pollInterval and backs off by half
// again each round, capped at ten times the initial interval. On
// timeout the job handle stays valid and the wait can be resumed;
// cancelling the context stops the local loop without retracting the
// job from the service.
func (m *Manager) AwaitCompletion(ctx context.Context, job *Job, maxWait, pollInterval time.Duration) (*TilePairResult, error) {
	if pollInterval <= 0 {
		pollInterval = m.opts.PollInterval
	}
	if maxWait <= 0 {
		maxWait = m.opts.MaxWait
	}

	deadline := time.Now().Add(maxWait)
	interval := pollInterval
	maxInterval := 10 * pollInterval

	logger.Debug("Waiting for tileset job", "job_id", job.ID, "max_wait", maxWait)

	for {
		state, err := m.svc.GetTileset(ctx, job.ID)
		if err != nil {
			return nil, fmt.Errorf("polling tileset job %s: %w", job.ID, err)
		}

		switch state.Status {
		case pixellab.StatusCompleted:
			result, err := buildResult(job, state)
			if err != nil {
				return nil, err
			}
			logger.Info("Tileset job completed", "job_id", job.ID, "pair_id", job.CacheKey)
			return result, nil

		case pixellab.StatusFailed:
			return nil, &pixellab.FailedError{JobID: job.ID, Message: state.Error}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &pixellab.TimeoutError{JobID: job.ID, Waited: maxWait}
		}

		sleep := interval
		if sleep > remaining {
			sleep = remaining
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		if interval = interval * 3 / 2; interval > maxInterval {
			interval = maxInterval
		}
	}
}

// GetOrCreate returns the tileset for the pair, generating it only when
// no complete cached result exists. At most one generation per cache
// key is in flight at a time; concurrent callers for the same key share
// the same wait instead of issuing duplicate requests.
func (m *Manager) GetOrCreate(ctx context.Context, lower, upper string, params Params) (*TilePairResult, error) {
	key := CacheKey(lower, upper, params)

	if cached, ok, err := m.loadCached(key); err != nil {
		return nil, err
	} else if ok {
		logger.Debug("Tileset cache hit", "pair_id", key, "lower", lower, "upper", upper)
		return cached, nil
	}

	m.mu.Lock()
	if entry, ok := m.inflight[key]; ok {
		m.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-entry.done:
			return entry.result, entry.err
		}
	}
	entry := &inflight{done: make(chan struct{})}
	m.inflight[key] = entry
	m.mu.Unlock()

	result, err := m.generate(ctx, lower, upper, params, key)

	entry.result, entry.err = result, err
	close(entry.done)

	m.mu.Lock()
	delete(m.inflight, key)
	m.mu.Unlock()

	return result, err
}

// generate runs the full request/await/persist path for a cache key.
func (m *Manager) generate(ctx context.Context, lower, upper string, params Params, key string) (*TilePairResult, error) {
	job, err := m.RequestPair(ctx, lower, upper, params)
	if err != nil {
		return nil, err
	}

	result, err := m.AwaitCompletion(ctx, job, m.opts.MaxWait, m.opts.PollInterval)
	if err != nil {
		return nil, err
	}

	if err := m.persist(result); err != nil {
		return nil, fmt.Errorf("persisting tileset %s: %w", key, err)
	}

	return result, nil
}

// CreateChain generates one tileset per adjacent terrain pair. Each
// pair's lower terrain reuses the previous pair's upper base tile, so
// maps painted with consecutive chain entries share a consistent
// boundary. Pairs completed before a failure stay cached, making a
// retried chain cheap.
func (m *Manager) CreateChain(ctx context.Context, terrains []string, params Params) (TerrainChain, error) {
	if len(terrains) < 2 {
		return nil, &pixellab.RequestError{Message: "a terrain chain needs at least 2 terrains"}
	}
	if len(terrains) > m.opts.MaxChainTerrains {
		return nil, &pixellab.RequestError{
			Message: fmt.Sprintf("terrain chain of %d exceeds the limit of %d", len(terrains), m.opts.MaxChainTerrains),
		}
	}

	chain := make(TerrainChain, 0, len(terrains)-1)
	lowerBase := ""

	for i := 0; i < len(terrains)-1; i++ {
		lower, upper := terrains[i], terrains[i+1]

		pairParams := params
		pairParams.LowerBaseTileID = lowerBase

		logger.Info("Creating chain tileset", "pair", i+1, "of", len(terrains)-1, "lower", lower, "upper", upper)

		result, err := m.GetOrCreate(ctx, lower, upper, pairParams)
		if err != nil {
			return nil, fmt.Errorf("chain pair %d (%q -> %q): %w", i, lower, upper, err)
		}

		lowerBase = result.UpperBaseTileID
		chain = append(chain, result)
	}

	return chain, nil
}

// buildResult decodes a completed job into an immutable TilePairResult.
func buildResult(job *Job, state *pixellab.TilesetJob) (*TilePairResult, error) {
	if len(state.Tiles) != wang.TileCount {
		return nil, fmt.Errorf("tileset job %s completed with %d tiles, expected %d",
			job.ID, len(state.Tiles), wang.TileCount)
	}

	result := &TilePairResult{
		PairID:          job.CacheKey,
		JobID:           job.ID,
		Lower:           job.Lower,
		Upper:           job.Upper,
		TileSize:        job.Params.TileSize,
		Status:          StatusReady,
		Tiles:           make(map[int]image.Image, wang.TileCount),
		LowerBaseTileID: state.LowerBaseTileID,
		UpperBaseTileID: state.UpperBaseTileID,
		Params:          job.Params,
		CreatedAt:       time.Now(),
		encoded:         state.Tiles,
	}

	for i, raw := range state.Tiles {
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decoding tile %d of job %s: %w", i, job.ID, err)
		}
		result.Tiles[i] = img
	}

	return result, nil
}
