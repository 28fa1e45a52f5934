package preload

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/stagekit/stagekit/blobcache"
	"github.com/stagekit/stagekit/fetch"
	"github.com/stagekit/stagekit/song"
)

const (
	DefaultConcurrency   = 2
	DefaultRetries       = 2
	DefaultRetryInterval = 500 * time.Millisecond
)

type Options struct {
	Window        int
	Concurrency   int
	Retries       uint64
	RetryInterval time.Duration
}

// Preloader warms the content cache around the current setlist position.
// It runs fire-and-forget: failures only cost future navigation smoothness,
// so they are retried a little, logged, and dropped. Each Replan cancels the
// previous plan's remaining work.
type Preloader struct {
	cache   *blobcache.Cache
	fetcher fetch.Func
	opts    Options
	logger  zerolog.Logger

	mux    sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPreloader(cache *blobcache.Cache, fetcher fetch.Func, opts Options, logger zerolog.Logger) *Preloader {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Retries == 0 {
		opts.Retries = DefaultRetries
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRetryInterval
	}
	return &Preloader{
		cache:   cache,
		fetcher: fetcher,
		opts:    opts,
		logger:  logger.With().Str("component", "preloader").Logger(),
		mux:     sync.Mutex{},
		cancel:  nil,
		done:    nil,
	}
}

// Replan recomputes the preload plan for the new position and executes it in
// the background. The caller is never blocked; the currently displayed
// song's own fetch does not go through the preloader and so is never starved
// by it.
func (p *Preloader) Replan(ctx context.Context, list *song.Setlist, current int) {
	plan := Plan(list, current, p.opts.Window)

	p.mux.Lock()
	if nil != p.cancel {
		p.cancel()
	}
	planCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.mux.Unlock()

	go p.execute(planCtx, plan, done)
}

// Close cancels any in-progress plan and waits for its workers to wind down.
func (p *Preloader) Close() {
	p.mux.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mux.Unlock()

	if nil != cancel {
		cancel()
		<-done
	}
}

func (p *Preloader) execute(ctx context.Context, plan []song.Fingerprint, done chan<- struct{}) {
	defer close(done)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for _, fp := range plan {
		if p.cache.Contains(fp) || p.cache.InFlight(fp) {
			continue
		}
		g.Go(func() error {
			p.warm(ctx, fp)
			return nil
		})
	}

	if err := g.Wait(); nil != err {
		p.logger.Debug().Err(err).Msg("Preload plan aborted")
	}
}

func (p *Preloader) warm(ctx context.Context, fp song.Fingerprint) {
	op := func() error {
		_, err := p.cache.GetOrFetch(ctx, fp, p.fetcher)
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.opts.RetryInterval), p.opts.Retries),
		ctx,
	)
	if err := backoff.Retry(op, policy); nil != err {
		// Swallowed: a failed preload only means a slower future navigation.
		p.logger.Debug().Err(err).Str("fingerprint", fp.String()).Msg("Preload failed")
		return
	}
	p.logger.Trace().Str("fingerprint", fp.String()).Msg("Preloaded content")
}
