package perform

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stagekit/stagekit/blobcache"
	"github.com/stagekit/stagekit/config"
	"github.com/stagekit/stagekit/controls"
	"github.com/stagekit/stagekit/errutil"
	"github.com/stagekit/stagekit/fetch"
	"github.com/stagekit/stagekit/log"
	"github.com/stagekit/stagekit/nav"
	"github.com/stagekit/stagekit/preload"
	"github.com/stagekit/stagekit/resource"
	"github.com/stagekit/stagekit/song"
)

type Options struct {
	StartIndex int
	Cache      config.Cache
	Preload    config.Preload
	Fetcher    fetch.Func
	// OnUpdate is invoked (off the caller's goroutine) whenever an
	// asynchronous fetch settles and the view should be re-read.
	OnUpdate func()
}

// Session drives one performance: it owns the navigation position, the
// on-stage controls, the content cache and its preloader, and the registry
// of live blob handles. All of it is torn down exactly once by Close.
//
// Index changes are optimistic: the position is observable immediately while
// the new song's content resolves in the background. A fetch that settles
// after the performer has already moved on is ignored.
type Session struct {
	mux       sync.Mutex
	list      *song.Setlist
	nav       *nav.Navigator
	controls  *controls.Controls
	cache     *blobcache.Cache
	tracker   *resource.Tracker
	preloader *preload.Preloader
	fetcher   fetch.Func
	logger    zerolog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	onUpdate  func()

	currentFP    song.Fingerprint
	currentEntry *blobcache.Entry
	loading      bool
	failure      *Failure
}

func NewSession(list *song.Setlist, opts Options, logger zerolog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{ //nolint:exhaustruct
		list:    list,
		fetcher: opts.Fetcher,
		logger:  logger.With().Str("component", "session").Logger(),
		ctx:     ctx,
		cancel:  cancel,

		onUpdate: opts.OnUpdate,
	}

	s.tracker = resource.NewTracker(logger)
	s.cache = blobcache.New(blobcache.Options{
		MaxBytes:   opts.Cache.MaxBytes,
		TTL:        opts.Cache.TTL.Std(),
		SweepEvery: opts.Cache.SweepEvery.Std(),
		OnEvict:    s.onEvict,
	}, logger)
	s.cache.Start()

	s.preloader = preload.NewPreloader(s.cache, opts.Fetcher, preload.Options{
		Window:        opts.Preload.Window,
		Concurrency:   opts.Preload.Concurrency,
		Retries:       opts.Preload.Retries,
		RetryInterval: opts.Preload.RetryInterval.Std(),
	}, logger)

	s.nav = nav.New(list.Len(), opts.StartIndex)

	bpm := 0
	if cur := list.At(s.nav.Current()); nil != cur {
		bpm = cur.BPM
	}
	s.controls = controls.New(bpm, logger)

	s.mux.Lock()
	s.loadCurrentLocked()
	current := s.nav.Current()
	s.mux.Unlock()

	if current >= 0 {
		s.preloader.Replan(ctx, list, current)
	}
	return s
}

// SetOnUpdate replaces the async-change callback. Useful when the
// presentation layer is constructed after the session.
func (s *Session) SetOnUpdate(fn func()) {
	s.mux.Lock()
	s.onUpdate = fn
	s.mux.Unlock()
}

func (s *Session) Next() {
	s.move(func() bool { return s.nav.Next() })
}

func (s *Session) Previous() {
	s.move(func() bool { return s.nav.Previous() })
}

func (s *Session) GoTo(index int) error {
	var err error
	s.move(func() bool {
		if err = s.nav.GoTo(index); nil != err {
			return false
		}
		return true
	})
	return err
}

func (s *Session) move(step func() bool) {
	s.mux.Lock()
	if !step() {
		s.mux.Unlock()
		return
	}
	prevFP := s.currentFP
	current := s.nav.Current()
	if cur := s.list.At(current); nil != cur {
		s.controls.SetBPM(cur.BPM)
	}
	s.failure = nil
	s.loadCurrentLocked()
	if prevFP != "" && prevFP != s.currentFP && !s.cache.Contains(prevFP) {
		// The previous song's backing entry is already gone (evicted or
		// expired while it was displayed); its deferred handle release
		// happens now.
		s.tracker.Release(blobID(prevFP))
	}
	s.mux.Unlock()

	s.preloader.Replan(s.ctx, s.list, current)
}

// loadCurrentLocked resolves the new current song's content: text songs are
// synchronous, cached binary songs resolve immediately, anything else starts
// a background fetch and leaves the view in a loading state.
func (s *Session) loadCurrentLocked() {
	s.currentEntry = nil
	s.currentFP = ""
	s.loading = false

	cur := s.list.At(s.nav.Current())
	if cur == nil {
		return
	}

	fp, ok := cur.Fingerprint()
	if !ok {
		return
	}
	s.currentFP = fp

	if entry, hit := s.cache.Get(fp); hit {
		s.currentEntry = entry
		s.trackBlob(fp)
		return
	}

	s.loading = true
	go s.fetchCurrent(fp)
}

func (s *Session) fetchCurrent(fp song.Fingerprint) {
	entry, err := s.cache.GetOrFetch(s.ctx, fp, s.fetcher)
	for nil != err && !errutil.IsContext(s.ctx) {
		// A flight joined from an earlier preload plan settles cancelled when
		// that plan is replaced. Refetch under the session context while the
		// song is still current.
		if _, ok := errutil.IsAny(err, context.Canceled, context.DeadlineExceeded); !ok {
			break
		}
		s.mux.Lock()
		current := s.currentFP
		s.mux.Unlock()
		if current != fp {
			break
		}
		entry, err = s.cache.GetOrFetch(s.ctx, fp, s.fetcher)
	}

	s.mux.Lock()
	if s.currentFP != fp {
		// The performer already navigated away; the late result must not
		// overwrite the state of a different current song.
		s.mux.Unlock()
		s.logger.Trace().Str("fingerprint", fp.String()).Msg("Discarding stale fetch result")
		return
	}
	s.loading = false
	if nil != err {
		if errutil.IsContext(s.ctx) {
			s.mux.Unlock()
			return
		}
		s.failure = newFailure(fp.URL(), "")
		switch {
		case errors.Is(err, fetch.ErrUnavailable):
			s.logger.Warn().Err(err).Str("fingerprint", fp.String()).Msg("Current song content fetch failed")
		case errutil.IsFlaw(err):
			s.logger.Error().Func(log.Flaw(err)).Str("fingerprint", fp.String()).Msg("Current song content fetch failed")
		default:
			// Never fatal mid-performance: an unrecognized failure degrades
			// to the no-sheet fallback.
			s.logger.Error().Err(err).Str("detail", errutil.UnknownError(err)).Str("fingerprint", fp.String()).Msg("Current song content fetch failed")
		}
	} else {
		s.currentEntry = entry
		s.trackBlob(fp)
	}
	onUpdate := s.onUpdate
	s.mux.Unlock()

	if nil != onUpdate {
		onUpdate()
	}
}

// InvalidateCurrent forces a refetch of the current song's content, e.g.
// after it was edited.
func (s *Session) InvalidateCurrent() {
	s.mux.Lock()
	fp := s.currentFP
	if fp != "" {
		s.cache.Invalidate(fp)
		s.failure = nil
		s.loadCurrentLocked()
	}
	s.mux.Unlock()
}

// onEvict releases the blob handle bound to an evicted cache entry, except
// when that entry is still the currently displayed content: its handle stays
// live until navigation replaces it or the session closes.
func (s *Session) onEvict(fp song.Fingerprint) {
	s.mux.Lock()
	current := s.currentFP
	s.mux.Unlock()

	if fp == current {
		s.logger.Debug().Str("fingerprint", fp.String()).Msg("Evicted entry is current; deferring handle release")
		return
	}
	s.tracker.Release(blobID(fp))
}

func (s *Session) trackBlob(fp song.Fingerprint) {
	id := blobID(fp)
	logger := s.logger
	s.tracker.Track(id, resource.KindBlobURL, func() {
		logger.Trace().Str("id", id).Msg("Blob handle revoked")
	})
}

func blobID(fp song.Fingerprint) string {
	return "blob-url-" + fp.SongID()
}

func blobURL(fp song.Fingerprint) string {
	return "blob:" + fp.SongID()
}

// Controls passthroughs, the imperative surface the presentation layer binds
// keys to.

func (s *Session) ZoomIn()          { s.controls.ZoomIn() }
func (s *Session) ZoomOut()         { s.controls.ZoomOut() }
func (s *Session) ResetZoom()       { s.controls.ResetZoom() }
func (s *Session) ToggleDarkSheet() { s.controls.ToggleDarkSheet() }
func (s *Session) ToggleMetronome() { s.controls.TogglePlayPause() }
func (s *Session) IncreaseBPM()     { s.controls.IncreaseBPM() }
func (s *Session) DecreaseBPM()     { s.controls.DecreaseBPM() }

func (s *Session) Tracker() *resource.Tracker {
	return s.tracker
}

func (s *Session) CacheStats() blobcache.Stats {
	return s.cache.Stats()
}

// Close tears the session down: pending preloads are cancelled, the cache is
// drained through its eviction path, and every still-tracked handle is
// released. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.preloader.Close()

		s.mux.Lock()
		s.currentFP = ""
		s.currentEntry = nil
		s.mux.Unlock()

		s.cache.Clear()
		s.cache.Stop()
		s.tracker.ReleaseAll()
		s.logger.Debug().Msg("Session closed")
	})
}
