package controls

import (
	"sync"
	"time"
)

// HoldRepeatInterval is the rate at which a held adjustment button repeats.
const HoldRepeatInterval = 150 * time.Millisecond

// Repeater drives press-and-hold adjustment: Start fires fn once immediately
// and then on every interval tick until Stop. Starting while already running
// restarts with the new fn.
type Repeater struct {
	mux  sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewRepeater() *Repeater {
	return &Repeater{
		mux:  sync.Mutex{},
		stop: nil,
		done: nil,
	}
}

func (r *Repeater) Start(fn func()) {
	r.Stop()

	r.mux.Lock()
	stop := make(chan struct{})
	done := make(chan struct{})
	r.stop = stop
	r.done = done
	r.mux.Unlock()

	fn()
	go func() {
		defer close(done)
		ticker := time.NewTicker(HoldRepeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-stop:
				return
			}
		}
	}()
}

func (r *Repeater) Stop() {
	r.mux.Lock()
	stop, done := r.stop, r.done
	r.stop, r.done = nil, nil
	r.mux.Unlock()

	if nil != stop {
		close(stop)
		<-done
	}
}
