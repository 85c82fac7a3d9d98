// Package events implements the compositor's lifecycle event broadcast:
// input delivery, playback start/end, output completion. Grounded on
// original_source/compositor_pipeline/src/event.rs (the Event enum) and
// the teacher's internal/realtime.Manager Subscribe()/broadcast shape.
package events

import (
	"sync"
	"time"

	"github.com/smeltergo/compositor/internal/ids"
)

// Kind names one lifecycle event, mirroring original_source's Event enum
// variants as plain string constants (spec.md §4.7).
type Kind string

const (
	KindAudioInputDelivered Kind = "AUDIO_INPUT_DELIVERED"
	KindVideoInputDelivered Kind = "VIDEO_INPUT_DELIVERED"
	KindInputPlaying        Kind = "INPUT_PLAYING"
	KindInputEOS            Kind = "INPUT_EOS"
	KindOutputDone          Kind = "OUTPUT_DONE"
)

// Event is one broadcast lifecycle notification. InputId/OutputId are set
// according to Kind; the zero value of whichever doesn't apply is left
// empty.
type Event struct {
	Kind      Kind
	InputId   ids.InputId
	OutputId  ids.OutputId
	Timestamp time.Time
}

// subscriberBuffer caps the per-subscriber channel; spec.md calls these
// "unbounded" but also requires eviction on send failure, so a generously
// sized buffer stands in for unbounded while still giving a slow
// subscriber a chance before being dropped.
const subscriberBuffer = 256

// Emitter broadcasts Events to every current subscriber. Broadcast is
// best-effort: a subscriber whose buffer is full is evicted rather than
// blocking the emitter (spec.md §4.7/§5).
type Emitter struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

func NewEmitter() *Emitter {
	return &Emitter{subscribers: make(map[chan Event]struct{})}
}

// Subscribe registers a new listener and returns its receive channel plus
// a cancel func that unregisters and closes it. Safe to call cancel more
// than once.
func (e *Emitter) Subscribe() (ch <-chan Event, cancel func()) {
	c := make(chan Event, subscriberBuffer)

	e.mu.Lock()
	e.subscribers[c] = struct{}{}
	e.mu.Unlock()

	var once sync.Once
	cancel = func() {
		once.Do(func() {
			e.mu.Lock()
			if _, ok := e.subscribers[c]; ok {
				delete(e.subscribers, c)
				close(c)
			}
			e.mu.Unlock()
		})
	}
	return c, cancel
}

// Emit broadcasts evt to every current subscriber, evicting any whose
// buffer is full.
func (e *Emitter) Emit(evt Event) {
	e.mu.RLock()
	stale := make([]chan Event, 0)
	for c := range e.subscribers {
		select {
		case c <- evt:
		default:
			stale = append(stale, c)
		}
	}
	e.mu.RUnlock()

	if len(stale) == 0 {
		return
	}

	e.mu.Lock()
	for _, c := range stale {
		if _, ok := e.subscribers[c]; ok {
			delete(e.subscribers, c)
			close(c)
		}
	}
	e.mu.Unlock()
}

// Close unregisters and closes every current subscriber channel.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for c := range e.subscribers {
		close(c)
	}
	e.subscribers = make(map[chan Event]struct{})
}
