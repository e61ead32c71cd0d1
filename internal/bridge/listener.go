package bridge

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/lockbar-io/lockbar/internal/logging"
)

// DefaultPollInterval is how long the listener idles when both sources are empty.
const DefaultPollInterval = 10 * time.Millisecond

// MenuEvent is a click on a tray menu item.
type MenuEvent struct {
	ID    string
	Title string
}

// IconEvent is a click on the tray icon itself.
type IconEvent struct {
	Rect Rect
}

// EventSource is the tray's non-blocking event API. Both methods must return
// immediately with ok=false when nothing is pending.
type EventSource interface {
	TryMenuEvent() (ev MenuEvent, ok bool)
	TryIconEvent() (ev IconEvent, ok bool)
}

// Listener polls an EventSource on a dedicated OS thread and forwards icon
// clicks as anchor points.
type Listener struct {
	source EventSource
	tx     Sender
	log    *logging.Logger

	pollInterval atomic.Int64
	forwarded    atomic.Uint64
	failed       atomic.Uint64
}

// NewListener creates a listener. A non-positive interval selects DefaultPollInterval.
func NewListener(source EventSource, tx Sender, log *logging.Logger, interval time.Duration) *Listener {
	l := &Listener{
		source: source,
		tx:     tx,
		log:    log.Component("listener"),
	}
	l.SetPollInterval(interval)
	return l
}

// SetPollInterval changes the idle interval of a running listener.
func (l *Listener) SetPollInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultPollInterval
	}
	l.pollInterval.Store(int64(d))
}

// PollInterval returns the current idle interval.
func (l *Listener) PollInterval() time.Duration {
	return time.Duration(l.pollInterval.Load())
}

// Forwarded returns how many anchor points were queued.
func (l *Listener) Forwarded() uint64 {
	return l.forwarded.Load()
}

// Failed returns how many anchor points could not be queued.
func (l *Listener) Failed() uint64 {
	return l.failed.Load()
}

// Start runs the listener on a new goroutine.
func (l *Listener) Start(ctx context.Context) {
	go l.Run(ctx)
}

// Run polls until ctx is done. It never returns because of a send failure.
func (l *Listener) Run(ctx context.Context) {
	// The tray receivers are blocking OS APIs; keep them off the scheduler's
	// shared threads.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l.log.Debug().Dur("poll_interval", l.PollInterval()).Msg("Tray listener started")

	timer := time.NewTimer(l.PollInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Debug().Msg("Tray listener stopped")
			return
		default:
		}

		if l.Poll() {
			continue
		}

		timer.Reset(l.PollInterval())
		select {
		case <-ctx.Done():
			l.log.Debug().Msg("Tray listener stopped")
			return
		case <-timer.C:
		}
	}
}

// Poll runs one iteration over both sources and reports whether anything was
// received.
func (l *Listener) Poll() bool {
	busy := false

	if ev, ok := l.source.TryMenuEvent(); ok {
		busy = true
		l.log.Info().Str("id", ev.ID).Str("title", ev.Title).Msg("Menu event")
	}

	if ev, ok := l.source.TryIconEvent(); ok {
		busy = true
		anchor := ev.Rect.Anchor()
		l.log.Debug().
			Float64("left", ev.Rect.Left).
			Float64("right", ev.Rect.Right).
			Float64("bottom", ev.Rect.Bottom).
			Stringer("anchor", anchor).
			Msg("Tray icon event")

		if err := l.tx.Send(anchor); err != nil {
			l.failed.Add(1)
			if errors.Is(err, ErrChannelClosed) {
				l.log.Warn().Err(err).Stringer("anchor", anchor).Msg("Window positioner is gone, dropping click")
			} else {
				l.log.Error().Err(err).Msg("Failed to forward tray click")
			}
		} else {
			l.forwarded.Add(1)
		}
	}

	return busy
}
