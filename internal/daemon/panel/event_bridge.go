package panel

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/views"
)

// StateEvent is the frontend event carrying a views.Snapshot.
const StateEvent = "lockbar:state"

type emitFunc func(ctx context.Context, name string, data ...interface{})

// EventBridge forwards controller snapshots to the frontend.
type EventBridge struct {
	ctx        context.Context
	controller *views.Controller
	emit       emitFunc
	log        *logging.Logger

	mu          sync.Mutex
	unsubscribe func()
}

// NewEventBridge creates a bridge emitting through the Wails runtime of ctx.
func NewEventBridge(ctx context.Context, controller *views.Controller, log *logging.Logger) *EventBridge {
	return newEventBridge(ctx, controller, runtime.EventsEmit, log)
}

func newEventBridge(ctx context.Context, controller *views.Controller, emit emitFunc, log *logging.Logger) *EventBridge {
	return &EventBridge{
		ctx:        ctx,
		controller: controller,
		emit:       emit,
		log:        log,
	}
}

// Start subscribes to the controller and emits the current snapshot.
func (eb *EventBridge) Start() {
	eb.mu.Lock()
	if eb.unsubscribe != nil {
		eb.mu.Unlock()
		eb.log.Warn().Msg("Event bridge already started, ignoring duplicate Start()")
		return
	}
	eb.unsubscribe = eb.controller.Subscribe(eb.forward)
	eb.mu.Unlock()

	eb.forward(eb.controller.Snapshot())
	eb.log.Debug().Msg("Event bridge started")
}

// Stop unsubscribes. It is safe to call more than once.
func (eb *EventBridge) Stop() {
	eb.mu.Lock()
	unsubscribe := eb.unsubscribe
	eb.unsubscribe = nil
	eb.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
		eb.log.Debug().Msg("Event bridge stopped")
	}
}

func (eb *EventBridge) forward(snap views.Snapshot) {
	eb.emit(eb.ctx, StateEvent, snap)
}
