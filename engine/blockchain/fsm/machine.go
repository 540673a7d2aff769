package fsm

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dposchain/node/engine"
	"github.com/dposchain/node/engine/common/fifoqueue"
	"github.com/dposchain/node/module"
	"github.com/dposchain/node/module/component"
	"github.com/dposchain/node/module/irrecoverable"
)

// Action is an entry action. It returns the event to handle next, or
// EventNone.
type Action func(ctx context.Context) Event

// Machine is the chain state machine. Events can be dispatched from any
// goroutine; they are handled one at a time by the Loop worker. The entry
// actions of a target state run before the state is committed, and the
// events they return are handled right after, ahead of events dispatched
// by other goroutines in the meantime.
type Machine struct {
	log      zerolog.Logger
	metrics  module.ChainMetrics
	actions  map[ActionID]Action
	events   *fifoqueue.FifoQueue[Event]
	notifier engine.Notifier

	mu      sync.RWMutex
	current State
}

func NewMachine(log zerolog.Logger, metrics module.ChainMetrics, actions map[ActionID]Action) (*Machine, error) {
	events, err := fifoqueue.NewFifoQueue[Event]()
	if err != nil {
		return nil, fmt.Errorf("could not create event queue: %w", err)
	}
	return &Machine{
		log:      log.With().Str("component", "chain_fsm").Logger(),
		metrics:  metrics,
		actions:  actions,
		events:   events,
		notifier: engine.NewNotifier(),
		current:  Uninitialised,
	}, nil
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Dispatch queues the event for the event loop.
func (m *Machine) Dispatch(event Event) {
	m.events.Push(event)
	m.notifier.Notify()
}

// Loop is the component worker handling dispatched events. On shutdown it
// moves the machine to Stopped.
func (m *Machine) Loop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()
	for {
		select {
		case <-ctx.Done():
			m.run(context.Background(), EventStop)
			return
		case <-m.notifier.Channel():
			m.processEvents(ctx)
		}
	}
}

// processEvents handles queued events until the queue is empty.
func (m *Machine) processEvents(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		event, ok := m.events.Pop()
		if !ok {
			return
		}
		m.run(ctx, event)
	}
}

// run handles the event and then every event produced by the entry actions
// it triggered.
func (m *Machine) run(ctx context.Context, event Event) {
	pending := []Event{event}
	for len(pending) > 0 {
		if ctx.Err() != nil {
			return
		}
		next := pending[0]
		pending = append(pending[1:], m.handle(ctx, next)...)
	}
}

func (m *Machine) handle(ctx context.Context, event Event) []Event {
	current := m.State()
	next, actions, ok := Transition(current, event)
	if !ok {
		m.log.Debug().
			Str("state", current.String()).
			Str("event", event.String()).
			Msg("no transition for event, ignoring")
		return nil
	}

	m.log.Debug().
		Str("state", current.String()).
		Str("event", event.String()).
		Str("next_state", next.String()).
		Msg("transition")

	var produced []Event
	for _, id := range actions {
		action, ok := m.actions[id]
		if !ok {
			m.log.Warn().Str("action", id.String()).Msg("no implementation for entry action")
			continue
		}
		if e := action(ctx); e != EventNone {
			produced = append(produced, e)
		}
	}

	m.mu.Lock()
	m.current = next
	m.mu.Unlock()
	m.metrics.StateEntered(next.String())

	return produced
}
