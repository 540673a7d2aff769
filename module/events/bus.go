package events

import (
	"fmt"

	evbus "github.com/asaskevich/EventBus"
	"github.com/rs/zerolog"

	"github.com/dposchain/node/model/events"
	"github.com/dposchain/node/module"
)

// Bus is the in-process event bus shared by the node's subsystems.
type Bus struct {
	log zerolog.Logger
	bus evbus.Bus
}

var _ module.EventBus = (*Bus)(nil)

func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		log: log.With().Str("component", "event_bus").Logger(),
		bus: evbus.New(),
	}
}

// Publish delivers the payload to every subscriber of the event. Synchronous
// subscribers run on the caller's goroutine before Publish returns.
func (b *Bus) Publish(name events.Name, payload any) {
	if payload == nil {
		payload = struct{}{}
	}
	b.log.Trace().Str("event", name.String()).Msg("publishing event")
	b.bus.Publish(name.String(), payload)
}

func (b *Bus) Subscribe(name events.Name, handler func(payload any)) error {
	err := b.bus.Subscribe(name.String(), handler)
	if err != nil {
		return fmt.Errorf("could not subscribe to %s: %w", name, err)
	}
	return nil
}

// SubscribeAsync registers a handler that runs on its own goroutine. Events
// for the same handler are delivered one at a time, in publish order.
func (b *Bus) SubscribeAsync(name events.Name, handler func(payload any)) error {
	err := b.bus.SubscribeAsync(name.String(), handler, true)
	if err != nil {
		return fmt.Errorf("could not subscribe to %s: %w", name, err)
	}
	return nil
}

func (b *Bus) Unsubscribe(name events.Name, handler func(payload any)) error {
	err := b.bus.Unsubscribe(name.String(), handler)
	if err != nil {
		return fmt.Errorf("could not unsubscribe from %s: %w", name, err)
	}
	return nil
}

// WaitAsync blocks until all asynchronous handlers have returned.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
