package module

import (
	"github.com/dposchain/node/model/events"
)

// EventBus publishes chain events to other subsystems and lets the chain
// core subscribe to events emitted elsewhere. Handlers receive the event
// payload documented on the event name.
type EventBus interface {
	Publish(name events.Name, payload any)
	Subscribe(name events.Name, handler func(payload any)) error
	SubscribeAsync(name events.Name, handler func(payload any)) error
	Unsubscribe(name events.Name, handler func(payload any)) error
	WaitAsync()
}
