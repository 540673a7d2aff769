package processor

import (
	"sync"

	"github.com/dposchain/node/model/chain"
)

// NotReadyCounter counts consecutive sightings of the same block while the
// chain is not ready to accept its height.
type NotReadyCounter struct {
	mu          sync.Mutex
	maxAttempts uint
	id          chain.Identifier
	attempts    uint
}

func NewNotReadyCounter(maxAttempts uint) *NotReadyCounter {
	return &NotReadyCounter{maxAttempts: maxAttempts}
}

// Increment records another sighting of the block. A different block id
// restarts the count. Returns true, and resets the counter, once the block
// was seen more than maxAttempts times in a row.
func (c *NotReadyCounter) Increment(block *chain.Block) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.id != block.ID {
		c.reset()
		c.id = block.ID
	}
	c.attempts++

	exceeded := c.attempts > c.maxAttempts
	if exceeded {
		c.reset()
	}
	return exceeded
}

func (c *NotReadyCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *NotReadyCounter) reset() {
	c.id = chain.ZeroID
	c.attempts = 0
}
