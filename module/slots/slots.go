package slots

import (
	"time"

	"github.com/dposchain/node/model/chain"
)

// Slots converts between wall-clock time, network time (seconds since the
// network epoch), forging slots and delegate rounds.
type Slots struct {
	epoch           time.Time
	blockTime       uint64
	activeDelegates uint64
	now             func() time.Time
}

// New returns the slot arithmetic for a network. blockTime is truncated to
// whole seconds.
func New(epoch time.Time, blockTime time.Duration, activeDelegates uint64) *Slots {
	return &Slots{
		epoch:           epoch,
		blockTime:       uint64(blockTime / time.Second),
		activeDelegates: activeDelegates,
		now:             time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *Slots) WithClock(now func() time.Time) *Slots {
	s.now = now
	return s
}

// BlockTime returns the slot length.
func (s *Slots) BlockTime() time.Duration {
	return time.Duration(s.blockTime) * time.Second
}

// ActiveDelegates returns the number of delegates forging in a round.
func (s *Slots) ActiveDelegates() uint64 {
	return s.activeDelegates
}

// Time returns the current network time in seconds.
func (s *Slots) Time() uint64 {
	elapsed := s.now().Sub(s.epoch)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed / time.Second)
}

// SlotNumber returns the slot containing the given network time.
func (s *Slots) SlotNumber(timestamp uint64) uint64 {
	return timestamp / s.blockTime
}

// CurrentSlot returns the slot of the current network time.
func (s *Slots) CurrentSlot() uint64 {
	return s.SlotNumber(s.Time())
}

// SlotTime returns the network time at which the slot starts.
func (s *Slots) SlotTime(slot uint64) uint64 {
	return slot * s.blockTime
}

// IsFutureSlot returns true if the timestamp lies in a slot that has not
// started yet.
func (s *Slots) IsFutureSlot(timestamp uint64) bool {
	return s.SlotNumber(timestamp) > s.CurrentSlot()
}

// TimeLeftInSlot returns the wall-clock time remaining in the current slot.
func (s *Slots) TimeLeftInSlot() time.Duration {
	now := s.now()
	end := s.epoch.Add(time.Duration(s.SlotTime(s.CurrentSlot()+1)) * time.Second)
	return end.Sub(now)
}

// RoundOf returns the round the given height belongs to. Rounds start at 1.
func (s *Slots) RoundOf(height uint64) uint64 {
	if height == 0 {
		return 1
	}
	return (height-1)/s.activeDelegates + 1
}

// IsNewRound returns true if the height is the first block of a round.
func (s *Slots) IsNewRound(height uint64) bool {
	return height > 0 && (height-1)%s.activeDelegates == 0
}

// Forger returns the delegate scheduled to forge at the given timestamp.
// Returns false if the delegate list is empty.
func (s *Slots) Forger(delegates []chain.PublicKey, timestamp uint64) (chain.PublicKey, bool) {
	if len(delegates) == 0 {
		return "", false
	}
	slot := s.SlotNumber(timestamp)
	return delegates[slot%uint64(len(delegates))], true
}
