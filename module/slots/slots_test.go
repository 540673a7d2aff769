package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dposchain/node/model/chain"
)

var epoch = time.Date(2017, 3, 21, 13, 0, 0, 0, time.UTC)

func fixedClock(offset time.Duration) func() time.Time {
	return func() time.Time { return epoch.Add(offset) }
}

func TestSlots_Arithmetic(t *testing.T) {
	s := New(epoch, 8*time.Second, 51).WithClock(fixedClock(83 * time.Second))

	assert.Equal(t, uint64(83), s.Time())
	assert.Equal(t, uint64(10), s.CurrentSlot())
	assert.Equal(t, uint64(80), s.SlotTime(10))
	assert.Equal(t, 5*time.Second, s.TimeLeftInSlot())

	assert.False(t, s.IsFutureSlot(80))
	assert.False(t, s.IsFutureSlot(87))
	assert.True(t, s.IsFutureSlot(88))
}

// TestSlots_TimeLeftInSlotSubSecond keeps the fraction of the current
// second, so 1.5s left is not rounded up to 2s.
func TestSlots_TimeLeftInSlotSubSecond(t *testing.T) {
	s := New(epoch, 8*time.Second, 51).WithClock(fixedClock(86*time.Second + 500*time.Millisecond))
	assert.Equal(t, 1500*time.Millisecond, s.TimeLeftInSlot())
	assert.Less(t, s.TimeLeftInSlot(), 2*time.Second)
}

func TestSlots_BeforeEpoch(t *testing.T) {
	s := New(epoch, 8*time.Second, 51).WithClock(fixedClock(-time.Hour))
	assert.Equal(t, uint64(0), s.Time())
}

func TestSlots_Rounds(t *testing.T) {
	s := New(epoch, 8*time.Second, 51)

	assert.Equal(t, uint64(1), s.RoundOf(1))
	assert.Equal(t, uint64(1), s.RoundOf(51))
	assert.Equal(t, uint64(2), s.RoundOf(52))
	assert.True(t, s.IsNewRound(1))
	assert.True(t, s.IsNewRound(52))
	assert.False(t, s.IsNewRound(53))
}

func TestSlots_Forger(t *testing.T) {
	s := New(epoch, 8*time.Second, 3)
	delegates := []chain.PublicKey{"a", "b", "c"}

	forger, ok := s.Forger(delegates, 8*4)
	require.True(t, ok)
	assert.Equal(t, chain.PublicKey("b"), forger)

	_, ok = s.Forger(nil, 0)
	assert.False(t, ok)
}
