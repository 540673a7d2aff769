package util

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogProgressFunc adds the given number of processed items to the progress.
// Negative values are ignored. It may be called concurrently.
type LogProgressFunc func(add int)

// LogProgressConfig controls how often LogProgress writes a log line.
type LogProgressConfig struct {
	// Message prefixes every progress line.
	Message string
	// Total is the number of items that makes the progress reach 100%.
	Total int
	// Ticks is the number of log lines including the one at 0%. Values below
	// 2 are raised to 2, values above Total+1 are lowered to Total+1.
	Ticks int
}

// DefaultLogProgressConfig logs every 10%.
func DefaultLogProgressConfig(message string, total int) LogProgressConfig {
	return LogProgressConfig{
		Message: message,
		Total:   total,
		Ticks:   11,
	}
}

// LogProgress logs 0% right away and returns a function that logs again every
// time the progress crosses the next tick. Long rollbacks and block reverts use
// it so operators can follow the work.
func LogProgress(log zerolog.Logger, config LogProgressConfig) LogProgressFunc {
	start := time.Now()
	total := uint64(0)
	if config.Total > 0 {
		total = uint64(config.Total)
	}

	ticks := uint64(2)
	if config.Ticks > 2 {
		ticks = uint64(config.Ticks)
	}
	if total > 0 && ticks > total+1 {
		ticks = total + 1
	}
	step := total / (ticks - 1)
	if step == 0 {
		step = 1
	}

	write := func(current uint64) {
		percentage := float64(100)
		if total > 0 {
			percentage = float64(current) / float64(total) * 100
		}
		log.Info().
			Uint64("current", current).
			Uint64("total", total).
			Str("elapsed", time.Since(start).Round(time.Millisecond).String()).
			Msgf("%s progress %.1f%%", config.Message, percentage)
	}
	write(0)

	var mu sync.Mutex
	current := uint64(0)
	return func(add int) {
		if add <= 0 {
			return
		}
		mu.Lock()
		defer mu.Unlock()

		previous := current
		current += uint64(add)
		if current >= total && previous < total {
			write(total)
			return
		}
		if current/step > previous/step && current < total {
			write(current / step * step)
		}
	}
}
