package unittest

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Logger returns a logger for tests. Output is disabled unless LOG_LEVEL is set.
func Logger() zerolog.Logger {
	level := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if level == "" {
		return zerolog.Nop()
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

// RequireCloseBefore requires that the given channel closes before the
// duration expires.
func RequireCloseBefore(t testing.TB, c <-chan struct{}, duration time.Duration, message string) {
	select {
	case <-time.After(duration):
		require.Fail(t, "could not close done channel on time: "+message)
	case <-c:
		return
	}
}

// TempDir creates a temporary directory that is removed when the test ends.
func TempDir(t testing.TB) string {
	dir, err := os.MkdirTemp("", "dpos-testing-temp-")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})
	return dir
}

// BadgerDB opens a badger database in dir with logging disabled.
func BadgerDB(t testing.TB, dir string) *badger.DB {
	opts := badger.
		DefaultOptions(dir).
		WithKeepL0InMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	return db
}

// RunWithBadgerDB runs f against a fresh badger database that is closed and
// removed afterwards.
func RunWithBadgerDB(t testing.TB, f func(*badger.DB)) {
	dir := TempDir(t)
	db := BadgerDB(t, dir)
	defer db.Close()
	f(db)
}
