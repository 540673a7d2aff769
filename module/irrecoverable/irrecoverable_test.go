package irrecoverable

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrowStopsGoroutineAndDeliversError(t *testing.T) {
	ctx, errChan := WithSignaler(context.Background())
	sentinel := errors.New("storage diverged")

	reached := make(chan struct{})
	go func() {
		defer close(reached)
		ctx.Throw(sentinel)
		t.Error("goroutine continued after Throw")
	}()

	<-reached
	err := <-errChan
	assert.ErrorIs(t, err, sentinel)
}

func TestOnlyFirstErrorIsKept(t *testing.T) {
	ctx, errChan := WithSignaler(context.Background())
	first := errors.New("first")

	for _, err := range []error{first, errors.New("second")} {
		done := make(chan struct{})
		go func(err error) {
			defer close(done)
			ctx.Throw(err)
		}(err)
		<-done
	}

	require.ErrorIs(t, <-errChan, first)
	select {
	case err := <-errChan:
		t.Fatalf("unexpected second error: %v", err)
	default:
	}
}

func TestException(t *testing.T) {
	cause := errors.New("could not decode entity")
	err := NewExceptionf("reading block: %w", cause)

	assert.True(t, IsException(err))
	assert.True(t, IsException(fmt.Errorf("wrapped: %w", err)))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsException(cause))
}
