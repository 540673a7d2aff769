package blockchain

import (
	"errors"
)

// ErrEngineStopped is returned by operations invoked after shutdown.
var ErrEngineStopped = errors.New("chain engine stopped")
