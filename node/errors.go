package node

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyStarted = errors.New("node already started")
	ErrNotStarted     = errors.New("node not started")
)

// ErrInvalidConfig is returned by NewNode when the configuration does not
// pass validation.
type ErrInvalidConfig struct {
	Err error
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e ErrInvalidConfig) Unwrap() error {
	return e.Err
}
