package progress

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned when progress is read or written without a user.
var ErrNotAuthenticated = errors.New("user not authenticated")

// PersistenceError reports a failed progress read or write. It never undoes
// a session transition.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("progress %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
