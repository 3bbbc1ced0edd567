package executor

import "errors"

// ErrToolNotFound indicates a required external binary could not be located.
var ErrToolNotFound = errors.New("required tool not found")
