package atlas

import "errors"

// Packing errors.
var (
	ErrCapacity     = errors.New("atlas too small for images")
	ErrPrecondition = errors.New("atlas precondition failed")
)
