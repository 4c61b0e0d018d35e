package feedcache

import (
	"errors"
	"fmt"
)

// ErrNaN rejects NaN before it reaches the store; a NaN counter or score can
// never be compared or ranked again.
var ErrNaN = errors.New("feedcache: value is NaN")

// DecodeError reports corrupt-but-present data under a key. A corrupt entry
// is never silently treated as a miss: the caller must know the key so it can
// repair or delete it.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("feedcache: decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NotNumberError reports a non-numeric value where a number was expected.
type NotNumberError struct {
	Key string
	Raw string
}

func (e *NotNumberError) Error() string {
	return fmt.Sprintf("feedcache: %q holds non-numeric value %q", e.Key, e.Raw)
}
