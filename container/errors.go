package container

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrCorruptContainer matches every *CorruptError.
	ErrCorruptContainer = errors.New("corrupt container")
	// ErrCodecUnavailable is returned when a format needs an alternate
	// payload codec that was not configured.
	ErrCodecUnavailable = errors.New("codec unavailable")
)

// CorruptError reports malformed container data: magic mismatch, bad header
// bounds, payload decoding failure or decompressed size mismatch.
type CorruptError struct {
	Format Format
	Reason string
	Err    error // optional
}

func (e *CorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt %s: %s: %s", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt %s: %s", e.Format, e.Reason)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCorruptContainer.
func (e *CorruptError) Is(target error) bool {
	return target == ErrCorruptContainer
}

// AsCorrupt finds first *CorruptError in err chain.
func AsCorrupt(err error) (*CorruptError, bool) {
	var e *CorruptError
	if !errors.As(err, &e) {
		return nil, false
	}
	return e, true
}

func corrupt(f Format, format string, args ...interface{}) error {
	return &CorruptError{Format: f, Reason: fmt.Sprintf(format, args...)}
}
