package px

import "github.com/go-faster/errors"

var (
	// ErrInputTooLarge is returned when compression input exceeds 2^31-1 bytes.
	ErrInputTooLarge = errors.New("input too large")
	// ErrOutputTooLarge is returned when the compressed payload exceeds 65536 bytes.
	ErrOutputTooLarge = errors.New("output too large")
	// ErrCorruptData is returned by the decoder on malformed payloads, e.g.
	// a back-reference pointing before the start of the output.
	ErrCorruptData = errors.New("corrupt data")
)
