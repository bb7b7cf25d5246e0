// Package px implements the PX compression format.
//
// A PX payload is a sequence of blocks. Each block starts with a command
// byte followed by up to 8 operations, the most significant bit of the
// command byte describing the first operation. A set bit is a literal byte.
// A clear bit is a marker byte whose high nibble either equals one of the
// nine control flags, selecting a two-byte nibble pattern, or encodes the
// length of a back-reference into the last 4096 output bytes.
//
// The control flag table is not part of the payload: containers store it in
// their header.
package px

const (
	minSeqLen    = 3
	maxSeqLen    = 18
	lookbackSize = 4096
	blockOps     = 8
	maxReserved  = 7

	maxInputSize   = 1<<31 - 1
	maxPayloadSize = 65536
)

// FlagsSize is the size of the control flag table.
const FlagsSize = 9

// Flags is the control flag table: nibble values that mark nibble pattern
// operations. Flags[i] selects pattern i.
type Flags [FlagsSize]byte

// index returns the pattern index of nibble v.
func (f Flags) index(v byte) (byte, bool) {
	for i, x := range f {
		if x == v {
			return byte(i), true
		}
	}
	return 0, false
}
