package px

import (
	"sort"

	"github.com/go-faster/errors"
)

type opKind byte

const (
	opCopy opKind = iota
	opPattern
	opSequence
)

// operation is a single planned operation of a block.
type operation struct {
	kind   opKind
	value  byte // literal, or stored low nibble of a pattern
	index  byte // pattern index
	offset int  // back-reference offset, negative
	length int  // back-reference length
}

type compressor struct {
	src []byte
	opt Options
	cur int
	ops []operation

	// reserved holds length nibbles used by back-references, ascending.
	reserved []byte
}

func newCompressor(src []byte, opt Options) *compressor {
	return &compressor{
		src:      src,
		opt:      opt,
		ops:      make([]operation, 0, len(src)/2+1),
		reserved: []byte{0, 0xF},
	}
}

// Compress encodes src, returning the control flag table and the payload.
// opt may be nil (uses DefaultOptions).
func Compress(src []byte, opt *Options) (Flags, []byte, error) {
	if opt == nil {
		opt = DefaultOptions()
	}
	o := *opt
	o.setDefaults()

	if len(src) > maxInputSize {
		return Flags{}, nil, errors.Wrapf(ErrInputTooLarge, "%d bytes", len(src))
	}

	c := newCompressor(src, o)
	c.plan()
	flags := c.flags()
	out := c.encode(flags)
	if len(out) > maxPayloadSize {
		return Flags{}, nil, errors.Wrapf(ErrOutputTooLarge, "%d bytes", len(out))
	}

	return flags, out, nil
}

// plan chooses operations for the whole input.
func (c *compressor) plan() {
	for c.cur < len(c.src) {
		c.ops = append(c.ops, c.next())
	}
}

func (c *compressor) next() operation {
	seq := c.opt.Level >= Level3
	if seq && c.opt.Order == SequenceFirst {
		if op, ok := c.sequence(); ok {
			return op
		}
	}
	if c.opt.Level >= Level1 {
		if op, ok := c.pattern(); ok {
			return op
		}
	}
	if seq && c.opt.Order == NibbleFirst {
		if op, ok := c.sequence(); ok {
			return op
		}
	}

	op := operation{kind: opCopy, value: c.src[c.cur]}
	c.cur++
	return op
}

func (c *compressor) pattern() (operation, bool) {
	if c.cur+2 > len(c.src) {
		return operation{}, false
	}
	n := nibbles(c.src[c.cur], c.src[c.cur+1])
	idx, low, ok := findPattern(n, c.opt.Level >= Level2)
	if !ok {
		return operation{}, false
	}
	c.cur += 2
	return operation{kind: opPattern, index: idx, value: low}, true
}

func (c *compressor) sequence() (operation, bool) {
	offset, length := longestMatch(c.src, c.cur)
	if length == 0 {
		return operation{}, false
	}
	length = c.reserve(length)
	c.cur += length
	return operation{kind: opSequence, offset: offset, length: length}, true
}

// reserve records the length nibble of a back-reference of n bytes and
// returns the length to use.
//
// When the table is full, n is shrunk to the first reserved length below it
// in ascending order, which is not necessarily the closest one. Existing
// game data was produced this way.
func (c *compressor) reserve(n int) int {
	v := byte(n - minSeqLen)
	if c.isReserved(v) {
		return n
	}
	if len(c.reserved) < maxReserved {
		i := sort.Search(len(c.reserved), func(i int) bool { return c.reserved[i] > v })
		c.reserved = append(c.reserved, 0)
		copy(c.reserved[i+1:], c.reserved[i:])
		c.reserved[i] = v
		return n
	}
	for _, r := range c.reserved {
		if int(r)+minSeqLen < n {
			return int(r) + minSeqLen
		}
	}
	return minSeqLen
}

func (c *compressor) isReserved(v byte) bool {
	for _, r := range c.reserved {
		if r == v {
			return true
		}
	}
	return false
}

// flags selects the lowest nine nibble values not used as lengths.
func (c *compressor) flags() Flags {
	var f Flags
	i := 0
	for v := byte(0); v < 16 && i < len(f); v++ {
		if c.isReserved(v) {
			continue
		}
		f[i] = v
		i++
	}
	return f
}

// encode serializes planned operations.
func (c *compressor) encode(flags Flags) []byte {
	out := make([]byte, 0, len(c.src)+len(c.src)/blockOps+1)
	for i := 0; i < len(c.ops); i += blockOps {
		block := c.ops[i:min(i+blockOps, len(c.ops))]
		pos := len(out)
		out = append(out, 0)

		var cmd byte
		for j, op := range block {
			switch op.kind {
			case opCopy:
				cmd |= byte(0x80) >> j
				out = append(out, op.value)
			case opPattern:
				out = append(out, flags[op.index]<<4|op.value)
			case opSequence:
				rel := op.offset + lookbackSize
				out = append(out,
					byte(op.length-minSeqLen)<<4|byte(rel>>8),
					byte(rel),
				)
			}
		}
		out[pos] = cmd
	}
	return out
}
