package px

import "github.com/go-faster/errors"

// Decompress decodes PX payload src using the control flag table.
func Decompress(src []byte, flags Flags) ([]byte, error) {
	return AppendDecompress(make([]byte, 0, 2*len(src)), src, flags)
}

// AppendDecompress decodes src and appends the result to dst.
//
// Back-references are resolved against the decoded output only: a reference
// reaching into the original contents of dst is ErrCorruptData.
func AppendDecompress(dst, src []byte, flags Flags) ([]byte, error) {
	var (
		start = len(dst)
		pos   = 0
	)
	for pos < len(src) {
		cmd := src[pos]
		pos++
		for bit := 7; bit >= 0 && pos < len(src); bit-- {
			if cmd&(1<<bit) != 0 {
				dst = append(dst, src[pos])
				pos++
				continue
			}

			b := src[pos]
			pos++
			high, low := b>>4, b&0xF
			if idx, ok := flags.index(high); ok {
				b1, b2 := expandPattern(idx, low)
				dst = append(dst, b1, b2)
				continue
			}

			if pos >= len(src) {
				return nil, errors.Wrapf(ErrCorruptData, "truncated back-reference at %d", pos-1)
			}
			offset := (int(low)<<8 | int(src[pos])) - lookbackSize
			pos++
			from := len(dst) + offset
			if from < start {
				return nil, errors.Wrapf(ErrCorruptData,
					"back-reference %d at output %d", offset, len(dst)-start,
				)
			}
			// Byte by byte: source may overlap the bytes being written.
			for n := int(high) + minSeqLen; n > 0; n-- {
				dst = append(dst, dst[from])
				from++
			}
		}
	}
	return dst, nil
}
