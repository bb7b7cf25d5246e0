package refcodec

import (
	"bytes"
	"io"

	"github.com/go-faster/errors"
)

// Codec encodes payload as sequence of Method blocks.
//
// Implements container.Codec, so it can be used as ATUPX payload codec.
type Codec struct {
	Method Method
	// HC enables LZ4HC with Level for LZ4 method.
	HC    bool
	Level int
	// BlockSize limits raw size of single block, zero means one block for
	// payloads up to 1MB.
	BlockSize int
}

func (c Codec) writer() *Writer {
	if c.HC {
		return NewWriterWithLevel(c.Level)
	}
	return NewWriter()
}

func (c Codec) Compress(src []byte) ([]byte, error) {
	size := c.BlockSize
	if size <= 0 || size > maxBlockSize {
		size = maxBlockSize
	}
	var (
		w   = c.writer()
		out []byte
	)
	for {
		n := min(len(src), size)
		if err := w.Compress(c.Method, src[:n]); err != nil {
			return nil, errors.Wrap(err, c.Method.String())
		}
		out = append(out, w.Data...)
		if src = src[n:]; len(src) == 0 {
			return out, nil
		}
	}
}

// Decompress decodes all blocks of src, size is checked if not negative.
func (c Codec) Decompress(src []byte, size int) ([]byte, error) {
	if len(src) == 0 {
		return nil, errors.New("no blocks")
	}
	out, err := io.ReadAll(NewReader(bytes.NewReader(src)))
	if err != nil {
		return nil, err
	}
	if size >= 0 && len(out) != size {
		return nil, errors.Errorf("decoded %d bytes, expected %d", len(out), size)
	}
	return out, nil
}
