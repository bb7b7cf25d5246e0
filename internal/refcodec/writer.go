package refcodec

import (
	"github.com/go-faster/city"
	"github.com/go-faster/errors"
	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

const (
	// LevelLZ4HCDefault is LZ4HC level used when level is not set.
	LevelLZ4HCDefault = 9
	levelLZ4HCMax     = 9
)

// Writer encodes compressed blocks.
type Writer struct {
	Data []byte

	lz4   *lz4.Compressor
	lz4hc *lz4.CompressorHC
}

// Compress buf into Data with method m.
func (w *Writer) Compress(m Method, buf []byte) error {
	if len(buf) > maxBlockSize {
		return errors.Errorf("buf size %d > %d (multiple block encoding not implemented)", len(buf), maxBlockSize)
	}

	w.Data = append(w.Data[:0], make([]byte, headerSize)...)
	switch m {
	case None:
		w.Data = append(w.Data, buf...)
	case LZ4:
		maxSize := lz4.CompressBlockBound(len(buf))
		w.Data = append(w.Data, make([]byte, maxSize)...)
		var (
			n   int
			err error
		)
		if w.lz4hc != nil {
			n, err = w.lz4hc.CompressBlock(buf, w.Data[headerSize:])
		} else {
			n, err = w.lz4.CompressBlock(buf, w.Data[headerSize:])
		}
		if err != nil {
			return errors.Wrap(err, "lz4")
		}
		w.Data = w.Data[:headerSize+n]
	case ZSTD:
		enc, err := zstdEncoder()
		if err != nil {
			return errors.Wrap(err, "zstd")
		}
		w.Data = enc.EncodeAll(buf, w.Data)
	case Snappy:
		maxSize := snappy.MaxEncodedLen(len(buf))
		if maxSize < 0 {
			return errors.Errorf("snappy: buf size %d too large", len(buf))
		}
		w.Data = append(w.Data, make([]byte, maxSize)...)
		n := len(snappy.Encode(w.Data[headerSize:], buf))
		w.Data = w.Data[:headerSize+n]
	default:
		return errors.Errorf("compression %s not implemented", m)
	}

	n := len(w.Data) - headerSize
	w.Data[hMethod] = byte(m)
	bin.PutUint32(w.Data[hDataSize:], uint32(n+dataSizeOffset))
	bin.PutUint32(w.Data[hRawSize:], uint32(len(buf)))
	hash := city.CH128(w.Data[hMethod:])
	bin.PutUint64(w.Data[0:8], hash.Low)
	bin.PutUint64(w.Data[8:16], hash.High)

	return nil
}

// NewWriter creates a new Writer that uses fast LZ4.
func NewWriter() *Writer {
	return &Writer{
		lz4: &lz4.Compressor{},
	}
}

// NewWriterWithLevel creates a new Writer that uses LZ4HC with level l,
// clamped to 1..9. Zero means LevelLZ4HCDefault.
func NewWriterWithLevel(l int) *Writer {
	switch {
	case l <= 0:
		l = LevelLZ4HCDefault
	case l > levelLZ4HCMax:
		l = levelLZ4HCMax
	}
	return &Writer{
		lz4:   &lz4.Compressor{},
		lz4hc: &lz4.CompressorHC{Level: lz4.CompressionLevel(1 << (8 + l))},
	}
}
