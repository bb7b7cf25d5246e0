package refcodec

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-faster/city"
	"github.com/go-faster/errors"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var zstdCodec struct {
	once sync.Once
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	err  error
}

func initZSTD() {
	zstdCodec.once.Do(func() {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
			zstd.WithLowerEncoderMem(true),
		)
		if err != nil {
			zstdCodec.err = err
			return
		}
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			zstdCodec.err = err
			return
		}
		zstdCodec.enc, zstdCodec.dec = enc, dec
	})
}

// zstdEncoder returns shared encoder, EncodeAll is safe for concurrent use.
func zstdEncoder() (*zstd.Encoder, error) {
	initZSTD()
	return zstdCodec.enc, zstdCodec.err
}

func zstdDecoder() (*zstd.Decoder, error) {
	initZSTD()
	return zstdCodec.dec, zstdCodec.err
}

// CorruptedDataErr means that block checksum mismatch.
type CorruptedDataErr struct {
	Actual    city.U128
	Reference city.U128
	RawSize   int
	DataSize  int
}

func (c *CorruptedDataErr) Error() string {
	return fmt.Sprintf("corrupted data: %s (actual), %s (reference), compressed size: %d, data size: %d",
		formatU128(c.Actual), formatU128(c.Reference), c.RawSize, c.DataSize,
	)
}

func formatU128(v city.U128) string {
	return fmt.Sprintf("%x%x", v.High, v.Low)
}

// parseHeader returns compressed data size and raw size from block header.
func parseHeader(header []byte) (dataSize, rawSize int, err error) {
	dataSize = int(bin.Uint32(header[hDataSize:])) - dataSizeOffset
	rawSize = int(bin.Uint32(header[hRawSize:]))
	if dataSize < 0 || dataSize > maxDataSize {
		return 0, 0, errors.Errorf("data size should be %d < %d < %d", 0, dataSize, maxDataSize)
	}
	if rawSize < 0 || rawSize > maxBlockSize {
		return 0, 0, errors.Errorf("raw size should be %d < %d < %d", 0, rawSize, maxBlockSize)
	}
	return dataSize, rawSize, nil
}

// decodeBlock verifies checksum of block and decodes its data into dst,
// which must have raw size length. Block starts at method byte.
func decodeBlock(header, block, dst []byte) ([]byte, error) {
	reference := city.U128{
		Low:  bin.Uint64(header[0:8]),
		High: bin.Uint64(header[8:16]),
	}
	rawSize := len(dst)
	data := block[compressHeaderSize:]
	if actual := city.CH128(block); actual != reference {
		return nil, &CorruptedDataErr{
			Actual:    actual,
			Reference: reference,
			RawSize:   len(data),
			DataSize:  rawSize,
		}
	}

	switch m := Method(block[0]); m {
	case None:
		if len(data) != len(dst) {
			return nil, errors.Errorf("none: %d != %d", len(data), len(dst))
		}
		copy(dst, data)
	case LZ4:
		if rawSize == 0 {
			break
		}
		n, err := lz4.UncompressBlock(data, dst)
		if err != nil {
			return nil, errors.Wrap(err, "lz4")
		}
		dst = dst[:n]
	case ZSTD:
		dec, err := zstdDecoder()
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		out, err := dec.DecodeAll(data, dst[:0])
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		dst = out
	case Snappy:
		n, err := snappy.DecodedLen(data)
		if err != nil {
			return nil, errors.Wrap(err, "snappy")
		}
		if n != len(dst) {
			return nil, errors.Errorf("snappy: decoded length %d != %d", n, len(dst))
		}
		if _, err := snappy.Decode(dst, data); err != nil {
			return nil, errors.Wrap(err, "snappy")
		}
	default:
		return nil, errors.Errorf("compression %s not implemented", m)
	}
	if len(dst) != rawSize {
		return nil, errors.Errorf("decoded %d bytes, header declares %d", len(dst), rawSize)
	}
	return dst, nil
}

// Decode decodes single block that spans whole buf.
func Decode(buf []byte) ([]byte, error) {
	if len(buf) < headerSize {
		return nil, errors.Errorf("block of %d bytes is shorter than header", len(buf))
	}
	dataSize, rawSize, err := parseHeader(buf[:headerSize])
	if err != nil {
		return nil, errors.Wrap(err, "header")
	}
	if n := headerSize + dataSize; n != len(buf) {
		return nil, errors.Errorf("block declares %d bytes, got %d", n, len(buf))
	}
	return decodeBlock(buf[:headerSize], buf[hMethod:], make([]byte, rawSize))
}

// Reader decodes stream of blocks.
type Reader struct {
	reader io.Reader
	data   []byte
	pos    int64
	raw    []byte
	header [headerSize]byte
}

// readBlock reads next compressed data into raw and decompresses into data.
func (c *Reader) readBlock() error {
	c.pos = 0

	if _, err := io.ReadFull(c.reader, c.header[:]); err != nil {
		return errors.Wrap(err, "header")
	}
	dataSize, rawSize, err := parseHeader(c.header[:])
	if err != nil {
		return err
	}

	c.raw = append(c.raw[:0], c.header[hMethod:]...)
	c.raw = append(c.raw, make([]byte, dataSize)...)
	if _, err := io.ReadFull(c.reader, c.raw[compressHeaderSize:]); err != nil {
		return errors.Wrap(err, "read raw")
	}
	c.data = append(c.data[:0], make([]byte, rawSize)...)

	data, err := decodeBlock(c.header[:], c.raw, c.data)
	if err != nil {
		return errors.Wrap(err, "decode")
	}
	c.data = data

	return nil
}

// Read implements io.Reader.
func (c *Reader) Read(p []byte) (n int, err error) {
	if c.pos >= int64(len(c.data)) {
		if err := c.readBlock(); err != nil {
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, errors.Wrap(err, "read next block")
		}
	}
	n = copy(p, c.data[c.pos:])
	c.pos += int64(n)
	return n, nil
}

// NewReader returns new *Reader from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		reader: r,
	}
}
