// Package container implements AT-family containers wrapping compressed
// payloads: AT3PX, AT4PX and PKDPX around PX, ATUPX around an alternate
// codec and store-only AT4PN.
//
// Every container starts with five magic bytes followed by a little-endian
// length field, so a container embedded in a larger file can be located and
// skipped without decoding its payload.
package container

import (
	"encoding/binary"
	"math"

	"github.com/SkyTemple/skytemple-files-sub002/px"
)

const (
	hLength = magicSize             // u16 length
	hFlags  = hLength + 2           // PX control flags
	hSize   = hFlags + px.FlagsSize // AT4PX u16, PKDPX u32 decompressed size
	hSizeU  = hLength + 2           // ATUPX u32 decompressed size

	at3pxHeaderSize = hSize
	at4pxHeaderSize = hSize + 2
	pkdpxHeaderSize = hSize + 4
	atupxHeaderSize = hSizeU + 4
	at4pnHeaderSize = hLength + 2

	maxContainerSize = math.MaxUint16
)

var bin = binary.LittleEndian

// Container is a parsed or freshly compressed container.
type Container interface {
	Format() Format
	// Decompress decodes the payload.
	Decompress() ([]byte, error)
	// Bytes serializes the container.
	Bytes() []byte
	// Len is the serialized length.
	Len() int
}

// Kind describes a single container format.
type Kind interface {
	Format() Format
	// Matches reports whether data has a container of this kind at offset.
	Matches(data []byte, offset int) bool
	// Size returns the declared length of the container at offset.
	Size(data []byte, offset int) (int, error)
	// Parse decodes the container header at the start of data.
	Parse(data []byte) (Container, error)
	// Compress builds a container holding data.
	Compress(data []byte) (Container, error)
}

// Codec is an externally supplied payload codec for formats that are not
// PX-based.
type Codec interface {
	Compress(src []byte) ([]byte, error)
	// Decompress decodes src, size is the expected decompressed size or
	// negative if unknown.
	Decompress(src []byte, size int) ([]byte, error)
}

type storeCodec struct{}

func (storeCodec) Compress(src []byte) ([]byte, error) {
	return append([]byte{}, src...), nil
}

func (storeCodec) Decompress(src []byte, _ int) ([]byte, error) {
	return append([]byte{}, src...), nil
}

// Store is Codec that keeps data as is.
var Store Codec = storeCodec{}

// buffer implements little-endian container encoding.
type buffer struct {
	Buf []byte
}

// PutRaw writes v as raw bytes to buffer.
func (b *buffer) PutRaw(v []byte) {
	b.Buf = append(b.Buf, v...)
}

func (b *buffer) PutUInt16(x uint16) {
	b.Buf = append(b.Buf, 0, 0)
	bin.PutUint16(b.Buf[len(b.Buf)-2:], x)
}

func (b *buffer) PutUInt32(x uint32) {
	b.Buf = append(b.Buf, 0, 0, 0, 0)
	bin.PutUint32(b.Buf[len(b.Buf)-4:], x)
}

// declaredLength reads the u16 length field of f at offset.
func declaredLength(f Format, data []byte, offset int) (int, error) {
	if !hasMagic(f, data, offset) {
		return 0, corrupt(f, "magic mismatch")
	}
	if len(data)-offset < hLength+2 {
		return 0, corrupt(f, "truncated header: %d bytes", len(data)-offset)
	}
	return int(bin.Uint16(data[offset+hLength:])), nil
}

// bounded validates the declared length of the container at the start of
// data and returns the container bytes. Trailing bytes are dropped.
func bounded(f Format, data []byte, headerSize int) ([]byte, error) {
	n, err := declaredLength(f, data, 0)
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize {
		return nil, corrupt(f, "truncated header: %d < %d", len(data), headerSize)
	}
	if n < headerSize {
		return nil, corrupt(f, "declared length %d ends inside %d byte header", n, headerSize)
	}
	if n > len(data) {
		return nil, corrupt(f, "declared length %d exceeds %d bytes", n, len(data))
	}
	return data[:n], nil
}

// Options configures format descriptors.
type Options struct {
	// PX configures PX-based formats, nil means px.DefaultOptions.
	PX *px.Options
	// Alt is the ATUPX payload codec. ATUPX is unusable without it.
	Alt Codec
	// Store is the AT4PN body codec, defaults to Store.
	Store Codec
}

func (o *Options) setDefaults() {
	if o.PX == nil {
		o.PX = px.DefaultOptions()
	}
	if o.Store == nil {
		o.Store = Store
	}
}

type kind struct {
	format   Format
	size     func(data []byte, offset int) (int, error)
	parse    func(data []byte) (Container, error)
	compress func(data []byte) (Container, error)
}

func (k kind) Format() Format { return k.format }

func (k kind) Matches(data []byte, offset int) bool { return hasMagic(k.format, data, offset) }

func (k kind) Size(data []byte, offset int) (int, error) { return k.size(data, offset) }

func (k kind) Parse(data []byte) (Container, error) { return k.parse(data) }

func (k kind) Compress(data []byte) (Container, error) { return k.compress(data) }

func lengthField(f Format) func(data []byte, offset int) (int, error) {
	return func(data []byte, offset int) (int, error) {
		return declaredLength(f, data, offset)
	}
}

// Kinds returns descriptors of all formats in detection order.
func Kinds(opt Options) []Kind {
	opt.setDefaults()

	return []Kind{
		kind{
			format: FormatAT4PN,
			size:   at4pnSize,
			parse: func(data []byte) (Container, error) {
				c, err := ParseAT4PN(data, opt.Store)
				if err != nil {
					return nil, err
				}
				return c, nil
			},
			compress: func(data []byte) (Container, error) {
				c, err := CompressAT4PN(data, opt.Store)
				if err != nil {
					return nil, err
				}
				return c, nil
			},
		},
		kind{
			format: FormatAT3PX,
			size:   lengthField(FormatAT3PX),
			parse: func(data []byte) (Container, error) {
				c, err := ParseAT3PX(data)
				if err != nil {
					return nil, err
				}
				return c, nil
			},
			compress: func(data []byte) (Container, error) {
				c, err := CompressAT3PX(data, opt.PX)
				if err != nil {
					return nil, err
				}
				return c, nil
			},
		},
		kind{
			format: FormatAT4PX,
			size:   lengthField(FormatAT4PX),
			parse: func(data []byte) (Container, error) {
				c, err := ParseAT4PX(data)
				if err != nil {
					return nil, err
				}
				return c, nil
			},
			compress: func(data []byte) (Container, error) {
				c, err := CompressAT4PX(data, opt.PX)
				if err != nil {
					return nil, err
				}
				return c, nil
			},
		},
		kind{
			format: FormatATUPX,
			size:   lengthField(FormatATUPX),
			parse: func(data []byte) (Container, error) {
				c, err := ParseATUPX(data, opt.Alt)
				if err != nil {
					return nil, err
				}
				return c, nil
			},
			compress: func(data []byte) (Container, error) {
				c, err := CompressATUPX(data, opt.Alt)
				if err != nil {
					return nil, err
				}
				return c, nil
			},
		},
		kind{
			format: FormatPKDPX,
			size:   lengthField(FormatPKDPX),
			parse: func(data []byte) (Container, error) {
				c, err := ParsePKDPX(data)
				if err != nil {
					return nil, err
				}
				return c, nil
			},
			compress: func(data []byte) (Container, error) {
				c, err := CompressPKDPX(data, opt.PX)
				if err != nil {
					return nil, err
				}
				return c, nil
			},
		},
	}
}
