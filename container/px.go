package container

import (
	"github.com/go-faster/errors"

	"github.com/SkyTemple/skytemple-files-sub002/px"
)

// compressPX compresses data for a PX container with headerSize bytes of
// header.
func compressPX(f Format, data []byte, opt *px.Options, headerSize int) (px.Flags, []byte, error) {
	flags, payload, err := px.Compress(data, opt)
	if err != nil {
		return px.Flags{}, nil, errors.Wrap(err, "px")
	}
	if n := headerSize + len(payload); n > maxContainerSize {
		return px.Flags{}, nil, errors.Wrapf(px.ErrOutputTooLarge, "%s of %d bytes", f, n)
	}
	return flags, payload, nil
}

func decompressPX(f Format, payload []byte, flags px.Flags, sizeHint int) ([]byte, error) {
	out, err := px.AppendDecompress(make([]byte, 0, sizeHint), payload, flags)
	if err != nil {
		return nil, &CorruptError{Format: f, Reason: "payload", Err: err}
	}
	return out, nil
}

func checkSize(f Format, out []byte, declared int) error {
	if len(out) != declared {
		return corrupt(f, "decompressed %d bytes, header declares %d", len(out), declared)
	}
	return nil
}

func putPXHeader(b *buffer, f Format, length int, flags px.Flags) {
	b.PutRaw(f.Magic())
	b.PutUInt16(uint16(length))
	b.PutRaw(flags[:])
}

func readFlags(data []byte) px.Flags {
	var flags px.Flags
	copy(flags[:], data[hFlags:hFlags+px.FlagsSize])
	return flags
}

// AT3PX is PX container without declared decompressed size.
type AT3PX struct {
	Flags   px.Flags
	Payload []byte
}

// ParseAT3PX decodes AT3PX header. Payload aliases data.
func ParseAT3PX(data []byte) (*AT3PX, error) {
	b, err := bounded(FormatAT3PX, data, at3pxHeaderSize)
	if err != nil {
		return nil, err
	}
	return &AT3PX{
		Flags:   readFlags(b),
		Payload: b[at3pxHeaderSize:],
	}, nil
}

// CompressAT3PX compresses data into AT3PX. opt may be nil.
func CompressAT3PX(data []byte, opt *px.Options) (*AT3PX, error) {
	flags, payload, err := compressPX(FormatAT3PX, data, opt, at3pxHeaderSize)
	if err != nil {
		return nil, err
	}
	return &AT3PX{Flags: flags, Payload: payload}, nil
}

func (c *AT3PX) Format() Format { return FormatAT3PX }

func (c *AT3PX) Len() int { return at3pxHeaderSize + len(c.Payload) }

func (c *AT3PX) Bytes() []byte {
	b := buffer{Buf: make([]byte, 0, c.Len())}
	putPXHeader(&b, FormatAT3PX, c.Len(), c.Flags)
	b.PutRaw(c.Payload)
	return b.Buf
}

func (c *AT3PX) Decompress() ([]byte, error) {
	return decompressPX(FormatAT3PX, c.Payload, c.Flags, 2*len(c.Payload))
}

// AT4PX is PX container with u16 decompressed size.
type AT4PX struct {
	Flags            px.Flags
	DecompressedSize uint16
	Payload          []byte
}

// ParseAT4PX decodes AT4PX header. Payload aliases data.
func ParseAT4PX(data []byte) (*AT4PX, error) {
	b, err := bounded(FormatAT4PX, data, at4pxHeaderSize)
	if err != nil {
		return nil, err
	}
	return &AT4PX{
		Flags:            readFlags(b),
		DecompressedSize: bin.Uint16(b[hSize:]),
		Payload:          b[at4pxHeaderSize:],
	}, nil
}

// CompressAT4PX compresses data into AT4PX. opt may be nil.
func CompressAT4PX(data []byte, opt *px.Options) (*AT4PX, error) {
	if len(data) > maxContainerSize {
		return nil, errors.Wrapf(px.ErrInputTooLarge, "AT4PX holds at most %d bytes, got %d",
			maxContainerSize, len(data),
		)
	}
	flags, payload, err := compressPX(FormatAT4PX, data, opt, at4pxHeaderSize)
	if err != nil {
		return nil, err
	}
	return &AT4PX{
		Flags:            flags,
		DecompressedSize: uint16(len(data)),
		Payload:          payload,
	}, nil
}

func (c *AT4PX) Format() Format { return FormatAT4PX }

func (c *AT4PX) Len() int { return at4pxHeaderSize + len(c.Payload) }

func (c *AT4PX) Bytes() []byte {
	b := buffer{Buf: make([]byte, 0, c.Len())}
	putPXHeader(&b, FormatAT4PX, c.Len(), c.Flags)
	b.PutUInt16(c.DecompressedSize)
	b.PutRaw(c.Payload)
	return b.Buf
}

func (c *AT4PX) Decompress() ([]byte, error) {
	out, err := decompressPX(FormatAT4PX, c.Payload, c.Flags, int(c.DecompressedSize))
	if err != nil {
		return nil, err
	}
	if err := checkSize(FormatAT4PX, out, int(c.DecompressedSize)); err != nil {
		return nil, err
	}
	return out, nil
}

// PKDPX is PX container with u32 decompressed size.
type PKDPX struct {
	Flags            px.Flags
	DecompressedSize uint32
	Payload          []byte
}

// ParsePKDPX decodes PKDPX header. Payload aliases data.
func ParsePKDPX(data []byte) (*PKDPX, error) {
	b, err := bounded(FormatPKDPX, data, pkdpxHeaderSize)
	if err != nil {
		return nil, err
	}
	return &PKDPX{
		Flags:            readFlags(b),
		DecompressedSize: bin.Uint32(b[hSize:]),
		Payload:          b[pkdpxHeaderSize:],
	}, nil
}

// CompressPKDPX compresses data into PKDPX. opt may be nil.
func CompressPKDPX(data []byte, opt *px.Options) (*PKDPX, error) {
	flags, payload, err := compressPX(FormatPKDPX, data, opt, pkdpxHeaderSize)
	if err != nil {
		return nil, err
	}
	return &PKDPX{
		Flags:            flags,
		DecompressedSize: uint32(len(data)),
		Payload:          payload,
	}, nil
}

func (c *PKDPX) Format() Format { return FormatPKDPX }

func (c *PKDPX) Len() int { return pkdpxHeaderSize + len(c.Payload) }

func (c *PKDPX) Bytes() []byte {
	b := buffer{Buf: make([]byte, 0, c.Len())}
	putPXHeader(&b, FormatPKDPX, c.Len(), c.Flags)
	b.PutUInt32(c.DecompressedSize)
	b.PutRaw(c.Payload)
	return b.Buf
}

func (c *PKDPX) Decompress() ([]byte, error) {
	// Declared size is untrusted, cap preallocation by the payload bound.
	hint := int(c.DecompressedSize)
	if bound := 18 * len(c.Payload); hint > bound {
		hint = bound
	}
	out, err := decompressPX(FormatPKDPX, c.Payload, c.Flags, hint)
	if err != nil {
		return nil, err
	}
	if err := checkSize(FormatPKDPX, out, int(c.DecompressedSize)); err != nil {
		return nil, err
	}
	return out, nil
}
