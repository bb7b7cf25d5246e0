package container

import (
	"github.com/go-faster/errors"

	"github.com/SkyTemple/skytemple-files-sub002/px"
)

// ATUPX is container with payload encoded by an alternate codec.
type ATUPX struct {
	DecompressedSize uint32
	Payload          []byte

	codec Codec
}

// ParseATUPX decodes ATUPX header. Payload aliases data.
//
// The codec is only needed by Decompress and may be nil.
func ParseATUPX(data []byte, codec Codec) (*ATUPX, error) {
	b, err := bounded(FormatATUPX, data, atupxHeaderSize)
	if err != nil {
		return nil, err
	}
	return &ATUPX{
		DecompressedSize: bin.Uint32(b[hSizeU:]),
		Payload:          b[atupxHeaderSize:],
		codec:            codec,
	}, nil
}

// CompressATUPX compresses data into ATUPX with codec.
func CompressATUPX(data []byte, codec Codec) (*ATUPX, error) {
	if codec == nil {
		return nil, errors.Wrap(ErrCodecUnavailable, "ATUPX")
	}
	payload, err := codec.Compress(data)
	if err != nil {
		return nil, errors.Wrap(err, "codec")
	}
	if n := atupxHeaderSize + len(payload); n > maxContainerSize {
		return nil, errors.Wrapf(px.ErrOutputTooLarge, "ATUPX of %d bytes", n)
	}
	return &ATUPX{
		DecompressedSize: uint32(len(data)),
		Payload:          payload,
		codec:            codec,
	}, nil
}

func (c *ATUPX) Format() Format { return FormatATUPX }

func (c *ATUPX) Len() int { return atupxHeaderSize + len(c.Payload) }

func (c *ATUPX) Bytes() []byte {
	b := buffer{Buf: make([]byte, 0, c.Len())}
	b.PutRaw(FormatATUPX.Magic())
	b.PutUInt16(uint16(c.Len()))
	b.PutUInt32(c.DecompressedSize)
	b.PutRaw(c.Payload)
	return b.Buf
}

func (c *ATUPX) Decompress() ([]byte, error) {
	if c.codec == nil {
		return nil, errors.Wrap(ErrCodecUnavailable, "ATUPX")
	}
	out, err := c.codec.Decompress(c.Payload, int(c.DecompressedSize))
	if err != nil {
		return nil, &CorruptError{Format: FormatATUPX, Reason: "payload", Err: err}
	}
	if err := checkSize(FormatATUPX, out, int(c.DecompressedSize)); err != nil {
		return nil, err
	}
	return out, nil
}

// AT4PN is container with a u16 body length, stored as is unless another
// body codec is configured.
type AT4PN struct {
	Body []byte

	codec Codec
}

func at4pnSize(data []byte, offset int) (int, error) {
	n, err := declaredLength(FormatAT4PN, data, offset)
	if err != nil {
		return 0, err
	}
	return at4pnHeaderSize + n, nil
}

// ParseAT4PN decodes AT4PN header. Body aliases data. Nil codec means Store.
func ParseAT4PN(data []byte, codec Codec) (*AT4PN, error) {
	if codec == nil {
		codec = Store
	}
	n, err := at4pnSize(data, 0)
	if err != nil {
		return nil, err
	}
	if n > len(data) {
		return nil, corrupt(FormatAT4PN, "declared length %d exceeds %d bytes", n, len(data))
	}
	return &AT4PN{
		Body:  data[at4pnHeaderSize:n],
		codec: codec,
	}, nil
}

// CompressAT4PN encodes data into AT4PN. Nil codec means Store.
func CompressAT4PN(data []byte, codec Codec) (*AT4PN, error) {
	if codec == nil {
		codec = Store
	}
	body, err := codec.Compress(data)
	if err != nil {
		return nil, errors.Wrap(err, "codec")
	}
	if n := at4pnHeaderSize + len(body); n > maxContainerSize {
		return nil, errors.Wrapf(px.ErrOutputTooLarge, "AT4PN of %d bytes", n)
	}
	return &AT4PN{Body: body, codec: codec}, nil
}

func (c *AT4PN) Format() Format { return FormatAT4PN }

func (c *AT4PN) Len() int { return at4pnHeaderSize + len(c.Body) }

func (c *AT4PN) Bytes() []byte {
	b := buffer{Buf: make([]byte, 0, c.Len())}
	b.PutRaw(FormatAT4PN.Magic())
	b.PutUInt16(uint16(len(c.Body)))
	b.PutRaw(c.Body)
	return b.Buf
}

func (c *AT4PN) Decompress() ([]byte, error) {
	out, err := c.codec.Decompress(c.Body, -1)
	if err != nil {
		return nil, &CorruptError{Format: FormatAT4PN, Reason: "body", Err: err}
	}
	return out, nil
}
