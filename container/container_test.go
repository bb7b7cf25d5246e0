package container

import (
	"bytes"
	"io"
	"math/rand"
	"os"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkyTemple/skytemple-files-sub002/internal/gold"
	"github.com/SkyTemple/skytemple-files-sub002/px"
)

func TestMain(m *testing.M) {
	// Explicitly registering flags for golden files.
	gold.Init()

	os.Exit(m.Run())
}

func randData(n int) []byte {
	r := rand.New(rand.NewSource(10))
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		panic(err)
	}
	return buf
}

// reverseCodec stores data reversed, so payload differs from input.
type reverseCodec struct{}

func reverse(src []byte) []byte {
	out := make([]byte, len(src))
	for i, b := range src {
		out[len(src)-1-i] = b
	}
	return out
}

func (reverseCodec) Compress(src []byte) ([]byte, error) { return reverse(src), nil }

func (reverseCodec) Decompress(src []byte, size int) ([]byte, error) {
	if size >= 0 && size != len(src) {
		return nil, errors.Errorf("size %d != %d", size, len(src))
	}
	return reverse(src), nil
}

func testKinds() []Kind {
	return Kinds(Options{Alt: Store})
}

func kindOf(t testing.TB, f Format) Kind {
	t.Helper()
	for _, k := range testKinds() {
		if k.Format() == f {
			return k
		}
	}
	t.Fatalf("no kind for %s", f)
	return nil
}

func TestKinds_Order(t *testing.T) {
	var formats []Format
	for _, k := range testKinds() {
		formats = append(formats, k.Format())
	}
	require.Equal(t, FormatValues(), formats)
}

func TestGolden(t *testing.T) {
	data := bytes.Repeat([]byte{'A'}, 10)
	for _, f := range FormatValues() {
		t.Run(f.String(), func(t *testing.T) {
			c, err := kindOf(t, f).Compress(data)
			require.NoError(t, err)
			require.Equal(t, f, c.Format())

			raw := c.Bytes()
			require.Len(t, raw, c.Len())
			gold.Bytes(t, raw, strings.ToLower(f.String())+".raw")

			parsed, err := kindOf(t, f).Parse(gold.ReadFile(t, strings.ToLower(f.String())+".raw"))
			require.NoError(t, err)
			out, err := parsed.Decompress()
			require.NoError(t, err)
			require.Equal(t, data, out)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []struct {
		Name string
		Data []byte
	}{
		{Name: "Empty"},
		{Name: "Byte", Data: []byte{0x42}},
		{Name: "Text", Data: []byte("The quick brown fox jumps over the lazy dog, the lazy dog sleeps.")},
		{Name: "Zeroes", Data: make([]byte, 3000)},
		{Name: "Random", Data: randData(2048)},
	}
	for _, f := range FormatValues() {
		k := kindOf(t, f)
		t.Run(f.String(), func(t *testing.T) {
			for _, in := range inputs {
				t.Run(in.Name, func(t *testing.T) {
					c, err := k.Compress(in.Data)
					require.NoError(t, err)

					raw := c.Bytes()
					require.True(t, k.Matches(raw, 0))
					n, err := k.Size(raw, 0)
					require.NoError(t, err)
					require.Equal(t, len(raw), n)

					// Trailing bytes are not part of container.
					parsed, err := k.Parse(append(raw, 0xFF, 0xFE))
					require.NoError(t, err)
					require.Equal(t, raw, parsed.Bytes())

					out, err := parsed.Decompress()
					require.NoError(t, err)
					if len(in.Data) == 0 {
						require.Empty(t, out)
						return
					}
					require.Equal(t, in.Data, out)
				})
			}
		})
	}
}

func TestKind_SizeAtOffset(t *testing.T) {
	data := bytes.Repeat([]byte("abcabd"), 20)
	for _, f := range FormatValues() {
		k := kindOf(t, f)
		t.Run(f.String(), func(t *testing.T) {
			c, err := k.Compress(data)
			require.NoError(t, err)

			file := append([]byte("prefix"), c.Bytes()...)
			file = append(file, "suffix"...)
			require.False(t, k.Matches(file, 0))
			require.True(t, k.Matches(file, 6))
			require.False(t, k.Matches(file, len(file)+1))
			require.False(t, k.Matches(file, -1))

			n, err := k.Size(file, 6)
			require.NoError(t, err)
			require.Equal(t, c.Len(), n)

			_, err = k.Size(file, 0)
			require.ErrorIs(t, err, ErrCorruptContainer)
		})
	}
}

func TestParse_Truncated(t *testing.T) {
	data := []byte("Hello, hello, hello!")
	for _, f := range FormatValues() {
		k := kindOf(t, f)
		t.Run(f.String(), func(t *testing.T) {
			c, err := k.Compress(data)
			require.NoError(t, err)
			raw := c.Bytes()

			for i := 0; i < len(raw); i++ {
				_, err := k.Parse(raw[:i])
				require.ErrorIs(t, err, ErrCorruptContainer, "len %d", i)

				e, ok := AsCorrupt(err)
				require.True(t, ok)
				require.Equal(t, f, e.Format)
			}
		})
	}
}

func TestParse_MagicMismatch(t *testing.T) {
	raw := gold.ReadFile(t, "at3px.raw")
	_, err := ParsePKDPX(raw)
	require.ErrorIs(t, err, ErrCorruptContainer)
	require.Contains(t, err.Error(), "magic mismatch")
}

func TestParse_LengthInsideHeader(t *testing.T) {
	raw := append([]byte{}, gold.ReadFile(t, "pkdpx.raw")...)
	bin.PutUint16(raw[hLength:], pkdpxHeaderSize-1)
	_, err := ParsePKDPX(raw)
	require.ErrorIs(t, err, ErrCorruptContainer)
}

func TestDecompress_SizeMismatch(t *testing.T) {
	t.Run("AT4PX", func(t *testing.T) {
		raw := append([]byte{}, gold.ReadFile(t, "at4px.raw")...)
		bin.PutUint16(raw[hSize:], 11)
		c, err := ParseAT4PX(raw)
		require.NoError(t, err)
		_, err = c.Decompress()
		require.ErrorIs(t, err, ErrCorruptContainer)
	})
	t.Run("PKDPX", func(t *testing.T) {
		raw := append([]byte{}, gold.ReadFile(t, "pkdpx.raw")...)
		bin.PutUint32(raw[hSize:], 1<<30)
		c, err := ParsePKDPX(raw)
		require.NoError(t, err)
		_, err = c.Decompress()
		require.ErrorIs(t, err, ErrCorruptContainer)
	})
	t.Run("ATUPX", func(t *testing.T) {
		raw := append([]byte{}, gold.ReadFile(t, "atupx.raw")...)
		bin.PutUint32(raw[hSizeU:], 9)
		c, err := ParseATUPX(raw, Store)
		require.NoError(t, err)
		_, err = c.Decompress()
		require.ErrorIs(t, err, ErrCorruptContainer)
	})
}

func TestDecompress_CorruptPayload(t *testing.T) {
	// Back-reference before start of output.
	c := &AT3PX{Flags: px.Flags{1, 2, 3, 4, 5, 6, 7, 8, 9}, Payload: []byte{0x00, 0x0F, 0xFF}}
	_, err := c.Decompress()
	require.ErrorIs(t, err, ErrCorruptContainer)
	require.ErrorIs(t, err, px.ErrCorruptData)

	e, ok := AsCorrupt(err)
	require.True(t, ok)
	require.Equal(t, FormatAT3PX, e.Format)
	require.Equal(t, "payload", e.Reason)
}

func TestATUPX_Codec(t *testing.T) {
	data := []byte("0123456789")
	c, err := CompressATUPX(data, reverseCodec{})
	require.NoError(t, err)
	require.Equal(t, []byte("9876543210"), c.Payload)

	parsed, err := ParseATUPX(c.Bytes(), reverseCodec{})
	require.NoError(t, err)
	require.Equal(t, uint32(10), parsed.DecompressedSize)
	out, err := parsed.Decompress()
	require.NoError(t, err)
	require.Equal(t, data, out)

	t.Run("Unavailable", func(t *testing.T) {
		_, err := CompressATUPX(data, nil)
		require.ErrorIs(t, err, ErrCodecUnavailable)

		_, err = Kinds(Options{})[FormatATUPX].Compress(data)
		require.ErrorIs(t, err, ErrCodecUnavailable)

		// Header is readable without codec.
		parsed, err := ParseATUPX(c.Bytes(), nil)
		require.NoError(t, err)
		_, err = parsed.Decompress()
		require.ErrorIs(t, err, ErrCodecUnavailable)
	})
}

func TestAT4PN_Codec(t *testing.T) {
	data := []byte("abc")
	c, err := CompressAT4PN(data, reverseCodec{})
	require.NoError(t, err)
	require.Equal(t, []byte("AT4PN\x03\x00cba"), c.Bytes())

	parsed, err := ParseAT4PN(c.Bytes(), reverseCodec{})
	require.NoError(t, err)
	out, err := parsed.Decompress()
	require.NoError(t, err)
	require.Equal(t, data, out)

	// Default body codec keeps data as is.
	parsed, err = ParseAT4PN(c.Bytes(), nil)
	require.NoError(t, err)
	out, err = parsed.Decompress()
	require.NoError(t, err)
	require.Equal(t, []byte("cba"), out)
}

func TestCompress_TooLarge(t *testing.T) {
	t.Run("AT4PXInput", func(t *testing.T) {
		_, err := CompressAT4PX(make([]byte, maxContainerSize+1), nil)
		require.ErrorIs(t, err, px.ErrInputTooLarge)
	})
	t.Run("Output", func(t *testing.T) {
		data := randData(maxContainerSize)
		opt := &px.Options{Level: px.Level0}
		_, err := CompressAT3PX(data, opt)
		require.ErrorIs(t, err, px.ErrOutputTooLarge)
		_, err = CompressPKDPX(data, opt)
		require.ErrorIs(t, err, px.ErrOutputTooLarge)
	})
	t.Run("AT4PN", func(t *testing.T) {
		_, err := CompressAT4PN(make([]byte, maxContainerSize-at4pnHeaderSize+1), nil)
		require.ErrorIs(t, err, px.ErrOutputTooLarge)

		c, err := CompressAT4PN(make([]byte, maxContainerSize-at4pnHeaderSize), nil)
		require.NoError(t, err)
		require.Equal(t, maxContainerSize, c.Len())
	})
	t.Run("ATUPX", func(t *testing.T) {
		_, err := CompressATUPX(make([]byte, maxContainerSize-atupxHeaderSize+1), Store)
		require.ErrorIs(t, err, px.ErrOutputTooLarge)
	})
}

func TestFormat(t *testing.T) {
	for _, f := range FormatValues() {
		assert.Equal(t, f.String(), string(f.Magic()))
		parsed, err := FormatString(strings.ToLower(f.String()))
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
	assert.True(t, FormatPKDPX.Compressed())
	assert.True(t, FormatAT3PX.Compressed())
	assert.True(t, FormatAT4PX.Compressed())
	assert.False(t, FormatAT4PN.Compressed())
	assert.False(t, FormatATUPX.Compressed())

	bad := Format(100)
	assert.False(t, bad.IsAFormat())
	assert.Nil(t, bad.Magic())
	assert.Equal(t, "Format(100)", bad.String())

	_, err := FormatString("ZIP")
	require.Error(t, err)
}

func TestCorruptError(t *testing.T) {
	err := corrupt(FormatAT4PX, "bad %d", 1)
	require.EqualError(t, err, "corrupt AT4PX: bad 1")
	require.True(t, errors.Is(err, ErrCorruptContainer))
	require.False(t, errors.Is(err, ErrCodecUnavailable))

	wrapped := errors.Wrap(&CorruptError{Format: FormatPKDPX, Reason: "payload", Err: px.ErrCorruptData}, "read")
	require.ErrorIs(t, wrapped, px.ErrCorruptData)
	e, ok := AsCorrupt(wrapped)
	require.True(t, ok)
	require.Equal(t, FormatPKDPX, e.Format)

	_, ok = AsCorrupt(io.EOF)
	require.False(t, ok)
}
