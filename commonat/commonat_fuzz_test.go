package commonat

import (
	"context"
	"testing"

	"github.com/go-faster/errors"

	"github.com/SkyTemple/skytemple-files-sub002/container"
)

func FuzzDecompress(f *testing.F) {
	d := New(Options{AltCodec: container.Store})
	for _, format := range container.FormatValues() {
		require := func(err error) {
			if err != nil {
				f.Fatal(err)
			}
		}
		require(d.Allow(format))
		c, err := d.Compress(context.Background(), []byte("AAAAAAAAAA"), format)
		require(err)
		f.Add(c.Bytes())
	}
	f.Add([]byte("PKDPX\x14\x00"))
	f.Add([]byte("AT4PN\xff\xff"))

	f.Fuzz(func(t *testing.T, data []byte) {
		out, err := d.Decompress(data)
		if err != nil {
			if !errors.Is(err, ErrUnrecognizedContainer) && !errors.Is(err, container.ErrCorruptContainer) {
				t.Fatalf("unexpected error: %+v", err)
			}
			return
		}
		if _, ok := d.Detect(data, 0); !ok {
			t.Fatal("decompressed unrecognized container")
		}
		n, err := d.Size(data, 0)
		if err != nil {
			t.Fatal(err)
		}
		if n > len(data) {
			t.Fatalf("size %d > %d", n, len(data))
		}
		_ = out
	})
}
