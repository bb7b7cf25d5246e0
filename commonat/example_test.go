package commonat_test

import (
	"context"
	"fmt"

	"github.com/SkyTemple/skytemple-files-sub002/commonat"
	"github.com/SkyTemple/skytemple-files-sub002/container"
)

func ExampleDispatcher_Compress() {
	d := commonat.New(commonat.Options{
		Allowed: []container.Format{
			container.FormatAT3PX,
			container.FormatPKDPX,
		},
	})

	c, err := d.Compress(context.Background(), []byte("AAAAAAAAAA"))
	if err != nil {
		panic(err)
	}
	fmt.Println(c.Format(), c.Len())

	data, err := d.Decompress(c.Bytes())
	if err != nil {
		panic(err)
	}
	fmt.Println(string(data))

	// Output:
	// PKDPX 28
	// AAAAAAAAAA
}

func ExampleDispatcher_Detect() {
	d := commonat.New(commonat.Options{})
	c, err := d.Compress(context.Background(), []byte("hello"), container.FormatAT3PX)
	if err != nil {
		panic(err)
	}
	file := append([]byte{0, 0, 0, 0}, c.Bytes()...)

	f, ok := d.Detect(file, 4)
	fmt.Println(f, ok)
	_, ok = d.Detect(file, 0)
	fmt.Println(ok)

	// Output:
	// AT3PX true
	// false
}
