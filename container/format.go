package container

import "bytes"

//go:generate go run github.com/dmarkham/enumer -type Format -trimprefix Format -output format_enum.go

// Format of container.
//
// Values are ordered by detection priority.
type Format byte

const (
	FormatAT4PN Format = iota
	FormatAT3PX
	FormatAT4PX
	FormatATUPX
	FormatPKDPX
)

const magicSize = 5

var magics = [...]string{
	FormatAT4PN: "AT4PN",
	FormatAT3PX: "AT3PX",
	FormatAT4PX: "AT4PX",
	FormatATUPX: "ATUPX",
	FormatPKDPX: "PKDPX",
}

// Magic returns the magic bytes starting a container of f.
func (f Format) Magic() []byte {
	if !f.IsAFormat() {
		return nil
	}
	return []byte(magics[f])
}

// Compressed reports whether f is a PX-compressed format.
func (f Format) Compressed() bool {
	switch f {
	case FormatAT3PX, FormatAT4PX, FormatPKDPX:
		return true
	default:
		return false
	}
}

// hasMagic reports whether data has magic of f at offset.
func hasMagic(f Format, data []byte, offset int) bool {
	if offset < 0 || offset > len(data) || !f.IsAFormat() {
		return false
	}
	return bytes.HasPrefix(data[offset:], []byte(magics[f]))
}
