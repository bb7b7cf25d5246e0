// Package refcodec implements checksummed reference codec blocks.
//
// Blocks are used as ATUPX payloads and as a baseline for PX ratios. Block
// layout (little-endian):
//
//	[16]byte CityHash128 of the rest of block
//	u8       method
//	u32      compressed size, including 9 byte method header
//	u32      raw size
//	[]byte   compressed data
package refcodec

import "encoding/binary"

//go:generate go run github.com/dmarkham/enumer -transform snake_upper -type Method -output method_enum.go

// Method is compression codec.
type Method byte

const (
	None   Method = 0x02
	LZ4    Method = 0x82
	ZSTD   Method = 0x90
	Snappy Method = 0x91
)

const (
	checksumSize       = 16
	compressHeaderSize = 1 + 4 + 4
	headerSize         = checksumSize + compressHeaderSize
	maxBlockSize       = 1024 * 1024 * 1   // 1MB
	maxDataSize        = 1024 * 1024 * 128 // 128MB

	hMethod   = 16
	hDataSize = 17
	hRawSize  = 21

	dataSizeOffset = compressHeaderSize
)

var bin = binary.LittleEndian
