package px

// Level selects which operations the compressor may emit.
type Level byte

const (
	// Level0 emits literals only.
	Level0 Level = iota
	// Level1 adds the four-equal-nibbles pattern.
	Level1
	// Level2 adds the eight near-equal nibble patterns.
	Level2
	// Level3 adds back-references.
	Level3
)

// SearchOrder decides whether back-references are tried before or after
// nibble patterns on Level3.
type SearchOrder byte

const (
	SequenceFirst SearchOrder = iota
	NibbleFirst
)

// Options configures compression.
type Options struct {
	Level Level
	Order SearchOrder
}

// DefaultOptions returns Level3 with back-references searched first.
func DefaultOptions() *Options {
	return &Options{Level: Level3, Order: SequenceFirst}
}

func (o *Options) setDefaults() {
	if o.Level > Level3 {
		o.Level = Level3
	}
	if o.Order > NibbleFirst {
		o.Order = SequenceFirst
	}
}
