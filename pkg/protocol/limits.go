package protocol

// Default decoding limits.
const (
	DefaultMaxFrame  = 1 << 20
	DefaultMaxOps    = 100_000
	DefaultMaxString = 64 << 10
)

// Limits bound what a decoder accepts.
type Limits struct {
	// MaxFrame is the largest accepted payload in bytes.
	MaxFrame int

	// MaxOps is the largest accepted operation count per batch.
	MaxOps int

	// MaxString is the longest accepted string in bytes.
	MaxString int
}

// DefaultLimits returns the default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxFrame:  DefaultMaxFrame,
		MaxOps:    DefaultMaxOps,
		MaxString: DefaultMaxString,
	}
}

// orDefault fills zero fields with defaults.
func (l Limits) orDefault() Limits {
	if l.MaxFrame <= 0 {
		l.MaxFrame = DefaultMaxFrame
	}
	if l.MaxOps <= 0 {
		l.MaxOps = DefaultMaxOps
	}
	if l.MaxString <= 0 {
		l.MaxString = DefaultMaxString
	}
	return l
}
