package configuration

import (
	"time"

	"github.com/G-Research/rainbow/internal/rainbow/digest"
	"github.com/G-Research/rainbow/internal/rainbow/idformat"
)

type RainbowConfig struct {
	// Number of decimal digits in the keyspace; ids 0 to 10^Digits-1 are hashed
	Digits uint `validate:"gte=1,lte=19"`
	// Secret appended to every hash input
	Pepper string `validate:"required"`
	// Hash every id on the calling goroutine rather than with a worker pool
	Serial bool
	// Number of jobs the keyspace is split into. Zero means one per CPU
	Jobs int `validate:"gte=0"`
	// Number of workers draining the job queue. Zero means one per CPU
	Workers int `validate:"gte=0"`
	// Records buffered by a worker before they are handed to the output
	OutputBufferSize int `validate:"gte=1"`
	// Chunks that may be queued for output per worker before workers block
	ChannelDepth int `validate:"gte=1"`
	// Hash function applied to each input
	Algorithm digest.Algorithm `validate:"oneof=sha256 sha3-256 blake3"`
	// Width ids are padded to in the hash input. Zero means the same as Digits
	HashWidth int `validate:"gte=0,lte=20"`
	// Character used to pad ids in the hash input
	Padding idformat.Padding
	// How often progress is logged. Zero disables progress logging
	ProgressInterval time.Duration
	// Port serving prometheus metrics. Zero disables the metrics server
	MetricsPort uint16
	// Log level, e.g. info, debug etc
	LogLevel string
	// Log format, one of text, json or message
	LogFormat string
}

// Default returns the configuration used when nothing is overridden.
func Default() RainbowConfig {
	return RainbowConfig{
		Digits:           10,
		OutputBufferSize: 1024,
		ChannelDepth:     4,
		Algorithm:        digest.SHA256,
		HashWidth:        10,
		Padding:          idformat.PaddingZero,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}
