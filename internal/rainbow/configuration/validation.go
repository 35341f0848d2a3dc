package configuration

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	commonconfig "github.com/G-Research/rainbow/internal/common/config"
	"github.com/G-Research/rainbow/internal/common/rainbowerrors"
	"github.com/G-Research/rainbow/internal/rainbow/digest"
	"github.com/G-Research/rainbow/internal/rainbow/idformat"
)

// DecodeHooks convert the string forms used on the command line and in config files into typed values.
var DecodeHooks = []mapstructure.DecodeHookFunc{
	commonconfig.StringToTypeHookFunc(digest.ParseAlgorithm),
	commonconfig.StringToTypeHookFunc(idformat.ParsePadding),
}

func (c RainbowConfig) Validate() error {
	if err := commonconfig.Validate(c); err != nil {
		return err
	}
	if c.Padding != idformat.PaddingZero && c.Padding != idformat.PaddingSpace {
		return errors.WithStack(&rainbowerrors.ErrInvalidArgument{
			Name:    "Padding",
			Value:   c.Padding,
			Message: "must be zero or space",
		})
	}
	if width := c.EffectiveHashWidth(); int(c.Digits) > width {
		return errors.WithStack(&rainbowerrors.ErrInvalidArgument{
			Name:    "Digits",
			Value:   c.Digits,
			Message: fmt.Sprintf("ids would not fit in the %d digit hash input", width),
		})
	}
	return nil
}

// EffectiveHashWidth is the width ids are formatted to before hashing.
func (c RainbowConfig) EffectiveHashWidth() int {
	if c.HashWidth == 0 {
		return int(c.Digits)
	}
	return c.HashWidth
}

// MaxId is 10^Digits, the exclusive upper bound of the keyspace.
func (c RainbowConfig) MaxId() (uint64, error) {
	maxId := uint64(1)
	for i := uint(0); i < c.Digits; i++ {
		if maxId > ^uint64(0)/10 {
			return 0, errors.WithStack(&rainbowerrors.ErrInvalidArgument{
				Name:    "Digits",
				Value:   c.Digits,
				Message: "10^digits overflows a 64 bit id",
			})
		}
		maxId *= 10
	}
	return maxId, nil
}

// ResolveJobs returns the configured job count, or numCPU if none was configured.
func (c RainbowConfig) ResolveJobs(numCPU int) int {
	if c.Jobs == 0 {
		return numCPU
	}
	return c.Jobs
}

// ResolveWorkers returns the configured worker count, or numCPU if none was configured.
func (c RainbowConfig) ResolveWorkers(numCPU int) int {
	if c.Workers == 0 {
		return numCPU
	}
	return c.Workers
}
