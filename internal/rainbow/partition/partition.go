// Package partition splits the id space into contiguous jobs.
package partition

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/G-Research/rainbow/internal/common/rainbowerrors"
)

// IdRange is the half-open interval [Start, End).
type IdRange struct {
	Start uint64
	End   uint64
}

func (r IdRange) Len() uint64 {
	return r.End - r.Start
}

func (r IdRange) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Partition splits [0, maxValue) into jobCount ranges of maxValue/jobCount ids each. If jobCount doesn't divide
// maxValue, one extra trailing range holds the remainder, so up to jobCount+1 ranges may be returned.
// Ranges are sorted, pairwise disjoint and never empty.
func Partition(maxValue uint64, jobCount int) ([]IdRange, error) {
	if jobCount <= 0 {
		return nil, errors.WithStack(&rainbowerrors.ErrInvalidArgument{
			Name:    "jobs",
			Value:   jobCount,
			Message: "job count must be positive",
		})
	}

	count := uint64(jobCount)
	jobSize := maxValue / count
	remainder := maxValue % count

	jobs := make([]IdRange, 0, jobCount+1)
	if jobSize > 0 {
		for i := uint64(0); i < count; i++ {
			jobs = append(jobs, IdRange{Start: i * jobSize, End: (i + 1) * jobSize})
		}
	}
	if remainder != 0 {
		jobs = append(jobs, IdRange{Start: count * jobSize, End: maxValue})
	}
	return jobs, nil
}
