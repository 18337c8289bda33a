package score

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

const DefaultThreshold Threshold = 3

var ErrTypeOutRange = errors.New("out of type range")

// Absolute Z-score above which a statistic counts as evidence against a
// clade
type Threshold float64

func (thresh *Threshold) Set(n float64) error {
	if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("threshold %f is %w, must be a finite non-negative number", n, ErrTypeOutRange)
	}
	*thresh = Threshold(n)
	return nil
}

func (thresh Threshold) String() string {
	return strconv.FormatFloat(float64(thresh), 'f', -1, 64)
}

// Strictly greater; |z| == threshold is not significant
func (thresh Threshold) Significant(z float64) bool {
	return math.Abs(z) > float64(thresh)
}
