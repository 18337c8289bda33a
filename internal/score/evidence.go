// Package implementing the evaluation of clade hypotheses against a
// completed f4 table
package score

import (
	"context"
	"slices"
	"time"

	fs "github.com/jsdoublel/f4clades/internal/fstats"
	"github.com/jsdoublel/f4clades/internal/walk"
)

// number of table lookups between context checks in Evaluate
const checkEvery = 1024

// Anything that can look up f4(o; p1, p2, p3); *fstats.Table implements it
type Lookup interface {
	Get(o, p1, p2, p3 string) (float64, bool)
}

type Result struct {
	walk.Hypothesis
	Violations []fs.Row // statistics with |Z| > threshold, sorted by (p1, p2, p3)
	Tested     int      // number of statistics found in the table
	Rejected   bool     // at least one violation
}

// Looks up f4(outgroup; p1, p2, p3) for every (p1, p2, p3) in T x U x V and
// collects those with |Z| > thresh. Statistics missing from the table are
// skipped; they are neither evidence for nor against the clade. ctx is
// checked every checkEvery triples, so a large product can be abandoned
// part way; the partial result is discarded.
func Evaluate(ctx context.Context, h walk.Hypothesis, outgroup string, tbl Lookup, thresh Threshold) (Result, error) {
	res := Result{Hypothesis: h, Violations: make([]fs.Row, 0)}
	ts, us, vs := sorted(h.T), sorted(h.U), sorted(h.V)
	n := 0
	for _, p1 := range ts {
		for _, p2 := range us {
			for _, p3 := range vs {
				if n%checkEvery == 0 {
					if err := expired(ctx); err != nil {
						return Result{}, err
					}
				}
				n++
				z, ok := tbl.Get(outgroup, p1, p2, p3)
				if !ok {
					continue
				}
				res.Tested++
				if thresh.Significant(z) {
					res.Violations = append(res.Violations, fs.Row{
						Key: fs.Key{Outgroup: outgroup, P1: p1, P2: p2, P3: p3},
						Z:   z,
					})
				}
			}
		}
	}
	res.Rejected = len(res.Violations) > 0
	return res, nil
}

// Reports ctx's error, or context.DeadlineExceeded once its deadline has
// passed even if the timer behind it has not fired yet
func expired(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return nil
}

func sorted(names []string) []string {
	if slices.IsSorted(names) {
		return names
	}
	return slices.Sorted(slices.Values(names))
}
