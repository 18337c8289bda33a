// Package running the clade test: one isolated walk per target leaf, each
// hypothesis along the walk evaluated against the f4 table
package check

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	fs "github.com/jsdoublel/f4clades/internal/fstats"
	gr "github.com/jsdoublel/f4clades/internal/graphs"
	sc "github.com/jsdoublel/f4clades/internal/score"
	"github.com/jsdoublel/f4clades/internal/walk"
)

type Options struct {
	NProcs      int           // number of parallel walks
	Threshold   sc.Threshold  // absolute Z-score threshold
	WalkTimeout time.Duration // deadline for a single walk (0 for none)
}

// One step of a walk
type Level struct {
	Index  int
	Result sc.Result
}

// Results of the walk starting from one target leaf. If Err is not nil the
// walk stopped early and Levels holds the levels evaluated before the error.
type LeafReport struct {
	Leaf   string
	Levels []Level
	Err    error
}

func (lr *LeafReport) Rejected() int {
	n := 0
	for _, l := range lr.Levels {
		if l.Result.Rejected {
			n++
		}
	}
	return n
}

type Report struct {
	Outgroup  string
	Threshold sc.Threshold
	Targets   []string     // target leaves in walk order
	Leaves    []LeafReport // one per target, same order as Targets
}

// Number of leaves whose walk ended with an error
func (r *Report) Failed() int {
	n := 0
	for _, lr := range r.Leaves {
		if lr.Err != nil {
			n++
		}
	}
	return n
}

// Runs the test on every target leaf. Errors from a single walk are stored in
// that leaf's report and do not stop the other walks; the returned error is
// only non-nil if the targets cannot be computed or ctx is done.
func Check(ctx context.Context, tre gr.TreeModel, tbl *fs.Table, opts Options) (*Report, error) {
	targets, err := walk.Targets(tre)
	if err != nil {
		return nil, err
	}
	outgroup := tbl.Outgroup()
	log.Printf("%d target leaves, outgroup %q, %d statistics after completion", len(targets), outgroup, tbl.Len())
	w := walk.NewWalker(tre, outgroup)
	report := &Report{
		Outgroup:  outgroup,
		Threshold: opts.Threshold,
		Targets:   make([]string, len(targets)),
		Leaves:    make([]LeafReport, len(targets)),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.NProcs, 1))
	for i, leaf := range targets {
		report.Targets[i] = tre.Name(leaf)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Leaves[i] = runWalk(gctx, w, tre, leaf, tbl, opts)
			if lerr := report.Leaves[i].Err; lerr != nil {
				log.Printf("walk from leaf %s stopped: %s", report.Leaves[i].Leaf, lerr)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return report, nil
}

func runWalk(ctx context.Context, w *walk.Walker, tre gr.TreeModel, leaf int, tbl *fs.Table, opts Options) LeafReport {
	lr := LeafReport{Leaf: tre.Name(leaf), Levels: make([]Level, 0)}
	if opts.WalkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.WalkTimeout)
		defer cancel()
	}
	for h, err := range w.Hypotheses(leaf) {
		if err != nil {
			lr.Err = err
			return lr
		}
		res, err := sc.Evaluate(ctx, h, tbl.Outgroup(), tbl, opts.Threshold)
		if err != nil {
			lr.Err = fmt.Errorf("walk from %s abandoned at level %d: %w", lr.Leaf, h.Level, err)
			return lr
		}
		lr.Levels = append(lr.Levels, Level{Index: h.Level, Result: res})
	}
	return lr
}
