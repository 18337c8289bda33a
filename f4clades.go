/*
f4clades tests the clades of a rooted tree against a table of f4 statistics.
Starting from one leaf of every terminal cherry (or polytomy) it walks towards
the root, and at each level looks for statistics f4(O; t, u, v) with |Z| above
the threshold, where v is the current clade, u its sister group, and t the
rest of the tree. Any such statistic is evidence against the clade.

usage: f4clades [ -f <format> | -z <threshold> | -o <file> | -c | -p <prefix> | -n <int> | -timeout <duration> | -h | -v ] <tree> <f4_table>

positional arguments:

	<tree>		rooted newick (or nexus) tree
	<f4_table>	f4 table; one "outgroup p1 p2 p3 Z" record per line

flags:

	-c	write csv instead of text report
	-f format
	  	tree file format [ newick | nexus ] (default "newick")
	-h	prints this message and exits
	-n int
	  	number of parallel processes
	-o file
	  	output file (default stdout)
	-p prefix
	  	write plot of violations per level to <prefix>.png
	-timeout duration
	  	time limit for the walk from a single leaf (default none)
	-v	prints version number and exits
	-z threshold
	  	absolute Z-score threshold for significance (default 3)

examples:

	f4clades tree.nwk f4.txt > report.txt 2> log.txt
	f4clades -c -z 3.5 -o report.csv -p violations tree.nwk f4.txt
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/jsdoublel/f4clades/internal/check"
	fs "github.com/jsdoublel/f4clades/internal/fstats"
	pr "github.com/jsdoublel/f4clades/internal/prep"
	sc "github.com/jsdoublel/f4clades/internal/score"
)

const (
	Version    = "v0.1.0"
	ErrMessage = "f4clades encountered an error ::"
)

type args struct {
	format      pr.Format    // tree file format
	treeFile    string       // tree to test
	tableFile   string       // f4 table
	outputFile  string       // report file (stdout if empty)
	csv         bool         // csv report instead of text
	plotPrefix  string       // plot file prefix (no plot if empty)
	threshold   sc.Threshold // Z-score threshold
	nprocs      int          // number of parallel processes
	walkTimeout time.Duration
}

func setNProcs(nprocs int) int {
	maxProcs := runtime.GOMAXPROCS(0)
	switch {
	case nprocs > maxProcs:
		log.Printf("%d is greater than available processes (%d); limit set to %d\n", nprocs, maxProcs, maxProcs)
		return maxProcs
	case nprocs <= 0:
		log.Printf("number of processes not set; defaulting to %d processes\n", maxProcs)
		return maxProcs
	default:
		return nprocs
	}
}

func parseArgs() args {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr,
			"usage: f4clades [ -f <format> | -z <threshold> | -o <file> | -c | -p <prefix> | -n <int> | -timeout <duration> | -h | -v ] <tree> <f4_table>\n",
			"\n",
			"positional arguments:\n\n",
			"  <tree>\t\trooted newick (or nexus) tree\n",
			"  <f4_table>\tf4 table; one \"outgroup p1 p2 p3 Z\" record per line\n",
			"\n",
			"flags:\n\n",
		)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr,
			"\n",
			"examples:\n\n",
			"\tf4clades tree.nwk f4.txt > report.txt 2> log.txt\n",
			"\tf4clades -c -z 3.5 -o report.csv -p violations tree.nwk f4.txt\n",
		)
	}
	format := pr.Newick
	flag.Var(&format, "f", "tree file `format` [ newick | nexus ] (default \"newick\")")
	thresh := flag.Float64("z", float64(sc.DefaultThreshold), "absolute Z-score `threshold` for significance")
	output := flag.String("o", "", "output `file` (default stdout)")
	csv := flag.Bool("c", false, "write csv instead of text report")
	plotPrefix := flag.String("p", "", "write plot of violations per level to <`prefix`>.png")
	nprocs := flag.Int("n", 0, "number of parallel processes")
	timeout := flag.Duration("timeout", 0, "time limit for the walk from a single leaf (default none)")
	help := flag.Bool("h", false, "prints this message and exits")
	ver := flag.Bool("v", false, "prints version number and exits")
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *ver {
		fmt.Printf("f4clades version %s\n", Version)
		os.Exit(0)
	}
	if flag.NArg() != 2 {
		parserError("two positional arguments required: <tree> <f4_table>")
	}
	var threshold sc.Threshold
	if err := threshold.Set(*thresh); err != nil {
		parserError(err.Error())
	}
	if *timeout < 0 {
		parserError(fmt.Sprintf("timeout %s must not be negative", *timeout))
	}
	return args{
		format:      format,
		treeFile:    flag.Arg(0),
		tableFile:   flag.Arg(1),
		outputFile:  *output,
		csv:         *csv,
		plotPrefix:  *plotPrefix,
		threshold:   threshold,
		nprocs:      setNProcs(*nprocs),
		walkTimeout: *timeout,
	}
}

// prints message, usage, and exits (status code 1)
func parserError(message string) {
	fmt.Fprintln(os.Stderr, message)
	flag.Usage()
	os.Exit(1)
}

func writeOutput(args args, write func(io.Writer) error) error {
	if args.outputFile == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(args.outputFile)
	if err != nil {
		return fmt.Errorf("%w, %s", pr.ErrWritingFile, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("f4clades version %s", Version)
	args := parseArgs()
	tre, records, err := pr.ReadInputFiles(args.treeFile, args.tableFile, args.format)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	td, err := pr.Preprocess(tre)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	tbl, err := fs.Expand(records)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	log.Printf("read %d f4 records (%d after completion)", len(records), tbl.Len())
	log.Println("testing clades...")
	report, err := check.Check(context.Background(), td, tbl, check.Options{
		NProcs:      args.nprocs,
		Threshold:   args.threshold,
		WalkTimeout: args.walkTimeout,
	})
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	err = writeOutput(args, func(w io.Writer) error {
		if args.csv {
			return pr.WriteReportCSV(w, td, report)
		}
		return pr.WriteReport(w, td, report)
	})
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	if args.plotPrefix != "" {
		if err := pr.WriteViolationsPlot(report, args.plotPrefix); err != nil {
			log.Printf("could not write plot: %s", err)
		}
	}
	if n := report.Failed(); n > 0 {
		log.Printf("WARNING: %d of %d walks stopped early; see report", n, len(report.Leaves))
	}
	log.Println("done")
}
