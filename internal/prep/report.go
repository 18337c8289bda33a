package prep

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/jsdoublel/f4clades/internal/check"
	gr "github.com/jsdoublel/f4clades/internal/graphs"
)

// Write human readable report: for every target leaf, every clade tested on
// the way up to the root and the statistics that reject it.
func WriteReport(w io.Writer, td *gr.TreeData, r *check.Report) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "We will test the following tree:\n%s\n\n", td.Newick(td.Root()))
	fmt.Fprintf(&sb, "Outgroup: %s\nZ-score threshold: %s\n\n", r.Outgroup, r.Threshold)
	fmt.Fprintf(&sb, "A set of target (outermost, non-sister) leaves is: %s\n", strings.Join(r.Targets, ", "))
	for i, lr := range r.Leaves {
		fmt.Fprintf(&sb, "\n\n%d. Testing from leaf %s\n", i+1, lr.Leaf)
		if len(lr.Levels) == 0 && lr.Err == nil {
			sb.WriteString("\nNo clade below the root contains this leaf; nothing to test.\n")
		}
		for j, l := range lr.Levels {
			if j > 0 {
				sb.WriteString("\nMoving one level up the tree...\n")
			}
			res := l.Result
			fmt.Fprintf(&sb, "\n%d.%d. Testing the following clade:\n%s\n", i+1, l.Index+1, td.Newick(res.Parent))
			fmt.Fprintf(&sb, "\nThat is, looking for evidence to reject the hypothesis that the set of populations %s\n", setString(res.U))
			fmt.Fprintf(&sb, "forms a clade with the set of populations %s\n", setString(res.V))
			fmt.Fprintf(&sb, "with respect to the rest of the populations in the tree %s...\n", setString(res.T))
			if res.Rejected {
				sb.WriteString("\nEvidence found in the form of the following results:\n")
				for _, v := range res.Violations {
					fmt.Fprintf(&sb, "\tThe statistic %s has a Z-score of %s.\n", v.Key, formatZ(v.Z))
				}
				sb.WriteString("\nClade rejected.\n")
			} else {
				fmt.Fprintf(&sb, "\nNo evidence found (%d statistics available).\nClade not rejected.\n", res.Tested)
			}
		}
		if lr.Err != nil {
			fmt.Fprintf(&sb, "\nWalk stopped: %s\n", lr.Err)
		}
	}
	tested, rejected := countLevels(r)
	fmt.Fprintf(&sb, "\n\nThe set of target leaves has been exhausted.\n")
	fmt.Fprintf(&sb, "%d clades tested, %d rejected, %d walks failed.\n", tested, rejected, r.Failed())
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("%w, %s", ErrWritingFile, err)
	}
	return nil
}

// Write csv report with one row per tested clade (or per failed walk).
//
// Columns: "leaf", "level", "clade", "u", "v", "tested", "violations",
// "rejected", "statistics", "error"
func WriteReportCSV(w io.Writer, td *gr.TreeData, r *check.Report) (err error) {
	data := [][]string{{"leaf", "level", "clade", "u", "v", "tested", "violations", "rejected", "statistics", "error"}}
	for _, lr := range r.Leaves {
		for _, l := range lr.Levels {
			res := l.Result
			stats := make([]string, len(res.Violations))
			for i, v := range res.Violations {
				stats[i] = fmt.Sprintf("%s=%s", v.Key, formatZ(v.Z))
			}
			data = append(data, []string{
				lr.Leaf,
				strconv.Itoa(l.Index + 1),
				td.Newick(res.Parent),
				strings.Join(res.U, " "),
				strings.Join(res.V, " "),
				strconv.Itoa(res.Tested),
				strconv.Itoa(len(res.Violations)),
				strconv.FormatBool(res.Rejected),
				strings.Join(stats, ";"),
				"",
			})
		}
		if lr.Err != nil {
			data = append(data, []string{lr.Leaf, "", "", "", "", "", "", "", "", lr.Err.Error()})
		}
	}
	writer := csv.NewWriter(w)
	defer func() {
		writer.Flush()
		if err == nil {
			err = writer.Error()
		} else if writer.Error() != nil {
			log.Printf("error when flushing output csv, %s", writer.Error())
		}
	}()
	if err = writer.WriteAll(data); err != nil {
		err = fmt.Errorf("%w, %s", ErrWritingFile, err)
		return
	}
	return
}

func countLevels(r *check.Report) (tested, rejected int) {
	for _, lr := range r.Leaves {
		tested += len(lr.Levels)
		rejected += lr.Rejected()
	}
	return
}

func setString(names []string) string {
	return "{" + strings.Join(names, ", ") + "}"
}

func formatZ(z float64) string {
	return strconv.FormatFloat(z, 'f', -1, 64)
}
