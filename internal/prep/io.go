package prep

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/evolbioinfo/gotree/io/newick"
	"github.com/evolbioinfo/gotree/io/nexus"
	"github.com/evolbioinfo/gotree/tree"

	fs "github.com/jsdoublel/f4clades/internal/fstats"
)

var (
	ErrInvalidFile   = errors.New("invalid file")
	ErrInvalidFormat = errors.New("invalid format")
	ErrWritingFile   = errors.New("error writing file")
)

type Format int

const (
	Newick Format = iota
	Nexus
)

var ParseFormat = map[string]Format{
	"newick": Newick,
	"nexus":  Nexus,
}

func (f *Format) Set(s string) error {
	if format, ok := ParseFormat[s]; ok {
		*f = format
		return nil
	}
	return fmt.Errorf("\"%s\" is not a valid tree file format", s)
}

func (f Format) String() string {
	for s, fr := range ParseFormat {
		if fr == f {
			return s
		}
	}
	panic(fmt.Sprintf("format (%d) does not exist", f))
}

// Reads in and validates the tree and f4 table input files.
// Returns an error if the tree is not valid newick/nexus, the tree file does
// not contain exactly one tree, or the table file is empty.
func ReadInputFiles(treeFile, tableFile string, format Format) (*tree.Tree, []fs.Record, error) {
	flags := log.Flags()
	lout := log.Writer()
	log.SetOutput(io.Discard) // gotree can be noisy
	tre, err := readTreeFile(treeFile, format)
	log.SetOutput(lout)
	log.SetFlags(flags)
	if err != nil {
		return nil, nil, err
	}
	records, err := readTableFile(tableFile)
	if err != nil {
		return nil, nil, err
	}
	return tre, records, nil
}

// reads and validates tree file
func readTreeFile(treeFile string, format Format) (*tree.Tree, error) {
	switch format {
	case Newick:
		treBytes, err := os.ReadFile(treeFile)
		if err != nil {
			return nil, fmt.Errorf("error reading tree file: %w", err)
		}
		treBytes = bytes.TrimSpace(treBytes)
		if bytes.Count(treBytes, []byte{byte('\n')}) != 0 || len(treBytes) == 0 {
			return nil, fmt.Errorf("%w, there should only be exactly one newick tree in tree file %s",
				ErrInvalidFile, treeFile)
		}
		tre, err := newick.NewParser(bytes.NewReader(treBytes)).Parse()
		if err != nil {
			return nil, fmt.Errorf("%w, error parsing tree newick string from %s: %s",
				ErrInvalidFormat, treeFile, err.Error())
		}
		return tre, nil
	case Nexus:
		file, err := os.Open(treeFile)
		if err != nil {
			return nil, fmt.Errorf("error opening %s, %w", treeFile, err)
		}
		defer file.Close()
		nex, err := nexus.NewParser(file).Parse()
		if err != nil {
			return nil, fmt.Errorf("%w, error reading tree nexus file %s: %s",
				ErrInvalidFormat, treeFile, err.Error())
		}
		trees := make([]*tree.Tree, 0)
		nex.IterateTrees(func(s string, t *tree.Tree) {
			trees = append(trees, t)
		})
		if len(trees) != 1 {
			return nil, fmt.Errorf("%w, there should only be exactly one tree in nexus file %s (found %d)",
				ErrInvalidFile, treeFile, len(trees))
		}
		return trees[0], nil
	default:
		return nil, fmt.Errorf("%w, not a valid file format", ErrInvalidFile)
	}
}

// Reads f4 table; one whitespace separated record per line
// (outgroup p1 p2 p3 Z). Blank lines and lines starting with # are skipped.
// Field count and Z-scores are validated by fstats.Expand.
func readTableFile(tableFile string) ([]fs.Record, error) {
	file, err := os.Open(tableFile)
	if err != nil {
		return nil, fmt.Errorf("error opening %s, %w", tableFile, err)
	}
	defer file.Close()
	records, err := ReadTable(file)
	if err != nil {
		return nil, fmt.Errorf("%w, error reading f4 table %s: %s", ErrInvalidFile, tableFile, err.Error())
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w, empty f4 table %s", ErrInvalidFile, tableFile)
	}
	return records, nil
}

func ReadTable(r io.Reader) ([]fs.Record, error) {
	records := make([]fs.Record, 0)
	scanner := bufio.NewScanner(r)
	for i := 1; scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		records = append(records, fs.Record{Line: i, Fields: strings.Fields(line)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
