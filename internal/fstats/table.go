// Package for f4 statistic tables: parsing raw records and completing them
// under the antisymmetry f4(O,A,B,C) = -f4(O,A,C,B)
package fstats

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"maps"
	"slices"
	"strconv"
)

const (
	NFields = 5 // outgroup, p1, p2, p3, Z-score

	zTolerance = 1e-9
)

var (
	ErrParse        = errors.New("malformed f4 record")
	ErrInconsistent = errors.New("inconsistent f4 table")
)

// Raw table record; Line is the line number in the source file (used for
// error messages only)
type Record struct {
	Line   int
	Fields []string
}

// Key for the statistic f4(Outgroup; P1, P2, P3)
type Key struct {
	Outgroup string
	P1       string
	P2       string
	P3       string
}

// Antisymmetric counterpart of the key, i.e., P2 and P3 swapped
func (k Key) Swap() Key {
	return Key{Outgroup: k.Outgroup, P1: k.P1, P2: k.P3, P3: k.P2}
}

func (k Key) String() string {
	return fmt.Sprintf("f(%s, %s, %s, %s)", k.Outgroup, k.P1, k.P2, k.P3)
}

func (k Key) compare(k2 Key) int {
	return cmp.Or(
		cmp.Compare(k.Outgroup, k2.Outgroup),
		cmp.Compare(k.P1, k2.P1),
		cmp.Compare(k.P2, k2.P2),
		cmp.Compare(k.P3, k2.P3),
	)
}

// One f4 statistic with its Z-score
type Row struct {
	Key
	Z float64
}

// Completed f4 table. Read-only after Expand returns.
type Table struct {
	outgroup string
	zscores  map[Key]float64
}

type entry struct {
	z    float64
	line int // 0 if synthesized
}

// Builds the completed table from raw records. Returns ErrParse if a record
// does not have exactly five fields or its Z-score is not a finite number,
// and ErrInconsistent if two records (or a record and its antisymmetric
// counterpart) disagree; conflicts are reported in key order. The outgroup is
// the first field of the first record.
func Expand(records []Record) (*Table, error) {
	entries := make(map[Key]entry, 2*len(records))
	for _, rec := range records {
		row, err := ParseRecord(rec)
		if err != nil {
			return nil, err
		}
		if prev, ok := entries[row.Key]; ok {
			if !sameZ(prev.z, row.Z) {
				return nil, fmt.Errorf("%w, %s is %s on line %d but %s on line %d",
					ErrInconsistent, row.Key, formatZ(prev.z), prev.line, formatZ(row.Z), rec.Line)
			}
			continue
		}
		entries[row.Key] = entry{z: row.Z, line: rec.Line}
	}
	zscores := make(map[Key]float64, 2*len(entries))
	for _, k := range slices.SortedFunc(maps.Keys(entries), Key.compare) {
		e := entries[k]
		zscores[k] = e.z
		swapped := k.Swap()
		other, ok := entries[swapped]
		switch {
		case !ok:
			zscores[swapped] = -e.z
		case !sameZ(other.z, -e.z):
			if swapped == k {
				return nil, fmt.Errorf("%w, %s on line %d must be zero as %s = %s",
					ErrInconsistent, k, e.line, k.P2, k.P3)
			}
			return nil, fmt.Errorf("%w, %s = %s on line %d but %s = %s on line %d (expected %s)",
				ErrInconsistent, k, formatZ(e.z), e.line, swapped, formatZ(other.z), other.line, formatZ(-e.z))
		}
	}
	tbl := &Table{zscores: zscores}
	if len(records) > 0 {
		tbl.outgroup = records[0].Fields[0]
	}
	return tbl, nil
}

// Parse a single raw record
func ParseRecord(rec Record) (Row, error) {
	if len(rec.Fields) != NFields {
		return Row{}, fmt.Errorf("%w on line %d, expected %d fields but found %d",
			ErrParse, rec.Line, NFields, len(rec.Fields))
	}
	z, err := strconv.ParseFloat(rec.Fields[4], 64)
	if err != nil || math.IsNaN(z) || math.IsInf(z, 0) {
		return Row{}, fmt.Errorf("%w on line %d, Z-score %q is not a finite number",
			ErrParse, rec.Line, rec.Fields[4])
	}
	return Row{
		Key: Key{Outgroup: rec.Fields[0], P1: rec.Fields[1], P2: rec.Fields[2], P3: rec.Fields[3]},
		Z:   z,
	}, nil
}

func sameZ(z1, z2 float64) bool {
	return math.Abs(z1-z2) <= zTolerance
}

func formatZ(z float64) string {
	return strconv.FormatFloat(z, 'f', -1, 64)
}

// Look up the Z-score of f4(o; p1, p2, p3)
func (tbl *Table) Get(o, p1, p2, p3 string) (float64, bool) {
	z, ok := tbl.zscores[Key{Outgroup: o, P1: p1, P2: p2, P3: p3}]
	return z, ok
}

// Outgroup of the table (first field of the first record); empty if the
// table is empty
func (tbl *Table) Outgroup() string {
	return tbl.outgroup
}

// Number of statistics after completion
func (tbl *Table) Len() int {
	return len(tbl.zscores)
}

// All statistics sorted by key
func (tbl *Table) Rows() []Row {
	keys := slices.SortedFunc(maps.Keys(tbl.zscores), Key.compare)
	rows := make([]Row, len(keys))
	for i, k := range keys {
		rows[i] = Row{Key: k, Z: tbl.zscores[k]}
	}
	return rows
}
