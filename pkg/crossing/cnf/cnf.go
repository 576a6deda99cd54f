package cnf

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Clause is a disjunction of signed, 1-based variables.
type Clause []int

// CNF is an ordered conjunction of clauses over variables 1..Vars.
type CNF struct {
	Vars    int
	Clauses []Clause
}

// Add appends c, growing Vars to cover its variables.
func (f *CNF) Add(c Clause) {
	for _, m := range c {
		if v := abs(m); v > f.Vars {
			f.Vars = v
		}
	}
	f.Clauses = append(f.Clauses, c)
}

// Len returns the number of clauses.
func (f *CNF) Len() int {
	return len(f.Clauses)
}

// Eval reports whether every clause has a literal made true by
// assignment. Variables missing from assignment are false.
func (f *CNF) Eval(assignment []int) bool {
	value := make(map[int]bool, len(assignment))
	for _, m := range assignment {
		value[abs(m)] = m > 0
	}
	for _, c := range f.Clauses {
		sat := false
		for _, m := range c {
			if value[abs(m)] == (m > 0) {
				sat = true
				break
			}
		}
		if !sat {
			return false
		}
	}
	return true
}

// WriteDIMACS writes f in DIMACS cnf format.
func (f *CNF) WriteDIMACS(w io.Writer) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)
	buf = append(buf, "p cnf "...)
	buf = strconv.AppendInt(buf, int64(f.Vars), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(len(f.Clauses)), 10)
	buf = append(buf, '\n')
	if _, err := bw.Write(buf); err != nil {
		return errors.Wrap(err, "writing dimacs header")
	}
	for _, c := range f.Clauses {
		buf = buf[:0]
		for _, m := range c {
			buf = strconv.AppendInt(buf, int64(m), 10)
			buf = append(buf, ' ')
		}
		buf = append(buf, '0', '\n')
		if _, err := bw.Write(buf); err != nil {
			return errors.Wrap(err, "writing dimacs clause")
		}
	}
	return errors.Wrap(bw.Flush(), "flushing dimacs output")
}

func abs(m int) int {
	if m < 0 {
		return -m
	}
	return m
}
