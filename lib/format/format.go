/*package format handles the small language boxio uses to pick out grids on
the command line, e.g:

   --grids "0..63 - 7 + 100"

A sequence is a series of terms separated by "+" or "-". Each term is either a
single grid index or an inclusive range written as two indices separated by
"..". "+" terms add indices and "-" terms remove them, with every addition
applied before any removal. The leading "+" may be dropped. For example:

  100
  0..100
  0..10 + 100
  0..100 - 63 - 10..20

Spaces around "+" and "-" are ignored. Adding an index twice or removing one
that isn't there is an error, since it almost always means a typo.
*/
package format

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// Any expanded sequence which would have more than BigNumber elements is
	// assumed to be a bug.
	BigNumber = 1<<20
	// All is the sequence which selects every grid.
	All = "all"
)

// term is a single signed range of a sequence.
type term struct {
	remove bool
	lo, hi int
}

// ExpandSequenceFormat expands a sequence format string into a sorted sequence
// of integers.
func ExpandSequenceFormat(format string) ([]int, error) {
	tok, err := tokeniseSequenceFormat(format)
	if err != nil { return nil, err }
	terms, err := parseTerms(tok)
	if err != nil { return nil, err }

	n := 0
	for _, t := range terms {
		// Both bounds are non-negative, so t.hi - t.lo can't overflow.
		if t.hi - t.lo >= BigNumber {
			return nil, errors.Errorf("The range %d..%d in '%s' has more "+
				"than %d elements, which is almost certianly a bug.",
				t.lo, t.hi, format, BigNumber)
		}
		if t.remove { continue }
		n += t.hi - t.lo + 1
		if n > BigNumber {
			return nil, errors.Errorf("The sequence '%s' would have more "+
				"than %d elements, which is almost certianly a bug.",
				format, BigNumber)
		}
	}

	m := map[int]bool{ }
	for _, t := range terms {
		if t.remove { continue }
		for k := 0; k <= t.hi - t.lo; k++ {
			i := t.lo + k
			if m[i] {
				return nil, errors.Errorf("The number %d is added more "+
					"than once.", i)
			}
			m[i] = true
		}
	}

	for _, t := range terms {
		if !t.remove { continue }
		for k := 0; k <= t.hi - t.lo; k++ {
			i := t.lo + k
			if !m[i] {
				return nil, errors.Errorf("The number %d is removed more "+
					"times than it was inserted.", i)
			}
			delete(m, i)
		}
	}

	out := []int{ }
	for i := range m { out = append(out, i) }
	sort.Ints(out)
	return out, nil
}

// ExpandGridFormat expands a sequence of grid indices for a dataset with n
// grids. The empty string and All select every grid. Indices outside
// [0, n) are errors.
func ExpandGridFormat(format string, n int) ([]int, error) {
	if s := strings.TrimSpace(format); s == "" || s == All {
		out := make([]int, n)
		for i := range out { out[i] = i }
		return out, nil
	}

	idx, err := ExpandSequenceFormat(format)
	if err != nil {
		return nil, errors.Wrapf(err, "The grid sequence '%s' is not valid",
			format)
	}

	for _, i := range idx {
		if i < 0 || i >= n {
			return nil, errors.Errorf("The grid sequence '%s' contains %d, "+
				"but the dataset only has %d grids.", format, i, n)
		}
	}
	return idx, nil
}

// tokeniseSequenceFormat splits a sequence format string into terms and
// operators.
func tokeniseSequenceFormat(format string) ([]string, error) {
	clean := strings.ReplaceAll(format, "+", " + ")
	clean = strings.ReplaceAll(clean, "-", " - ")

	tok := strings.Fields(clean)
	if len(tok) == 0 {
		return nil, errors.New("The format string is empty.")
	}
	return tok, nil
}

// parseTerms turns a token stream into terms.
func parseTerms(tok []string) ([]term, error) {
	if len(tok) == 0 { return nil, errors.New("The format string is empty.") }

	// Handle the case where the starting "+" is dropped.
	if tok[0] != "+" && tok[0] != "-" {
		tok = append([]string{ "+" }, tok...)
	}

	terms := []term{ }
	for i := 0; i < len(tok); i += 2 {
		if tok[i] != "-" && tok[i] != "+" {
			return nil, errors.Errorf("Element '%s' should be a '-' or '+', "+
				"but isn't.", tok[i])
		}
		if i + 1 >= len(tok) {
			return nil, errors.Errorf("The format string ends in a "+
				"trailing '%s'.", tok[i])
		}

		t, err := parseTerm(tok[i+1])
		if err != nil {
			return nil, errors.Wrapf(err, "Element '%s' cannot be parsed",
				tok[i+1])
		}
		t.remove = tok[i] == "-"
		terms = append(terms, t)
	}

	return terms, nil
}

// parseTerm parses a single index or range.
func parseTerm(tok string) (term, error) {
	bounds := strings.Split(tok, "..")

	switch len(bounds) {
	case 1:
		n, err := strconv.Atoi(bounds[0])
		if err != nil {
			return term{ }, errors.Errorf("'%s' is not an integer.", bounds[0])
		}
		return term{ lo: n, hi: n }, nil
	case 2:
		lo, err := strconv.Atoi(bounds[0])
		if err != nil {
			return term{ }, errors.Errorf("'%s' is not an integer.", bounds[0])
		}
		hi, err := strconv.Atoi(bounds[1])
		if err != nil {
			return term{ }, errors.Errorf("'%s' is not an integer.", bounds[1])
		}
		if hi < lo {
			return term{ }, errors.Errorf("Lower bound %d is larger than "+
				"upper bound %d.", lo, hi)
		}
		return term{ lo: lo, hi: hi }, nil
	}
	return term{ }, errors.Errorf("'%s' has more than one '..'.", tok)
}
