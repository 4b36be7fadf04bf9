package score

import (
	"strconv"
	"strings"

	"github.com/hupe1980/shortlist/internal/contract"
)

// CompositeScore is a Rows x Width integer matrix.
//
// Column 0 belongs to the highest priority group. Comparison walks columns
// from 0 upwards and, inside a column, rows must, nice, minor. The shape is
// fixed at construction. A CompositeScore is immutable once returned by a
// Combiner.
type CompositeScore struct {
	width int
	cells []int // column-major
}

// NewCompositeScore returns an all-zero score with the given width.
func NewCompositeScore(width int) CompositeScore {
	if width < 0 {
		width = 0
	}
	return CompositeScore{width: width, cells: make([]int, width*Rows)}
}

// Width returns the number of columns.
func (s CompositeScore) Width() int { return s.width }

// At returns the cell at row, col.
func (s CompositeScore) At(row, col int) int { return s.cells[col*Rows+row] }

// Column returns column col.
func (s CompositeScore) Column(col int) VerdictVector {
	var v VerdictVector
	copy(v[:], s.cells[col*Rows:(col+1)*Rows])
	return v
}

func (s *CompositeScore) add(col int, v VerdictVector) {
	base := col * Rows
	for r := 0; r < Rows; r++ {
		s.cells[base+r] += v[r]
	}
}

// Compare returns -1, 0 or +1. Panics if the shapes differ.
func (s CompositeScore) Compare(o CompositeScore) int {
	if s.width != o.width {
		contract.Failf("score.Compare", ErrShapeMismatch, "width %d vs %d", s.width, o.width)
	}
	for i, c := range s.cells {
		switch d := o.cells[i]; {
		case c < d:
			return -1
		case c > d:
			return 1
		}
	}
	return 0
}

// Less reports whether s ranks strictly below o.
func (s CompositeScore) Less(o CompositeScore) bool { return s.Compare(o) < 0 }

// Equal reports whether both scores have the same shape and cells.
func (s CompositeScore) Equal(o CompositeScore) bool {
	return s.width == o.width && s.Compare(o) == 0
}

// Clone returns a deep copy.
func (s CompositeScore) Clone() CompositeScore {
	return CompositeScore{width: s.width, cells: append([]int(nil), s.cells...)}
}

// Matrix returns the score as rows x columns.
func (s CompositeScore) Matrix() [Rows][]int {
	var m [Rows][]int
	for r := 0; r < Rows; r++ {
		m[r] = make([]int, s.width)
		for c := 0; c < s.width; c++ {
			m[r][c] = s.At(r, c)
		}
	}
	return m
}

// String renders the score column by column, e.g. "[1 0 0|0 1 3]".
func (s CompositeScore) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for c := 0; c < s.width; c++ {
		if c > 0 {
			b.WriteByte('|')
		}
		for r := 0; r < Rows; r++ {
			if r > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.Itoa(s.At(r, c)))
		}
	}
	b.WriteByte(']')
	return b.String()
}
