package score

import "fmt"

// Priority orders appraisers. Larger values are more significant.
// Distinct appraisers may share a priority.
type Priority = int

// Category is the coarse part of a Verdict.
type Category int8

const (
	// WantToRemove asks for the candidate to be dropped.
	WantToRemove Category = iota - 1
	// Ignore expresses no opinion. It is the zero value.
	Ignore
	// NiceToHave is a soft preference.
	NiceToHave
	// MustHave is a hard requirement.
	MustHave
)

func (c Category) String() string {
	switch c {
	case WantToRemove:
		return "want-to-remove"
	case Ignore:
		return "ignore"
	case NiceToHave:
		return "nice-to-have"
	case MustHave:
		return "must-have"
	default:
		return fmt.Sprintf("category(%d)", int8(c))
	}
}

// Verdict is one appraiser's judgment of one candidate.
// The zero value is Ignore with minor rank 0.
type Verdict struct {
	Category Category `json:"category"`
	Minor    int      `json:"minor"`
}

// Remove returns a WantToRemove verdict.
func Remove(minor int) Verdict { return Verdict{Category: WantToRemove, Minor: minor} }

// Nice returns a NiceToHave verdict.
func Nice(minor int) Verdict { return Verdict{Category: NiceToHave, Minor: minor} }

// Must returns a MustHave verdict.
func Must(minor int) Verdict { return Verdict{Category: MustHave, Minor: minor} }

func (v Verdict) String() string {
	if v.Minor == 0 {
		return v.Category.String()
	}
	return fmt.Sprintf("%s(%d)", v.Category, v.Minor)
}

// Row indices of a VerdictVector and of a CompositeScore column.
const (
	RowMust = iota
	RowNice
	RowMinor

	// Rows is the number of rows of a CompositeScore.
	Rows
)

// VerdictVector is the integer projection of a Verdict:
// [must flag in {-1,0,1}, nice flag in {0,1}, minor rank].
type VerdictVector [Rows]int

// Vector projects v. Ignore verdicts project to all zeros.
func (v Verdict) Vector() VerdictVector {
	var out VerdictVector
	switch v.Category {
	case MustHave:
		out[RowMust] = 1
	case WantToRemove:
		out[RowMust] = -1
	case NiceToHave:
		out[RowNice] = 1
	case Ignore:
		return out
	}
	out[RowMinor] = v.Minor
	return out
}

// ParseCategory maps the String form of a Category back to it.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "want-to-remove", "remove":
		return WantToRemove, nil
	case "ignore", "":
		return Ignore, nil
	case "nice-to-have", "nice":
		return NiceToHave, nil
	case "must-have", "must":
		return MustHave, nil
	default:
		return Ignore, fmt.Errorf("unknown verdict category %q", s)
	}
}
