package detection

import "fmt"

// StaffLines is the number of lines in a musical staff.
const StaffLines = 5

// Candidate is a group of five line segments tested for staff regularity,
// ordered top to bottom.
//
// The fixed array length makes the five-line precondition part of the type.
// Use NewCandidate to build one from a slice of unknown length.
type Candidate [StaffLines]Segment

// NewCandidate copies exactly five segments into a Candidate.
//
// Returns an error wrapping ErrCandidateSize when len(segments) != 5, and
// the error from Candidate.Validate when the segments are not ordered.
func NewCandidate(segments []Segment) (Candidate, error) {
	var c Candidate
	if len(segments) != StaffLines {
		return c, fmt.Errorf("%w: got %d", ErrCandidateSize, len(segments))
	}
	copy(c[:], segments)
	if err := c.Validate(); err != nil {
		return Candidate{}, err
	}
	return c, nil
}

// Validate checks that the segments have non-negative geometry and are
// ordered top to bottom without overlapping.
func (c Candidate) Validate() error {
	for i, s := range c {
		if s.Start < 0 || s.Thickness < 0 {
			return fmt.Errorf("%w: segment %d has start %d, thickness %d", ErrInvalidSegment, i, s.Start, s.Thickness)
		}
		if i > 0 && s.Start < c[i-1].End() {
			return fmt.Errorf("%w: segment %d starts at row %d before segment %d ends at row %d",
				ErrCandidateOrder, i, s.Start, i-1, c[i-1].End())
		}
	}
	return nil
}

// IsRegular reports whether the candidate has uniform line thickness and
// spacing. See IsRegularStaff.
func (c Candidate) IsRegular() bool {
	return Measure(c).Regular()
}

// Top returns the first row of the candidate's top line.
func (c Candidate) Top() int {
	return c[0].Start
}

// Bottom returns the row just below the candidate's bottom line.
func (c Candidate) Bottom() int {
	return c[StaffLines-1].End()
}

// Measurements summarizes the geometry sampled from a candidate.
type Measurements struct {
	MinLineThickness int `json:"min_line_thickness" yaml:"min_line_thickness"`
	MaxLineThickness int `json:"max_line_thickness" yaml:"max_line_thickness"`
	MinSpacing       int `json:"min_spacing" yaml:"min_spacing"`
	MaxSpacing       int `json:"max_spacing" yaml:"max_spacing"`

	// Deviation is the tolerance allowed for both spreads. It equals
	// MinLineThickness, so thicker staves get a looser tolerance.
	Deviation int `json:"deviation" yaml:"deviation"`
}

// LineSpread returns MaxLineThickness - MinLineThickness.
func (m Measurements) LineSpread() int {
	return m.MaxLineThickness - m.MinLineThickness
}

// SpacingSpread returns MaxSpacing - MinSpacing.
func (m Measurements) SpacingSpread() int {
	return m.MaxSpacing - m.MinSpacing
}

// Regular reports whether both spreads are within Deviation.
func (m Measurements) Regular() bool {
	return m.LineSpread() <= m.Deviation && m.SpacingSpread() <= m.Deviation
}

// span tracks the running minimum and maximum of observed values.
type span struct {
	min, max int
	seen     bool
}

func (s *span) observe(v int) {
	if !s.seen {
		s.min, s.max, s.seen = v, v, true
		return
	}
	if v < s.min {
		s.min = v
	}
	if v > s.max {
		s.max = v
	}
}

// Measure samples line thickness and spacing over the four adjacent pairs of
// the candidate.
//
// For each pair the line thickness is taken from the upper segment only, so
// the thickness of the fifth line never contributes. Spacing is the number of
// rows between the end of the upper segment and the start of the lower one.
func Measure(c Candidate) Measurements {
	var lines, spaces span
	for i := 0; i < StaffLines-1; i++ {
		upper, lower := c[i], c[i+1]
		lines.observe(upper.Thickness)
		spaces.observe(lower.Start - upper.End())
	}

	return Measurements{
		MinLineThickness: lines.min,
		MaxLineThickness: lines.max,
		MinSpacing:       spaces.min,
		MaxSpacing:       spaces.max,
		Deviation:        lines.min,
	}
}

// IsRegularStaff reports whether five segments form a geometrically regular
// staff: the spread of line thickness and the spread of spacing are each at
// most the thinnest sampled line thickness. Equality passes.
//
// The candidate should satisfy Candidate.Validate; NewCandidate guarantees it.
func IsRegularStaff(c Candidate) bool {
	return c.IsRegular()
}

// SlidingCandidates returns every window of five consecutive segments, in
// order. Fewer than five segments yield no candidates.
func SlidingCandidates(segments []Segment) []Candidate {
	if len(segments) < StaffLines {
		return []Candidate{}
	}

	candidates := make([]Candidate, 0, len(segments)-StaffLines+1)
	for i := 0; i+StaffLines <= len(segments); i++ {
		var c Candidate
		copy(c[:], segments[i:i+StaffLines])
		candidates = append(candidates, c)
	}
	return candidates
}

// Staff is a candidate that passed the regularity test.
type Staff struct {
	// FirstLine is the index of the staff's top line in the segment list it
	// was found in.
	FirstLine int `json:"first_line" yaml:"first_line"`

	// Lines are the five line segments, top to bottom.
	Lines Candidate `json:"lines" yaml:"lines"`

	// Top is the first row of the top line; Bottom is the row just below
	// the bottom line.
	Top    int `json:"top" yaml:"top"`
	Bottom int `json:"bottom" yaml:"bottom"`

	Measurements Measurements `json:"measurements" yaml:"measurements"`
}

// FindStaves slides a five-segment window over ordered segments and collects
// the regular ones.
//
// When a window validates, the search resumes after its fifth line so that
// no segment belongs to two staves. Staves are returned top to bottom and are
// never merged into systems.
func FindStaves(segments []Segment) []Staff {
	staves := make([]Staff, 0)

	for i := 0; i+StaffLines <= len(segments); {
		var c Candidate
		copy(c[:], segments[i:i+StaffLines])

		m := Measure(c)
		if !m.Regular() {
			i++
			continue
		}

		staves = append(staves, Staff{
			FirstLine:    i,
			Lines:        c,
			Top:          c.Top(),
			Bottom:       c.Bottom(),
			Measurements: m,
		})
		i += StaffLines
	}

	return staves
}
