package cache

// Segment is a named partition of a backend, clearable independently.
type Segment string

const (
	// SegmentDefault holds slots written without an explicit segment.
	SegmentDefault Segment = "default"
	// SegmentUser holds user data. Entries are written here unless a backend
	// view says otherwise.
	SegmentUser Segment = "user"
	// SegmentOpcode holds compiled artifacts.
	SegmentOpcode Segment = "opcode"
	// SegmentAll is a pseudo-segment accepted by Clear only.
	SegmentAll Segment = "all"
)

// Segments lists the concrete segments every backend knows about.
func Segments() []Segment {
	return []Segment{SegmentDefault, SegmentUser, SegmentOpcode}
}

// Valid reports whether s names a concrete segment.
func (s Segment) Valid() bool {
	switch s {
	case SegmentDefault, SegmentUser, SegmentOpcode:
		return true
	}
	return false
}

func (s Segment) String() string { return string(s) }

// checkSegment rejects slot operations on a view over an unknown segment.
func checkSegment(s Segment) error {
	if !s.Valid() {
		return ErrInvalidSegment
	}
	return nil
}

// checkClearSegment accepts the concrete segments plus SegmentAll.
func checkClearSegment(s Segment) error {
	if s == SegmentAll || s.Valid() {
		return nil
	}
	return ErrInvalidSegment
}
