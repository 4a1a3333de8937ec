package event

// Side identifies a binary outcome side
type Side int32

const (
	SideUnknown Side = iota
	SideYes
	SideNo
)

func (s Side) String() string {
	switch s {
	case SideYes:
		return "YES"
	case SideNo:
		return "NO"
	default:
		return "Unknown"
	}
}

// Opposite returns the other outcome side
func (s Side) Opposite() Side {
	switch s {
	case SideYes:
		return SideNo
	case SideNo:
		return SideYes
	default:
		return SideUnknown
	}
}

// Valid reports whether the side is YES or NO
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}
