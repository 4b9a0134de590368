package typing

// Phase is the current stage of the typing/deleting cycle.
type Phase int

const (
	Typing Phase = iota
	Pausing
	SelectingForDelete
	Deleting
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Typing:
		return "typing"
	case Pausing:
		return "pausing"
	case SelectingForDelete:
		return "selecting"
	case Deleting:
		return "deleting"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// State is a snapshot of the animation. Transitions replace it as a whole;
// Text always equals the first CharIndex characters of the current string.
type State struct {
	StringIndex int
	CharIndex   int
	Phase       Phase
	Running     bool
	Text        string
}

// Initial is the state before the first play and after a reset.
func Initial() State {
	return State{Phase: Typing}
}

// IsTextSelected is true only while the whole string is shown selected before a fast delete.
func (s State) IsTextSelected() bool { return s.Phase == SelectingForDelete }

func (s State) Stopped() bool { return s.Phase == Stopped }
