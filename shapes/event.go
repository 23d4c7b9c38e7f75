package shapes

// Action is the kind of edit recorded in the undo log.
type Action int

const (
	ActionNone Action = iota
	ActionCreated
	ActionDeleted
	ActionMoved
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionDeleted:
		return "deleted"
	case ActionMoved:
		return "moved"
	default:
		return "none"
	}
}

// Event is an undo log entry. Geometry holds the shape as it was before a
// deletion or a move.
type Event struct {
	Action   Action
	Key      int
	Geometry Shape
}
