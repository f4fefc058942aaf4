package iconic

// State is a stage of the export pipeline.
type State int

const (
	Idle State = iota
	Loading
	Rendering
	Assembling
	Downloading
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Rendering:
		return "rendering"
	case Assembling:
		return "assembling"
	case Downloading:
		return "downloading"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// next lists the allowed transitions. Failed is reachable from every working state
// and always leads back to Idle.
var next = map[State][]State{
	Idle:        {Loading},
	Loading:     {Rendering, Failed},
	Rendering:   {Assembling, Failed},
	Assembling:  {Downloading, Failed},
	Downloading: {Idle, Failed},
	Failed:      {Idle},
}

func (s State) canMoveTo(to State) bool {
	for _, n := range next[s] {
		if n == to {
			return true
		}
	}
	return false
}
