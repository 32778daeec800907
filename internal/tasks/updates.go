package tasks

// ProgressUpdate represents a state transition of a [Session].
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	State   State  // State entered
	Message string // Human-readable message for display
}

// State is a step of the session lifecycle.
type State int

const (
	Idle State = iota
	Authenticating
	Fetching
	Generating
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Authenticating:
		return "authenticating"
	case Fetching:
		return "fetching"
	case Generating:
		return "generating"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Busy reports whether a network step is running.
func (s State) Busy() bool {
	return s == Authenticating || s == Fetching || s == Generating
}

// Status lines shown while a roast is running.
const (
	FetchingMessage   = "JUDGING YOUR LIFE CHOICES..."
	GeneratingMessage = "TRANSLATING 'TRASH' TO ENGLISH..."
)

func authenticatingUpdate() ProgressUpdate {
	return ProgressUpdate{State: Authenticating, Message: "Waiting for Spotify authorization..."}
}

func fetchingUpdate() ProgressUpdate {
	return ProgressUpdate{State: Fetching, Message: FetchingMessage}
}

func generatingUpdate() ProgressUpdate {
	return ProgressUpdate{State: Generating, Message: GeneratingMessage}
}

func doneUpdate(title string) ProgressUpdate {
	return ProgressUpdate{State: Done, Message: title}
}

func failedUpdate(err error) ProgressUpdate {
	return ProgressUpdate{State: Failed, Message: UserMessage(err)}
}

func idleUpdate(msg string) ProgressUpdate {
	return ProgressUpdate{State: Idle, Message: msg}
}
