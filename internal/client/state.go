package client

// State is the connection state.  Transitions:
//
//	Disconnected → Connecting → Connected | Disconnected
//	Connected    → Disconnected (I/O error, peer close, explicit close)
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "unknown"
}
