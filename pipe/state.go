package pipe

// State identifies one of the possible lifecycle states of a pipe.
type State int32

// Lifecycle states. A pipe starts Stopped, moves through Starting to
// Running and back through Stopping to Stopped.
const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

// Convert the state to a string.
func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return "unknown"
}
