package daggerok

import "fmt"

// State is the lifecycle state of a [Context].
//
//	Unconfigured -> Configured -> Resolving -> Ready
//	                                       \-> Failed
type State uint8

const (
	// Unconfigured is the state of a new Context without search scopes or configuration.
	Unconfigured State = iota
	// Configured is the state after the first configuration call.
	Configured
	// Resolving is the state while [Context.Initialize] runs.
	Resolving
	// Ready is the state after [Context.Initialize] succeeded.
	Ready
	// Failed is the state after [Context.Initialize] returned an error.
	Failed
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "Unconfigured"
	case Configured:
		return "Configured"
	case Resolving:
		return "Resolving"
	case Ready:
		return "Ready"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown State %d", s)
	}
}

// frozen returns true once resolution has begun.
func (s State) frozen() bool {
	return s >= Resolving
}
