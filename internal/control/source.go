package control

import "fmt"

type SourceKind int

const (
	SourceLive SourceKind = iota
	SourceDebugOverride
)

// CommandSource decides which value an actuator acts on for a tick: the
// live command from upstream, or a fixed override used while debugging.
type CommandSource struct {
	Kind  SourceKind
	Value float64
}

func Live() CommandSource { return CommandSource{Kind: SourceLive} }

func DebugOverride(v float64) CommandSource {
	return CommandSource{Kind: SourceDebugOverride, Value: v}
}

// Resolve returns the command to use this tick.
func (s CommandSource) Resolve(live float64) float64 {
	if s.Kind == SourceDebugOverride {
		return s.Value
	}
	return live
}

func (s CommandSource) String() string {
	if s.Kind == SourceDebugOverride {
		return fmt.Sprintf("override(%g)", s.Value)
	}
	return "live"
}
