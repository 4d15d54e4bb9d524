// Package namegroup defines the disjoint namespaces that symbol lookup is
// partitioned by: two declarations in different groups may share a name
// without colliding.
package namegroup

// NameGroup identifies one of the disjoint namespaces a Scope tracks.
// Grounded on fpp_analysis's semantics::NameGroup enum.
type NameGroup int

const (
	Component NameGroup = iota
	Port
	StateMachine
	PortInterfaceInstance
	PortInterface
	Template
	Type
	Value
)

// All lists every group, in declaration order, for iteration when building
// a fresh Scope.
var All = []NameGroup{
	Component, Port, StateMachine, PortInterfaceInstance, PortInterface,
	Template, Type, Value,
}

// String renders the group the way diagnostics refer to it.
func (g NameGroup) String() string {
	switch g {
	case Component:
		return "component"
	case Port:
		return "port"
	case StateMachine:
		return "state machine"
	case PortInterfaceInstance:
		return "port interface instance"
	case PortInterface:
		return "port interface"
	case Template:
		return "template"
	case Type:
		return "type"
	case Value:
		return "constant"
	default:
		return "unknown"
	}
}
