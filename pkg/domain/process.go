package domain

// DefaultTimestep is the interval used by processes that do not declare one.
const DefaultTimestep = 1.0

// Schema describes the ports of a process: port name -> target name -> leaf
// schema fragment (the same shape a Store configuration expects). A target
// named "*" declares a subschema applied to every child of the port's node.
type Schema map[string]map[string]any

// State is the view of the tree handed to a process: port name -> values.
type State map[string]map[string]any

// Update is a nested map mirroring the tree shape. Top level keys are port
// names when returned by a process and tree names once routed.
type Update map[string]any

// Process is a computational unit run by the Experiment. NextUpdate must not
// mutate states; everything it wants to change goes in the returned Update.
type Process interface {
	// PortsSchema declares the ports the process reads and writes.
	PortsSchema() Schema
	// NextUpdate computes the update for an interval of simulated time.
	NextUpdate(interval float64, states State) (Update, error)
	// LocalTimestep is the natural update interval of the process.
	LocalTimestep() float64
	// IsDeriver marks processes that run after every batch with a zero interval.
	IsDeriver() bool
	// Derivers declares auxiliary deriver processes to instantiate alongside.
	Derivers() map[string]DeriverSpec
}

// DeriverSpec declares a deriver required by a process. Deriver is either a
// Process instance or the name of a factory in the process registry.
// PortMapping maps deriver port -> port of the declaring process.
type DeriverSpec struct {
	Deriver     any
	Config      map[string]any
	PortMapping map[string]string
}

// Puller is implemented by processes that expose data for introspection
// and emission in place of the process handle itself.
type Puller interface {
	PullData() any
}

// Parameterized is implemented by processes that can report their
// parameters for the configuration dump.
type Parameterized interface {
	Parameters() map[string]any
}

// Base provides the optional parts of Process. Embed it and implement
// PortsSchema and NextUpdate.
type Base struct {
	Timestep float64
	Params   map[string]any
}

// LocalTimestep returns Timestep, or DefaultTimestep when unset.
func (b Base) LocalTimestep() float64 {
	if b.Timestep == 0 {
		return DefaultTimestep
	}
	return b.Timestep
}

// IsDeriver is false for ordinary processes.
func (b Base) IsDeriver() bool { return false }

// Derivers declares no derivers.
func (b Base) Derivers() map[string]DeriverSpec { return nil }

// Parameters returns the parameters the process was built with.
func (b Base) Parameters() map[string]any { return b.Params }

// DeriverBase is Base for derivers.
type DeriverBase struct {
	Base
}

// IsDeriver is true.
func (DeriverBase) IsDeriver() bool { return true }
