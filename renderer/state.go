package renderer

// State is where a TriangleRenderer is in its one-way setup sequence
type State int

const (
	Uninitialized State = iota
	ContextAcquired
	ShadersCompiled
	ProgramLinked
	BufferUploaded
	Drawn
	// Failed and Closed are terminal
	Failed
	Closed
)

func (s State) String() string {
	if s < Uninitialized || s > Closed {
		return "Unknown"
	}
	return [...]string{
		"Uninitialized",
		"ContextAcquired",
		"ShadersCompiled",
		"ProgramLinked",
		"BufferUploaded",
		"Drawn",
		"Failed",
		"Closed",
	}[s]
}
