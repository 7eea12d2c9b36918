package model

// LensPosition is a 0-based editor position.
type LensPosition struct {
	Line      int
	Character int
}

// Range is a display range in an editor document.
type Range struct {
	Start LensPosition
	End   LensPosition
}

// Command is the action attached to a CodeLens.
type Command struct {
	Title     string
	Command   string
	Arguments []any
}

// CodeLens is one display annotation: a range and the command shown above it.
type CodeLens struct {
	Range   Range
	Command *Command
	Data    any
}
