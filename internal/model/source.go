// Package model defines the data structures shared by the probe layers.
package model

// Path represents a file system path.
type Path string

// TestFileMarker identifies Solidity test files by name.
const TestFileMarker = ".t.sol"

// File represents a Solidity source file on disk.
type File struct {
	ShortPath Path
	FullPath  Path
	Hash      string
}

// Document is one editor document as supplied by the host.
type Document struct {
	URI      string
	Filename string
	Text     string
	Version  int32
}

// SourceMapEntry is one decoded instruction of a solc source map.
type SourceMapEntry struct {
	Index         int       `json:"index" yaml:"index"`
	Offset        int       `json:"offset" yaml:"offset"`
	Length        int       `json:"length" yaml:"length"`
	File          int       `json:"file" yaml:"file"`
	Jump          string    `json:"jump" yaml:"jump"`
	ModifierDepth int       `json:"modifierDepth" yaml:"modifierDepth"`
	Position      *Position `json:"position,omitempty" yaml:"position,omitempty"`
}
