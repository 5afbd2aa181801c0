package model

import "strings"

// Path represents a slash-separated path relative to a source or target root.
type Path string

// IsClass reports whether the path points at a compiled JVM class file.
func (p Path) IsClass() bool {
	return strings.HasSuffix(string(p), ".class")
}

// Voter decides whether a relative path participates in a processing step.
type Voter func(path Path) bool

// AcceptAll is the default voter; it admits every path.
func AcceptAll(Path) bool { return true }

// RejectAll admits no path.
func RejectAll(Path) bool { return false }
