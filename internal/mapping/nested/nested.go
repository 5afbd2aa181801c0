// Package nested decodes the YAML structural map describing inner-class
// relationships. The map is keyed by binary class name; each record carries
// the enclosing method of the class (when it is local or anonymous) and the
// inner-class table rows it should declare.
package nested

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Method identifies the method enclosing a local or anonymous class. Name
// and Desc are empty when the class is enclosed by a type rather than a
// method.
type Method struct {
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
	Desc  string `yaml:"desc"`
}

// Entry is one inner-class table row. Access holds raw class file access
// flags. Outer and Name are empty for anonymous classes.
type Entry struct {
	Inner  string `yaml:"inner"`
	Outer  string `yaml:"outer"`
	Name   string `yaml:"name"`
	Access uint16 `yaml:"access"`
}

// Record is the structural information recorded for one class.
type Record struct {
	EnclosingMethod *Method `yaml:"enclosingMethod"`
	InnerClasses    []Entry `yaml:"innerClasses"`
}

// Map holds the structural records keyed by binary class name.
type Map map[string]Record

// Parse decodes a structural map document.
func Parse(r io.Reader) (Map, error) {
	var m Map

	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode structural map: %w", err)
	}

	return m, nil
}

// Class returns the record for a binary class name.
func (m Map) Class(name string) (Record, bool) {
	r, ok := m[name]
	return r, ok
}

// Inner returns the record for name whose Inner column matches name itself,
// searching first the class's own record and then the records of every
// other class. Reconstruction uses it to re-emit a declaration for a
// referenced nested class.
func (m Map) Inner(name string) (Entry, bool) {
	if r, ok := m[name]; ok {
		if e, ok := r.self(name); ok {
			return e, true
		}
	}

	for _, r := range m {
		if e, ok := r.self(name); ok {
			return e, true
		}
	}

	return Entry{}, false
}

func (r Record) self(name string) (Entry, bool) {
	for _, e := range r.InnerClasses {
		if e.Inner == name {
			return e, true
		}
	}

	return Entry{}, false
}
