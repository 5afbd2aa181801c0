package classfile

import "strings"

// ParameterCount returns the number of declared parameters of a method
// descriptor. Malformed descriptors yield the count of types successfully
// parsed before the malformation.
func ParameterCount(desc string) int {
	count := 0

	i := strings.IndexByte(desc, '(')
	if i < 0 {
		return 0
	}

	for i++; i < len(desc) && desc[i] != ')'; count++ {
		i = skipType(desc, i)
		if i < 0 {
			break
		}
	}

	return count
}

// skipType returns the index just past the type descriptor starting at i,
// or -1 when the descriptor is malformed.
func skipType(desc string, i int) int {
	for i < len(desc) && desc[i] == '[' {
		i++
	}

	if i >= len(desc) {
		return -1
	}

	if desc[i] == 'L' {
		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			return -1
		}

		return i + end + 1
	}

	return i + 1
}

// ReferencedTypes returns the binary names of all object types appearing in
// a field or method descriptor, array element types included.
func ReferencedTypes(desc string) []string {
	var names []string

	for i := 0; i < len(desc); i++ {
		if desc[i] != 'L' {
			continue
		}

		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			break
		}

		names = append(names, desc[i+1:i+end])
		i += end
	}

	return names
}

// MapDescriptor rewrites every object type in a field or method descriptor
// through the given class name mapper.
func MapDescriptor(desc string, mapClass func(string) string) string {
	var b strings.Builder

	for i := 0; i < len(desc); i++ {
		if desc[i] != 'L' {
			b.WriteByte(desc[i])
			continue
		}

		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			b.WriteString(desc[i:])
			break
		}

		b.WriteByte('L')
		b.WriteString(mapClass(desc[i+1 : i+end]))
		b.WriteByte(';')
		i += end
	}

	return b.String()
}

// MapTypeName rewrites a CONSTANT_Class name, which is either a plain binary
// name or an array descriptor.
func MapTypeName(name string, mapClass func(string) string) string {
	if strings.HasPrefix(name, "[") {
		return MapDescriptor(name, mapClass)
	}

	return mapClass(name)
}

// SplitNested splits a nested binary name at its last nested-class
// separator. ok is false for top-level names.
func SplitNested(name string) (outer, simple string, ok bool) {
	i := strings.LastIndexByte(name, NestedSeparator)
	if i < 0 {
		return "", name, false
	}

	return name[:i], name[i+1:], true
}

// IsNested reports whether a binary name contains a nested-class separator.
func IsNested(name string) bool {
	return strings.IndexByte(name, NestedSeparator) >= 0
}

// signature rewriting below follows the generic signature grammar of the
// class file format: class, method and field signatures share the reference
// type production, and only class type signatures carry names that need
// remapping. Type variables pass through untouched.

type sigScanner struct {
	sig      string
	pos      int
	out      strings.Builder
	mapClass func(string) string
}

// MapSignature rewrites every class name inside a generic signature. A
// signature the scanner cannot make sense of is returned unchanged rather
// than corrupted.
func MapSignature(sig string, mapClass func(string) string) string {
	s := &sigScanner{sig: sig, mapClass: mapClass}

	if !s.scan() {
		return sig
	}

	return s.out.String()
}

func (s *sigScanner) scan() bool {
	// Optional formal type parameters: <T:...;U:...>
	if s.peek() == '<' {
		if !s.formals() {
			return false
		}
	}

	// Method signature: (args)ret throws*
	if s.peek() == '(' {
		s.take()

		for s.peek() != ')' {
			if !s.typeSig() {
				return false
			}
		}

		s.take()

		if !s.typeSig() { // return type (V is a base type here)
			return false
		}

		for s.peek() == '^' {
			s.take()

			if !s.typeSig() {
				return false
			}
		}

		return s.pos == len(s.sig)
	}

	// Class signature: super class type plus interfaces; field signature:
	// a single reference type. Both reduce to one or more type signatures.
	for s.pos < len(s.sig) {
		if !s.typeSig() {
			return false
		}
	}

	return true
}

func (s *sigScanner) formals() bool {
	s.take() // '<'

	for s.peek() != '>' {
		// identifier up to ':'
		colon := strings.IndexByte(s.sig[s.pos:], ':')
		if colon < 0 {
			return false
		}

		s.out.WriteString(s.sig[s.pos : s.pos+colon+1])
		s.pos += colon + 1

		// class bound (may be absent) plus interface bounds
		if s.peek() != ':' && s.peek() != '>' {
			if !s.typeSig() {
				return false
			}
		}

		for s.peek() == ':' {
			s.take()

			if !s.typeSig() {
				return false
			}
		}
	}

	s.take() // '>'

	return true
}

func (s *sigScanner) typeSig() bool {
	switch s.peek() {
	case 0:
		return false
	case '[':
		s.take()
		return s.typeSig()
	case 'T':
		end := strings.IndexByte(s.sig[s.pos:], ';')
		if end < 0 {
			return false
		}

		s.out.WriteString(s.sig[s.pos : s.pos+end+1])
		s.pos += end + 1

		return true
	case 'L':
		return s.classType()
	default:
		// base type
		s.take()
		return true
	}
}

func (s *sigScanner) classType() bool {
	s.take() // 'L'

	// The outermost name runs to the first of '<', ';' or '.'.
	end := strings.IndexAny(s.sig[s.pos:], "<;.")
	if end < 0 {
		return false
	}

	s.out.WriteString(s.mapClass(s.sig[s.pos : s.pos+end]))
	s.pos += end

	if !s.typeArgsAndSuffixes() {
		return false
	}

	if s.peek() != ';' {
		return false
	}

	s.take()

	return true
}

func (s *sigScanner) typeArgsAndSuffixes() bool {
	if s.peek() == '<' {
		if !s.typeArgs() {
			return false
		}
	}

	// Inner class suffixes keep their simple names verbatim; the remapped
	// outer name already carries any renaming.
	for s.peek() == '.' {
		s.take()

		end := strings.IndexAny(s.sig[s.pos:], "<;.")
		if end < 0 {
			return false
		}

		s.out.WriteString(s.sig[s.pos : s.pos+end])
		s.pos += end

		if s.peek() == '<' {
			if !s.typeArgs() {
				return false
			}
		}
	}

	return true
}

func (s *sigScanner) typeArgs() bool {
	s.take() // '<'

	for s.peek() != '>' {
		switch s.peek() {
		case 0:
			return false
		case '*':
			s.take()
		case '+', '-':
			s.take()

			if !s.typeSig() {
				return false
			}
		default:
			if !s.typeSig() {
				return false
			}
		}
	}

	s.take() // '>'

	return true
}

func (s *sigScanner) peek() byte {
	if s.pos >= len(s.sig) {
		return 0
	}

	return s.sig[s.pos]
}

func (s *sigScanner) take() {
	s.out.WriteByte(s.sig[s.pos])
	s.pos++
}
