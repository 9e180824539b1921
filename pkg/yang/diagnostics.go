// Copyright 2015 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package yang

import "fmt"

// Error taxonomy and per-context diagnostic buffer. Diagnostics collect
// during Parse/Compile/ChangeFeature and are returned in the order they
// were recorded; unlike the plain error lists elsewhere in this package,
// each entry carries a stable Code and a schema Path alongside its
// message.

// Code identifies the abstract kind of a Diagnostic.
type Code int

const (
	// InvalidArgument means the caller passed a null or inconsistent
	// input.
	InvalidArgument Code = iota
	// OutOfMemory means an allocation-budget failure; the operation
	// unwinds. Go's garbage collector means this is never raised by
	// the runtime itself; it exists so a caller that bounds parse
	// input size (Options.MaxSourceBytes) can report the same taxonomy
	// member the spec defines.
	OutOfMemory
	// NotFound means a referenced module, feature, or identity is
	// absent.
	NotFound
	// AlreadyExists means a module revision collision, duplicate enum
	// value, or duplicate import.
	AlreadyExists
	// Syntax means a malformed if-feature, range, pattern, or regex.
	Syntax
	// Semantic means a status mismatch, narrowing violation, empty
	// enum/bits set, or a derived value that changed.
	Semantic
	// Denied means a feature cannot be enabled because of if-feature
	// conflicts.
	Denied
	// Internal means an invariant was violated; always surfaced, never
	// silently recovered.
	Internal
)

func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "invalid-argument"
	case OutOfMemory:
		return "out-of-memory"
	case NotFound:
		return "not-found"
	case AlreadyExists:
		return "already-exists"
	case Syntax:
		return "syntax"
	case Semantic:
		return "semantic"
	case Denied:
		return "denied"
	case Internal:
		return "internal"
	default:
		return fmt.Sprintf("code-%d", int(c))
	}
}

// A Diagnostic is a single validation failure, carrying the schema path
// it occurred at (e.g. "/mod:container/leaf/type/range") and a Code
// identifying the rule that failed.
type Diagnostic struct {
	Code    Code
	Path    string
	Message string
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Path == "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Path, d.Code, d.Message)
}

// newDiagnostic builds a Diagnostic, path-qualified from n when n is not
// nil.
func newDiagnostic(code Code, n Node, format string, args ...interface{}) *Diagnostic {
	path := "unknown"
	if n != nil {
		path = schemaPath(n)
	}
	return &Diagnostic{
		Code:    code,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}

// schemaPath walks n's ancestry to build a "/mod:container/leaf" style
// path for diagnostics.
func schemaPath(n Node) string {
	var parts []string
	for cur := n; cur != nil; cur = cur.ParentNode() {
		if cur.NName() == "" {
			continue
		}
		parts = append([]string{cur.NName()}, parts...)
	}
	if len(parts) == 0 {
		return Source(n)
	}
	path := "/" + parts[0]
	for i, p := range parts[1:] {
		if i == 0 {
			path += ":" + p
		} else {
			path += "/" + p
		}
	}
	return path
}

// Diagnostics is a per-context buffer of Diagnostic values accumulated
// during Parse, Compile, and ChangeFeature. The caller drains it with
// Drain; diagnostics are never discarded automatically.
type Diagnostics struct {
	items []Diagnostic
}

func (b *Diagnostics) add(d *Diagnostic) {
	if d == nil {
		return
	}
	b.items = append(b.items, *d)
}

func (b *Diagnostics) addAll(ds []*Diagnostic) {
	for _, d := range ds {
		b.add(d)
	}
}

// Drain returns all buffered diagnostics and clears the buffer.
func (b *Diagnostics) Drain() []Diagnostic {
	out := b.items
	b.items = nil
	return out
}

// Peek returns the buffered diagnostics without clearing the buffer.
func (b *Diagnostics) Peek() []Diagnostic {
	return append([]Diagnostic(nil), b.items...)
}
