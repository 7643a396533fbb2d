package gdsii

import (
	"fmt"

	"github.com/wippyai/laykit/errors"
)

// Validate checks the model invariants and returns every violation found
// as a structural-violation error. It never aborts early; an empty slice
// means the library is well formed. The codec itself does not enforce
// these invariants on read.
func (l *Library) Validate() []error {
	var out []error

	defined := make(map[string]bool, len(l.Structures))
	for _, s := range l.Structures {
		if defined[s.Name] {
			out = append(out, violation(s.Name, "structure name defined more than once"))
		}
		defined[s.Name] = true
	}

	for _, s := range l.Structures {
		for i, el := range s.Elements {
			where := fmt.Sprintf("%s[%d]", s.Name, i)
			switch e := el.(type) {
			case *Boundary:
				if len(e.XY) < 4 {
					out = append(out, violation(where, "boundary has fewer than 4 vertices"))
				} else if e.XY[0] != e.XY[len(e.XY)-1] {
					out = append(out, violation(where, "boundary is not closed"))
				}
			case *Path:
				if len(e.XY) < 2 {
					out = append(out, violation(where, "path has fewer than 2 vertices"))
				}
			case *StructRef:
				if !defined[e.StructureName] {
					out = append(out, violation(where, "reference to undefined structure "+e.StructureName))
				}
			case *ArrayRef:
				if e.Columns <= 0 || e.Rows <= 0 {
					out = append(out, violation(where, fmt.Sprintf("array dimensions %dx%d are not positive", e.Columns, e.Rows)))
				}
				if !defined[e.StructureName] {
					out = append(out, violation(where, "reference to undefined structure "+e.StructureName))
				}
			}
		}
	}

	out = append(out, l.validateHierarchy(defined)...)
	return out
}

// validateHierarchy reports reference cycles by name closure. The object
// graph itself cannot cycle, since references are stored as names.
func (l *Library) validateHierarchy(defined map[string]bool) []error {
	edges := make(map[string][]string)
	for _, s := range l.Structures {
		for _, el := range s.Elements {
			switch e := el.(type) {
			case *StructRef:
				edges[s.Name] = append(edges[s.Name], e.StructureName)
			case *ArrayRef:
				edges[s.Name] = append(edges[s.Name], e.StructureName)
			}
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(edges))
	var out []error

	var walk func(name string) bool
	walk = func(name string) bool {
		switch state[name] {
		case visiting:
			return true
		case visited:
			return false
		}
		state[name] = visiting
		for _, next := range edges[name] {
			if defined[next] && walk(next) {
				state[name] = visited
				return true
			}
		}
		state[name] = visited
		return false
	}

	for _, s := range l.Structures {
		if state[s.Name] == unvisited && walk(s.Name) {
			out = append(out, violation(s.Name, "reference cycle through structure"))
		}
	}
	return out
}

func violation(where, detail string) error {
	return errors.StructuralViolation(errors.FormatGDSII, where, detail)
}
