package gdsii

import (
	"io"

	"github.com/wippyai/laykit/errors"
	"github.com/wippyai/laykit/gdsii/internal/binary"
)

// StreamReader parses a GDSII stream one structure at a time, holding at
// most one structure in memory. It is forward-only: no seeking and no
// random access. Library-level metadata is parsed eagerly on creation.
type StreamReader struct {
	r       *binary.Reader
	lib     Library
	pending *Structure
	done    bool
}

// NewStreamReader reads the library header (HEADER, BGNLIB, LIBNAME,
// UNITS and any optional library records) and stops before the first
// structure.
func NewStreamReader(r io.Reader) (*StreamReader, error) {
	s := &StreamReader{r: binary.NewReader(r)}

	rec, err := s.r.Next()
	if err == io.EOF {
		return nil, errors.UnexpectedEOF(errors.FormatGDSII, "HEADER", 0)
	}
	if err != nil {
		return nil, err
	}
	if rec.Type != RecHeader {
		return nil, errors.UnexpectedRecord(errors.FormatGDSII, RecordName(rec.Type), rec.Offset, "header")
	}
	if s.lib.Version, err = rec.Int16(); err != nil {
		return nil, err
	}

	// Consume library-level records up to the first BGNSTR or ENDLIB.
	d := &decoder{lib: &s.lib, state: stateLibrary}
	for {
		rec, err := s.r.Next()
		if err == io.EOF {
			return nil, errors.UnexpectedEOF(errors.FormatGDSII, "ENDLIB", s.r.Position())
		}
		if err != nil {
			return nil, err
		}
		switch rec.Type {
		case RecBgnStr:
			// Hand the timestamps to Next's first structure.
			created, modified, err := parseTimes(rec)
			if err != nil {
				return nil, err
			}
			s.pending = &Structure{Created: created, Modified: modified}
			return s, nil
		case RecEndLib:
			s.done = true
			return s, nil
		default:
			if err := d.libraryRecord(rec); err != nil {
				return nil, err
			}
		}
	}
}

// Library returns the file-level metadata: name, version, units and the
// optional library records. Its Structures slice is always empty.
func (s *StreamReader) Library() *Library {
	return &s.lib
}

// Next returns the next fully parsed structure, or io.EOF after ENDLIB.
func (s *StreamReader) Next() (*Structure, error) {
	if s.done {
		return nil, io.EOF
	}

	var str *Structure
	if s.pending != nil {
		str = s.pending
		s.pending = nil
	} else {
		for str == nil {
			rec, err := s.r.Next()
			if err == io.EOF {
				return nil, errors.UnexpectedEOF(errors.FormatGDSII, "ENDLIB", s.r.Position())
			}
			if err != nil {
				return nil, err
			}
			switch rec.Type {
			case RecBgnStr:
				created, modified, err := parseTimes(rec)
				if err != nil {
					return nil, err
				}
				str = &Structure{Created: created, Modified: modified}
			case RecEndLib:
				s.done = true
				return nil, io.EOF
			default:
				// Skip library-level records between structures.
				debugf("stream: skipping record %s between structures", RecordName(rec.Type))
			}
		}
	}

	// Reuse the in-memory decoder for the structure body.
	d := &decoder{r: s.r, lib: &Library{}, state: stateStructure, str: str}
	for d.state != stateLibrary {
		rec, err := s.r.Next()
		if err == io.EOF {
			return nil, errors.UnexpectedEOF(errors.FormatGDSII, "ENDSTR", s.r.Position())
		}
		if err != nil {
			return nil, err
		}
		if err := d.record(rec); err != nil {
			return nil, err
		}
	}
	return d.lib.Structures[0], nil
}

// Each walks the remaining structures, invoking fn for each. Iteration
// stops at the first error from the stream or the callback.
func (s *StreamReader) Each(fn func(*Structure) error) error {
	for {
		str, err := s.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(str); err != nil {
			return err
		}
	}
}
