// Package extract pulls the first JSON object out of free-form model output.
//
// Models routinely wrap the JSON they were asked for in prose, so the
// extractor scans for the first balanced {...} span with a running
// brace-depth counter and parses only that span. The scanner is incremental:
// it can be fed chunk by chunk while a response streams, and produces the
// same result as a one-shot scan over the full text.
package extract

import (
	"encoding/json"
	"errors"
)

var (
	// ErrIncomplete means no balanced span has appeared yet. While the
	// stream is still producing text this is not a final failure.
	ErrIncomplete = errors.New("extract: no balanced object yet")

	// ErrMalformed means a balanced span was found but is not valid JSON.
	// This is terminal: the scanner does not retry a different span.
	ErrMalformed = errors.New("extract: balanced span is not valid JSON")

	// ErrNotFound means the stream ended without a balanced span appearing.
	ErrNotFound = errors.New("extract: no object found in input")
)

// Scanner locates the first balanced JSON object in a stream of text.
// The zero value is not usable; create one with NewScanner.
type Scanner struct {
	span     []byte
	depth    int
	started  bool
	inString bool
	escaped  bool
	done     bool
	result   json.RawMessage
	failure  error
}

func NewScanner() *Scanner {
	return &Scanner{}
}

// Write feeds the next chunk of text to the scanner. It returns the parsed
// object as soon as the first balanced span closes and parses, ErrIncomplete
// while more input could still complete a span, or ErrMalformed once the
// balanced span turned out to be invalid JSON. After a non-Incomplete outcome
// the scanner is terminal and further writes return the same outcome.
func (s *Scanner) Write(chunk string) (json.RawMessage, error) {
	if s.done {
		return s.result, s.failure
	}

	for i := 0; i < len(chunk); i++ {
		c := chunk[i]

		if !s.started {
			if c == '{' {
				s.started = true
				s.depth = 1
				s.span = append(s.span, c)
			}
			continue
		}

		s.span = append(s.span, c)

		// Braces inside JSON string values must not move the depth
		// counter, so string and escape state is tracked explicitly.
		if s.inString {
			switch {
			case s.escaped:
				s.escaped = false
			case c == '\\':
				s.escaped = true
			case c == '"':
				s.inString = false
			}
			continue
		}

		switch c {
		case '"':
			s.inString = true
		case '{':
			s.depth++
		case '}':
			s.depth--
			if s.depth == 0 {
				return s.finish()
			}
		}
	}

	return nil, ErrIncomplete
}

// finish evaluates the completed span exactly once.
func (s *Scanner) finish() (json.RawMessage, error) {
	s.done = true
	if !json.Valid(s.span) {
		s.failure = ErrMalformed
		return nil, s.failure
	}
	s.result = json.RawMessage(append([]byte(nil), s.span...))
	return s.result, nil
}

// Close signals end of input. It returns the result if a span already parsed,
// ErrMalformed if a balanced span was found but invalid, or ErrNotFound if
// the input ended without the braces ever balancing.
func (s *Scanner) Close() (json.RawMessage, error) {
	if s.done {
		return s.result, s.failure
	}
	s.done = true
	s.failure = ErrNotFound
	return nil, s.failure
}

// Extract runs the scanner over a fully buffered string.
func Extract(text string) (json.RawMessage, error) {
	s := NewScanner()
	if raw, err := s.Write(text); !errors.Is(err, ErrIncomplete) {
		return raw, err
	}
	return s.Close()
}
