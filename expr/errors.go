package expr

import "fmt"

// MalformedInputError reports an input table that could not be parsed:
// inconsistent row arity, missing required columns, or unparseable values.
type MalformedInputError struct {
	Path string
	Line int
	Msg  string
}

func (e *MalformedInputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed input (line %d): %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("malformed input %s (line %d): %s", e.Path, e.Line, e.Msg)
}

// UnmappedTranscriptError is returned by Aggregate under UnmappedStrict when a
// quantified transcript has no entry in the transcript-gene map.
type UnmappedTranscriptError struct {
	TranscriptID string
}

func (e *UnmappedTranscriptError) Error() string {
	return fmt.Sprintf("transcript %s not present in transcript-gene map", e.TranscriptID)
}

// OrderMismatchError reports a violated row-order invariant during identifier
// reconciliation. It is always fatal: a silent reorder would corrupt every
// downstream row label.
type OrderMismatchError struct {
	Index int
	Want  string
	Got   string
}

func (e *OrderMismatchError) Error() string {
	return fmt.Sprintf("gene identifier order mismatch at index %d: want %s, got %s", e.Index, e.Want, e.Got)
}

// ShapeMismatchError reports vectors or matrices whose dimensions do not agree.
type ShapeMismatchError struct {
	Label string
	Want  int
	Got   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch for %s: want length %d, got %d", e.Label, e.Want, e.Got)
}
