package combo

// State is the record threaded through every parsing step.
//
// A State is either a success (IsError false, Result meaningful) or a
// failure (IsError true, Error meaningful). Result is stale on a failure and
// must not be trusted. States are values: every transition builds a new one
// that shares the same Source.
type State[S Source] struct {
	// Source is the input being parsed. It is never modified.
	Source S
	// Index is the cursor: a byte offset for text, a bit offset for binary.
	Index int
	// Result is the payload of the most recent success.
	Result any
	// IsError tags the state as a failure.
	IsError bool
	// Error is the payload of the most recent failure, nil on success.
	Error any
}

// Source is the set of inputs a parser can consume.
type Source interface {
	~string | ~[]byte
}

// Initial returns the state a parse starts from.
func Initial[S Source](source S) State[S] {
	return State[S]{Source: source}
}

// Ok returns a success derived from s carrying result at index.
func Ok[S Source](s State[S], result any, index int) State[S] {
	return State[S]{Source: s.Source, Index: index, Result: result}
}

// Fail returns a failure derived from s carrying payload. The index and the
// stale result of s are kept.
func Fail[S Source](s State[S], payload any) State[S] {
	return State[S]{Source: s.Source, Index: s.Index, Result: s.Result, IsError: true, Error: payload}
}

// Err converts a failed state into a *ParseError. It returns nil on success.
func (s State[S]) Err() error {
	if !s.IsError {
		return nil
	}
	return &ParseError{Index: s.Index, Payload: s.Error}
}
