package extract

// Kind tags the outcome of one extractor.
type Kind int

const (
	KindAbsent Kind = iota
	KindPresent
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindPresent:
		return "present"
	case KindMalformed:
		return "malformed"
	default:
		return "absent"
	}
}

// Result keeps "the page has no such section" apart from "the section is broken".
type Result[T any] struct {
	kind  Kind
	value T
	err   error
}

func Present[T any](v T) Result[T] {
	return Result[T]{kind: KindPresent, value: v}
}

func AbsentResult[T any]() Result[T] {
	return Result[T]{kind: KindAbsent}
}

func Malformed[T any](err error) Result[T] {
	return Result[T]{kind: KindMalformed, err: err}
}

func (r Result[T]) Kind() Kind {
	return r.kind
}

// Value returns the extracted value and whether it is present.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.kind == KindPresent
}

// Err is non-nil only for malformed results.
func (r Result[T]) Err() error {
	return r.err
}
