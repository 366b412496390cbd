package try

// something have method `Fatal`.
//
// For example in standard libraries: *testing.T, log.Logger
type Fataler interface {
	Fatal(...any)
}

type helper interface {
	Helper()
}

// Wrapper of a pair of (T, error).
//
// When error is nil, such Either is "ok", and T value is handled as valid.
// Otherwise, it is "no good", and T value is not valid.
type Either[T any] interface {

	// get value & error pair.
	//
	// If the Either has value, return (value, nil).
	// Otherwise, return (zero-value, error).
	Get() (T, error)

	// When Either is "ok", it just returns the T value.
	//
	// Otherwise, it calls ftl.Fatal(err).
	// If ftl has "Helper()" method (like *testing.T), that is called before Fatal.
	OrFatal(ftl Fataler) T

	OrDefault(T) T
}

type tryOk[T any] struct {
	val T
}

func (t tryOk[T]) Get() (T, error) {
	return t.val, nil
}

func (t tryOk[T]) OrFatal(Fataler) T {
	return t.val
}

func (t tryOk[T]) OrDefault(T) T {
	return t.val
}

type tryNg[T any] struct {
	err error
}

func (t tryNg[T]) Get() (T, error) {
	return *new(T), t.err
}

func (t tryNg[T]) OrFatal(ftl Fataler) T {
	if h, ok := ftl.(helper); ok {
		h.Helper()
	}
	ftl.Fatal(t.err)
	return *new(T) // not reached for testing.T / log.Logger
}

func (t tryNg[T]) OrDefault(def T) T {
	return def
}

// To wraps a (value, error) pair as Either.
func To[T any](v T, err error) Either[T] {
	if err != nil {
		return tryNg[T]{err}
	}
	return tryOk[T]{v}
}
