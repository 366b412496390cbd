package slices

// Map applies f to each element of s and collects the results.
func Map[T any, R any](s []T, f func(T) R) []R {
	if s == nil {
		return nil
	}
	ret := make([]R, len(s))
	for i, v := range s {
		ret[i] = f(v)
	}
	return ret
}

// First returns the first element satisfying pred.
//
// The second return value is false when no element satisfies pred.
func First[T any](s []T, pred func(T) bool) (T, bool) {
	for _, v := range s {
		if pred(v) {
			return v, true
		}
	}
	return *new(T), false
}

// Filter collects elements satisfying pred, keeping their order.
func Filter[T any](s []T, pred func(T) bool) []T {
	ret := []T{}
	for _, v := range s {
		if pred(v) {
			ret = append(ret, v)
		}
	}
	return ret
}

// Contains returns true when at least one element satisfies pred.
func Contains[T any](s []T, pred func(T) bool) bool {
	_, ok := First(s, pred)
	return ok
}

// KeysOf returns keys of m. Order is not specified.
func KeysOf[K comparable, V any](m map[K]V) []K {
	ret := make([]K, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	return ret
}

// ApplyAll applies each option function to v in order.
func ApplyAll[T any](v T, opts ...func(T) T) T {
	for _, opt := range opts {
		v = opt(v)
	}
	return v
}
