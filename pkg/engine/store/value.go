package store

// Value returns the value at path converted to T. The second result is false
// when the path is unset or holds a value of another type.
func Value[T any](s *Store, path string) (T, bool) {
	v, ok := s.Get(path)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// ValueOr is Value with a fallback.
func ValueOr[T any](s *Store, path string, fallback T) T {
	if v, ok := Value[T](s, path); ok {
		return v
	}
	return fallback
}
