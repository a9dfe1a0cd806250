package util

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Contains reports whether val is in slice.
func Contains[T comparable](slice []T, val T) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}

// Filter returns the elements of slice that satisfy keep, in order. It
// never returns nil, so the result encodes as a JSON array.
func Filter[T any](slice []T, keep func(T) bool) []T {
	result := make([]T, 0, len(slice))
	for _, item := range slice {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}

// Map transforms each element of slice.
func Map[T, U any](slice []T, transform func(T) U) []U {
	result := make([]U, len(slice))
	for i, item := range slice {
		result[i] = transform(item)
	}
	return result
}
