package joblytools

func Filter[T any](input []T, keep func(T) bool) []T {
	result := []T{}
	for _, i := range input {
		if keep(i) {
			result = append(result, i)
		}
	}

	return result
}

func Map[T any, Y any](input []T, convert func(T) Y) []Y {
	result := make([]Y, 0, len(input))
	for _, i := range input {
		result = append(result, convert(i))
	}

	return result
}

// Deref returns the value behind pointer, or nil for a nil pointer.
func Deref[T any](pointer *T) any {
	if pointer == nil {
		return nil
	}

	return *pointer
}
