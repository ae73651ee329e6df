package utils

import (
	"errors"
	"io"
)

func Any[T any](xs []T, pred func(T) bool) bool {
	for _, x := range xs {
		if pred(x) {
			return true
		}
	}
	return false
}

// Filter returns the elements matching pred in their original order. The
// result is never nil.
func Filter[T any](xs []T, pred func(T) bool) []T {
	result := make([]T, 0, len(xs))
	for _, x := range xs {
		if pred(x) {
			result = append(result, x)
		}
	}
	return result
}

func Count[T any](xs []T, pred func(T) bool) int {
	n := 0
	for _, x := range xs {
		if pred(x) {
			n++
		}
	}
	return n
}

func ReadToEnd(r io.Reader) ([]byte, error) {
	BUF_SIZE := 1024 * 8
	buffer := make([]byte, BUF_SIZE)
	result := []byte{}
	for {
		numRead, err := r.Read(buffer)
		result = append(result, buffer[:numRead]...)
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
