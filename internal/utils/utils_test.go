package utils

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAny(t *testing.T) {
	isHelp := func(x string) bool { return x == "-h" }
	assert.True(t, Any([]string{"a", "-h"}, isHelp))
	assert.False(t, Any([]string{"a"}, isHelp))
	assert.False(t, Any(nil, isHelp))
}

func TestFilter(t *testing.T) {
	even := func(x int) bool { return x%2 == 0 }
	assert.Equal(t, []int{2, 4}, Filter([]int{1, 2, 3, 4}, even))

	got := Filter([]int{1, 3}, even)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 2, Count([]string{"a", "b", "a"}, func(s string) bool { return s == "a" }))
}

func TestReadToEnd(t *testing.T) {
	long := strings.Repeat("x", 20000)
	got, err := ReadToEnd(iotest.OneByteReader(strings.NewReader("hello")))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	got, err = ReadToEnd(strings.NewReader(long))
	require.NoError(t, err)
	assert.Len(t, got, len(long))

	_, err = ReadToEnd(iotest.ErrReader(errors.New("boom")))
	assert.EqualError(t, err, "boom")
}
