package engine

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"security-suite/internal/model"
)

func TestTrafficLogNewestFirstAndBounded(t *testing.T) {
	l := NewTrafficLog(DefaultLogCapacity)
	for i := 0; i < 120; i++ {
		l.Add(model.NetworkLogEntry{ID: strconv.Itoa(i)})
		require.LessOrEqual(t, l.Len(), DefaultLogCapacity)
	}

	entries := l.Entries()
	require.Len(t, entries, DefaultLogCapacity)
	for i, e := range entries {
		assert.Equal(t, strconv.Itoa(119-i), e.ID)
	}
}

func TestTrafficLogDefaultsCapacity(t *testing.T) {
	l := NewTrafficLog(0)
	for i := 0; i < DefaultLogCapacity+10; i++ {
		l.Add(model.NetworkLogEntry{ID: strconv.Itoa(i)})
	}
	assert.Equal(t, DefaultLogCapacity, l.Len())

	small := NewTrafficLog(3)
	for i := 0; i < 5; i++ {
		small.Add(model.NetworkLogEntry{ID: strconv.Itoa(i)})
	}
	assert.Equal(t, 3, small.Len())
}

func TestTrafficLogCountStatus(t *testing.T) {
	l := NewTrafficLog(5)
	l.Add(model.NetworkLogEntry{Status: model.Blocked})
	l.Add(model.NetworkLogEntry{Status: model.Allowed})
	l.Add(model.NetworkLogEntry{Status: model.Blocked})
	l.Add(model.NetworkLogEntry{Status: model.NeedsReview})

	assert.Equal(t, 2, l.CountStatus(model.Blocked))
	assert.Equal(t, 1, l.CountStatus(model.NeedsReview))
}
