package balance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache_BoundedSize(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newTTLCache[int](time.Minute, 2, func() time.Time { return now })
	ctx := context.Background()

	loads := 0
	load := func(v int) func(context.Context) (int, error) {
		return func(context.Context) (int, error) {
			loads++
			return v, nil
		}
	}

	for i, key := range []string{"a", "b", "c"} {
		now = now.Add(time.Second)
		_, hit, err := c.get(ctx, key, load(i))
		require.NoError(t, err)
		assert.False(t, hit)
	}

	// "a" was the oldest and got evicted
	assert.Equal(t, 2, c.count())
	v, hit, err := c.get(ctx, "c", load(99))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, v)

	_, hit, _ = c.get(ctx, "a", load(0))
	assert.False(t, hit)
	assert.Equal(t, 4, loads)
}
