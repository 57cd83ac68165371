// internal/support/classify/cache_test.go
package classify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCache_GetPut(t *testing.T) {
	cache := NewResponseCache(5*time.Minute, 100)

	key := cache.Key("prompt", "input", nil)

	_, ok := cache.Get(key)
	assert.False(t, ok)

	cache.Put(key, "cached reply")

	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, "cached reply", got)
}

func TestResponseCache_KeyFingerprint(t *testing.T) {
	cache := NewResponseCache(5*time.Minute, 100)

	base := cache.Key("prompt", "input", nil)

	assert.Equal(t, base, cache.Key("prompt", "input", nil))
	assert.NotEqual(t, base, cache.Key("prompt", "other input", nil))
	assert.NotEqual(t, base, cache.Key("other prompt", "input", nil))
	assert.NotEqual(t, base, cache.Key("prompt", "input", map[string]interface{}{"temperature": 0.9}))
}

func TestResponseCache_TTLExpiry(t *testing.T) {
	cache := NewResponseCache(5*time.Minute, 100)

	current := time.Now()
	cache.now = func() time.Time { return current }

	key := cache.Key("prompt", "input", nil)
	cache.Put(key, "reply")

	current = current.Add(4 * time.Minute)
	_, ok := cache.Get(key)
	assert.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = cache.Get(key)
	assert.False(t, ok)

	// expired entry is removed, not just hidden
	assert.Equal(t, 0, cache.Len())
}

func TestResponseCache_EvictsOldestInserted(t *testing.T) {
	cache := NewResponseCache(5*time.Minute, 3)

	current := time.Now()
	cache.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		current = current.Add(time.Second)
		cache.Put(fmt.Sprintf("key-%d", i), fmt.Sprintf("reply-%d", i))
	}
	assert.Equal(t, 3, cache.Len())

	current = current.Add(time.Second)
	cache.Put("key-3", "reply-3")

	assert.Equal(t, 3, cache.Len())

	// oldest-inserted entry is gone, the rest survive
	_, ok := cache.Get("key-0")
	assert.False(t, ok)

	for i := 1; i <= 3; i++ {
		got, ok := cache.Get(fmt.Sprintf("key-%d", i))
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("reply-%d", i), got)
	}
}

func TestResponseCache_OverwriteDoesNotEvict(t *testing.T) {
	cache := NewResponseCache(5*time.Minute, 2)

	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Put("a", "1")
	current = current.Add(time.Second)
	cache.Put("b", "2")
	current = current.Add(time.Second)
	cache.Put("a", "updated")

	assert.Equal(t, 2, cache.Len())

	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, "updated", got)

	_, ok = cache.Get("b")
	assert.True(t, ok)
}
