package pagecache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := New()
	gen := c.Generation("/dashboard/invoices")

	ok := c.Set("/dashboard/invoices", "status=paid", gen, Entry{Body: []byte(`{"items":[]}`)})
	require.True(t, ok)

	e, ok := c.Get("/dashboard/invoices/", "status=paid")
	require.True(t, ok)
	assert.Equal(t, `{"items":[]}`, string(e.Body))
	assert.False(t, e.StoredAt.IsZero())

	_, ok = c.Get("/dashboard/invoices", "status=pending")
	assert.False(t, ok)
}

func TestRevalidatePath_DropsAllVariants(t *testing.T) {
	c := New()
	gen := c.Generation("/dashboard/invoices")
	c.Set("/dashboard/invoices", "a", gen, Entry{Body: []byte("a")})
	c.Set("/dashboard/invoices", "b", gen, Entry{Body: []byte("b")})
	c.Set("/dashboard/customers", "a", c.Generation("/dashboard/customers"), Entry{Body: []byte("c")})

	c.RevalidatePath("/dashboard/invoices")

	assert.Equal(t, 0, c.Len("/dashboard/invoices"))
	assert.Equal(t, 1, c.Len("/dashboard/customers"))
}

func TestSet_StaleGenerationIsDropped(t *testing.T) {
	c := New()
	gen := c.Generation("/dashboard/invoices")

	c.RevalidatePath("/dashboard/invoices")
	ok := c.Set("/dashboard/invoices", "", gen, Entry{Body: []byte("stale")})

	assert.False(t, ok)
	_, found := c.Get("/dashboard/invoices", "")
	assert.False(t, found)
}

func TestRevalidatePath_UnknownPath(t *testing.T) {
	c := New()
	c.RevalidatePath("/nothing/here")
	assert.Equal(t, 0, c.Len("/nothing/here"))
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			gen := c.Generation("/dashboard/invoices")
			c.Set("/dashboard/invoices", "k", gen, Entry{Body: []byte("x")})
			c.Get("/dashboard/invoices", "k")
		}()
		go func() {
			defer wg.Done()
			c.RevalidatePath("/dashboard/invoices")
		}()
	}
	wg.Wait()
}

func TestSet_EvictsOldestPastLimit(t *testing.T) {
	c := NewWithLimit(3)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	c.nowFunc = func() time.Time { return now }

	gen := c.Generation("/dashboard/invoices")
	for i := 0; i < 3; i++ {
		require.True(t, c.Set("/dashboard/invoices", fmt.Sprintf("k%d", i), gen, Entry{Body: []byte("x")}))
		now = now.Add(time.Second)
	}

	// overwriting a present key does not evict
	c.Set("/dashboard/invoices", "k1", gen, Entry{Body: []byte("y")})
	assert.Equal(t, 3, c.Len("/dashboard/invoices"))

	c.Set("/dashboard/invoices", "k3", gen, Entry{Body: []byte("z")})
	assert.Equal(t, 3, c.Len("/dashboard/invoices"))
	_, ok := c.Get("/dashboard/invoices", "k0")
	assert.False(t, ok)
	_, ok = c.Get("/dashboard/invoices", "k1")
	assert.True(t, ok)
}

func TestSet_BoundedUnderManyKeys(t *testing.T) {
	c := New()
	gen := c.Generation("/dashboard/invoices")
	for i := 0; i < 5000; i++ {
		c.Set("/dashboard/invoices", fmt.Sprintf("junk=%d", i), gen, Entry{Body: []byte("x")})
	}
	assert.Equal(t, DefaultMaxEntries, c.Len("/dashboard/invoices"))
}

func TestAge(t *testing.T) {
	c := New()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	c.nowFunc = func() time.Time { return now }

	c.Set("/dashboard/invoices", "", c.Generation("/dashboard/invoices"), Entry{Body: []byte("x")})
	now = now.Add(90 * time.Second)

	e, ok := c.Get("/dashboard/invoices", "")
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, c.Age(e))
}
