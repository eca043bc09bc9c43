package afip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionValid(t *testing.T) {
	now := time.Now()
	s := Session{Token: "t", Sign: "s", Expiry: now.Add(time.Hour)}
	assert.True(t, s.Valid(now))
	assert.False(t, s.Valid(now.Add(2*time.Hour)))
	assert.False(t, Session{}.Valid(now), "zero value is no session")
}

func TestSessionIsMock(t *testing.T) {
	assert.True(t, Session{Token: MockToken}.IsMock())
	assert.False(t, Session{Token: "real"}.IsMock())
}

func TestMemorySessionCache(t *testing.T) {
	c := NewMemorySessionCache()

	_, ok := c.Get()
	assert.False(t, ok)

	want := Session{Token: "t", Sign: "s", Expiry: time.Now().Add(time.Hour)}
	c.Put(want)

	got, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, want, got)
}
