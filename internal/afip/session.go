package afip

import (
	"sync"
	"time"
)

// Mock credentials used when certificate material is absent or the forced
// mock flag is set. Development fallback only.
const (
	MockToken = "MOCK_TOKEN"
	MockSign  = "MOCK_SIGN"
)

// Session is one authenticated WSAA ticket. The zero value is "no session".
type Session struct {
	Token  string
	Sign   string
	Expiry time.Time
}

func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && now.Before(s.Expiry)
}

func (s Session) IsMock() bool { return s.Token == MockToken }

// SessionCache holds the process-wide session. Refreshes may race; both
// logins succeed and the last write wins, which is harmless because a fresh
// ticket is a fresh ticket.
type SessionCache interface {
	Get() (Session, bool)
	Put(s Session)
}

type memorySessionCache struct {
	mu sync.RWMutex
	s  Session
}

func NewMemorySessionCache() SessionCache { return &memorySessionCache{} }

func (c *memorySessionCache) Get() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s, c.s.Token != ""
}

func (c *memorySessionCache) Put(s Session) {
	c.mu.Lock()
	c.s = s
	c.mu.Unlock()
}
