package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"finsmart/internal/cache"
	"finsmart/internal/log"
)

const (
	CookieName      = "finsmart_session"
	DefaultTTL      = 12 * time.Hour
	defaultCapacity = 10000
)

// Registry holds live sessions in an LRU with sliding expiry. Sessions are
// copied in and out so a handler never shares a *Session with another
// goroutine.
type Registry struct {
	mu     sync.Mutex
	cache  *cache.LRUCache[Session]
	logger *log.Logger
	newID  func() string
}

type RegistryOption func(*Registry)

func WithIDGenerator(gen func() string) RegistryOption {
	return func(r *Registry) { r.newID = gen }
}

func WithRegistryLogger(l *log.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l.WithComponent(log.ComponentSession) }
}

func NewRegistry(ttl time.Duration, opts ...RegistryOption) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &Registry{
		cache:  cache.NewLRUCache[Session](defaultCapacity, ttl, cache.WithSlidingExpiry()),
		logger: log.Discard(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache exposes the backing cache for the cleanup manager.
func (r *Registry) Cache() *cache.LRUCache[Session] {
	return r.cache
}

// Start creates a fresh session on Home.
func (r *Registry) Start() Session {
	s := Session{ID: r.newID(), State: Home}
	r.cache.Set(s.ID, s)
	r.logger.Debug("Session started", log.FieldSessionID, s.ID)
	return s
}

// Get returns the session for id, or ok=false when unknown or expired.
func (r *Registry) Get(id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}
	return r.cache.Get(id)
}

// Resume returns the session for id, starting a new one when it is unknown.
func (r *Registry) Resume(id string) Session {
	if s, ok := r.Get(id); ok {
		return s
	}
	return r.Start()
}

// Update applies fn to the stored session and saves the result if fn
// succeeds. Updates to one registry are serialized.
func (r *Registry) Update(id string, fn func(*Session) error) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.cache.Get(id)
	if !ok {
		s = Session{ID: id, State: Home}
	}
	if err := fn(&s); err != nil {
		return s, err
	}
	r.cache.Set(id, s)
	return s, nil
}

func (r *Registry) End(id string) {
	r.cache.Delete(id)
	r.logger.Debug("Session ended", log.FieldSessionID, id)
}

func (r *Registry) Len() int {
	return r.cache.Size()
}
