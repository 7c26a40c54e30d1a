package screen

import (
	"errors"
	"time"

	"github.com/Sternrassler/hepatodb-client/pkg/resource"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// ErrUnknownSession is returned for expired or never issued session ids.
var ErrUnknownSession = errors.New("unknown session")

// DefaultSessionTTL is how long an unused session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Session is one dashboard view: a screen per catalog resource.
type Session struct {
	ID        string
	CreatedAt time.Time
	screens   map[string]*Screen
}

// Screen returns the screen for the named resource.
func (s *Session) Screen(name string) (*Screen, error) {
	sc, ok := s.screens[name]
	if !ok {
		return nil, resource.ErrUnknownResource
	}
	return sc, nil
}

// Screens returns every screen keyed by resource name.
func (s *Session) Screens() map[string]*Screen {
	out := make(map[string]*Screen, len(s.screens))
	for k, v := range s.screens {
		out[k] = v
	}
	return out
}

func (s *Session) cancelAll() {
	for _, sc := range s.screens {
		sc.Cancel()
	}
}

// Registry issues sessions and expires the ones left unused for the TTL.
type Registry struct {
	src      Source
	ttl      time.Duration
	sessions *gocache.Cache
}

// NewRegistry creates a registry whose screens read from src. ttl <= 0 uses
// DefaultSessionTTL.
func NewRegistry(src Source, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	sessions := gocache.New(ttl, ttl/2)
	sessions.OnEvicted(func(_ string, v any) {
		v.(*Session).cancelAll()
	})

	return &Registry{
		src:      src,
		ttl:      ttl,
		sessions: sessions,
	}
}

// Create starts a new session with an idle screen per resource.
func (r *Registry) Create() *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		screens:   make(map[string]*Screen),
	}
	for _, res := range resource.All() {
		sess.screens[res.Name] = New(res, r.src)
	}

	r.sessions.Set(sess.ID, sess, r.ttl)
	return sess
}

// Get returns a session and extends its lifetime.
func (r *Registry) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUnknownSession
	}

	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrUnknownSession
	}

	sess := v.(*Session)
	r.sessions.Set(id, sess, r.ttl)
	return sess, nil
}

// Delete ends a session and cancels its searches.
func (r *Registry) Delete(id string) {
	r.sessions.Delete(id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}
