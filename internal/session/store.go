// Package session keeps each browser's uploaded table in memory until the
// session goes idle.
package session

import (
	"context"
	"time"

	"datadash/domain/table"
	"datadash/internal/logging"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// Session is the server-side state of one browser
type Session struct {
	ID         string
	FileName   string
	Table      *table.Table
	UploadedAt time.Time
}

// NewID returns a fresh random session identifier
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an identifier issued by NewID
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Store holds sessions with a sliding idle timeout. Reading a session
// extends its lifetime.
type Store struct {
	cache *ttlcache.Cache[string, *Session]
	log   *logging.Logger
}

// NewStore creates a store whose sessions expire after ttl without access
func NewStore(ttl time.Duration, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	cache := ttlcache.New[string, *Session](
		ttlcache.WithTTL[string, *Session](ttl),
	)
	s := &Store{cache: cache, log: logger.Component("SessionStore")}

	cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *Session]) {
		if reason == ttlcache.EvictionReasonExpired {
			s.log.Debug("Session %s expired", item.Key())
		}
	})
	return s
}

// Start runs the expiry loop until Stop is called. It blocks.
func (s *Store) Start() {
	s.cache.Start()
}

// Stop ends the expiry loop
func (s *Store) Stop() {
	s.cache.Stop()
}

// Get returns the session with the given id
func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	item := s.cache.Get(id)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Put stores or replaces a session
func (s *Store) Put(sess *Session) {
	s.cache.Set(sess.ID, sess, ttlcache.DefaultTTL)
}

// Delete removes a session; unknown ids are ignored
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	return s.cache.Len()
}
