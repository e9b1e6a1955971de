package session

import (
	"sync"

	"github.com/rs/zerolog"
)

// Store is the single source of truth for "who is the current user" inside a
// running client session. State changes are mirrored automatically to the
// underlying Storage under StorageKey so the session survives reloads.
type Store struct {
	mu      sync.RWMutex
	user    *Identity
	storage Storage
	log     zerolog.Logger
}

func NewStore(storage Storage, log zerolog.Logger) *Store {
	return &Store{storage: storage, log: log}
}

// User returns the current identity, or nil when signed out.
func (s *Store) User() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUser replaces the current identity. nil clears both the in-memory state
// and the persisted entry. Persistence failures are logged, never fatal: the
// in-memory session stays authoritative.
func (s *Store) SetUser(id *Identity) {
	s.mu.Lock()
	s.user = id
	s.mu.Unlock()

	if id == nil {
		if err := s.storage.Delete(StorageKey); err != nil {
			s.log.Warn().Err(err).Msg("clear persisted session")
		}
		return
	}

	data, err := EncodeStored(id)
	if err != nil {
		s.log.Warn().Err(err).Msg("encode session for persistence")
		return
	}
	if err := s.storage.Set(StorageKey, data); err != nil {
		s.log.Warn().Err(err).Msg("persist session")
	}
}

// restore reads the persisted entry and, when it decodes to a usable
// identity, installs it as the current user. Stale or unparsable entries are
// cleared so they cannot shadow a later sign-in.
func (s *Store) restore() (*Identity, error) {
	data, ok, err := s.storage.Get(StorageKey)
	if err != nil || !ok {
		return nil, ErrNoIdentity
	}

	id, err := DecodeStored(data)
	if err != nil {
		if delErr := s.storage.Delete(StorageKey); delErr != nil {
			s.log.Warn().Err(delErr).Msg("clear stale session entry")
		}
		return nil, ErrNoIdentity
	}

	s.mu.Lock()
	s.user = id
	s.mu.Unlock()
	return id, nil
}
