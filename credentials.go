package xfeed

import (
	"strings"
	"sync"
)

// CredentialStore holds the two cookie tokens the web API needs plus the user
// id derived from the twid cookie. It is the only process-wide shared state:
// every in-flight request reads it, nothing but Set/Clear mutates it, and
// credentials are always replaced wholesale.
//
// Persistence is the host editor's job; this store is purely in-memory.
type CredentialStore struct {
	mu        sync.RWMutex
	ct0       string
	authToken string
	userID    string
	observers []func()
}

// NewCredentialStore returns an empty, unauthenticated store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// Set replaces the stored credentials wholesale. twid is the raw value of the
// twid cookie; the user id is re-derived from it on every call, wiping any
// previously cached id. Registered observers are notified synchronously.
func (s *CredentialStore) Set(ct0, authToken, twid string) {
	s.mu.Lock()
	s.ct0 = ct0
	s.authToken = authToken
	s.userID = parseTwidUserID(twid)
	obs := s.observers
	s.mu.Unlock()

	for _, fn := range obs {
		fn()
	}
}

// Clear wipes all fields and notifies observers.
func (s *CredentialStore) Clear() {
	s.mu.Lock()
	s.ct0 = ""
	s.authToken = ""
	s.userID = ""
	obs := s.observers
	s.mu.Unlock()

	for _, fn := range obs {
		fn()
	}
}

// IsAuthenticated reports whether both required tokens are present.
func (s *CredentialStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ct0 != "" && s.authToken != ""
}

// Tokens returns a snapshot of (ct0, authToken).
func (s *CredentialStore) Tokens() (ct0, authToken string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ct0, s.authToken
}

// UserID returns the user id derived from the twid cookie, or "" when none
// could be derived.
func (s *CredentialStore) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// OnChange registers fn to run after every Set or Clear. Registration is
// expected once per consumer, at construction.
func (s *CredentialStore) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// parseTwidUserID extracts the numeric user id embedded in a twid cookie.
// Observed formats, tried in order: percent-encoded "u%3D<id>", plain
// "u=<id>", and the bare id itself. The first matching pattern wins.
func parseTwidUserID(twid string) string {
	twid = strings.TrimSpace(strings.Trim(twid, `"`))
	if twid == "" {
		return ""
	}

	var candidate string
	switch {
	case strings.Contains(twid, "u%3D"):
		candidate = twid[strings.Index(twid, "u%3D")+len("u%3D"):]
	case strings.Contains(twid, "u="):
		candidate = twid[strings.Index(twid, "u=")+len("u="):]
	default:
		candidate = twid
	}

	// Keep the leading digit run only; trailing cookie junk is discarded.
	end := 0
	for end < len(candidate) && candidate[end] >= '0' && candidate[end] <= '9' {
		end++
	}
	return candidate[:end]
}
