package wikidot

import "sync"

// Session holds the cookie of one logged-in account. The zero value is an
// unauthenticated session. The cookie is only ever replaced as a whole, so
// readers see either nothing or a complete value. Concurrent logins on one
// session are last-writer-wins.
type Session struct {
	mu     sync.RWMutex
	cookie string
}

// Cookie returns the current cookie, empty when logged out
func (s *Session) Cookie() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cookie
}

// Authenticated reports whether a cookie is held
func (s *Session) Authenticated() bool {
	return s.Cookie() != ""
}

func (s *Session) set(cookie string) {
	s.mu.Lock()
	s.cookie = cookie
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.set("")
}

// sessionCookie composes the Cookie value stored after login
func sessionCookie(sessionID string) string {
	return "WIKIDOT_SESSION_ID=" + sessionID + "; wikidot_udsession=1;"
}
