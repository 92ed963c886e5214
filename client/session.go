package client

import "time"

// Session is the caller-owned credential pair. The client updates it in
// place after a refresh; callers persist it with Client.Session.
type Session struct {
	Access    string    `json:"access"`
	Refresh   string    `json:"refresh"`
	ExpiresAt time.Time `json:"expires_at"`
}

// expiryLeeway refreshes slightly ahead of the real expiry.
const expiryLeeway = 10 * time.Second

func (s *Session) valid() bool { return s != nil && s.Access != "" }

func (s *Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Add(expiryLeeway).Before(s.ExpiresAt)
}
