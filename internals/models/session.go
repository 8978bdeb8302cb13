package models

import "time"

type Session struct {
	ID        string
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) Identity() *Identity {
	return &Identity{UserID: s.UserID, Username: s.Username}
}
