package models

type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	DisplayName  string `db:"display_name"` // empty when NULL
}

// Identity is what a session remembers about the signed-in user.
type Identity struct {
	UserID   int64
	Username string
}

// Authenticated reports whether the identity belongs to a signed-in user.
func (i *Identity) Authenticated() bool {
	return i != nil && i.UserID != 0
}
