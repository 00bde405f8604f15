package model

// User is an account record as served by GET /users. The password travels
// in that payload because login is prototype-grade plaintext comparison on
// the client; it must be stripped before the record is persisted anywhere.
type User struct {
	ID       int    `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"uniqueIndex"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

// WithoutPassword returns a copy safe for persistence.
func (u User) WithoutPassword() User {
	u.Password = ""
	return u
}
