package entity

// User is the read-only projection of the users table used for receipts and notifications.
type User struct {
	Base
	Username string `db:"username"`
	Email    string `db:"email"`
}
