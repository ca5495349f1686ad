package model

// Patient holds the profile fields the transaction pipeline needs for
// lookups and order attribution. Account/auth data lives elsewhere.
type Patient struct {
	Base
	Email    string `db:"email" json:"email"`
	FullName string `db:"full_name" json:"full_name"`
	Phone    string `db:"phone" json:"phone,omitempty"`
	City     string `db:"city" json:"city,omitempty"`
}
