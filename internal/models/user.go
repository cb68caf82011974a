package models

// User is an operator account allowed to submit readings and events over HTTP.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
