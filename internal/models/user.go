package models

import "time"

// User is a registered credential record. HashedPassword never leaves the
// storage/auth boundary.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	Name           string    `db:"name" json:"name"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"-"`
}

// NewUser is a user that has not been stored yet.
type NewUser struct {
	Email          string `db:"email"`
	Name           string `db:"name"`
	HashedPassword string `db:"hashed_password"`
}
