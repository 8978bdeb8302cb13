// Package common holds sentinel errors shared by repositories, services and
// handlers. Match them with errors.Is.
package common

import "errors"

var (
	// repository errors
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("username already exists")

	// service errors
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
