package domain

import "errors"

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrSessionNotFound      = errors.New("session not found")

	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidPhone = errors.New("invalid phone")
)
