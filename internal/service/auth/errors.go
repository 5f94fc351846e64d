package auth

import "errors"

// Authentication errors returned by the JWT service and password verifier.
var (
	// ErrInvalidToken is returned when a token fails signature or claim
	// validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("token expired")

	// ErrInvalidCredentials is returned when a password does not match the
	// stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
