package domain

import "errors"

var (
	ErrDuplicateAccount    = errors.New("account already exists")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrIncorrectPassword   = errors.New("incorrect password")
	ErrInvalidToken        = errors.New("invalid token")
	ErrMalformedCredential = errors.New("malformed credential")
	ErrCrypto              = errors.New("password hashing failed")
	ErrValidation          = errors.New("validation failed")
	ErrInternal            = errors.New("internal error")
)
