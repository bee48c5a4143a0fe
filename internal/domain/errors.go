package domain

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrSessionAlreadyOpen = errors.New("mining session already open")
	ErrNoOpenSession      = errors.New("no open mining session")
)
