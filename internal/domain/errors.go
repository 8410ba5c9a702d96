package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrChatroomExists   = errors.New("chatroom with this id already exists")
	ErrChatroomNotFound = errors.New("chatroom not found")
	ErrInvalidMessage   = errors.New("message is missing required fields")
	ErrMarkerNotFound   = errors.New("marker not found")
)
