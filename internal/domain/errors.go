package domain

import "errors"

var (
	ErrNoActiveChat   = errors.New("no active chat")
	ErrSendInFlight   = errors.New("a send is already in flight")
	ErrThreadNotFound = errors.New("thread not found")
	ErrNotArchivable  = errors.New("thread cannot be archived")
	ErrStaleState     = errors.New("state cleared while request was in flight")
	ErrInvalidRating  = errors.New("rating out of range")
)
