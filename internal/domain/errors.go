package domain

import "errors"

var (
	ErrJobNotFound       = errors.New("upload job not found")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrMemberNotFound    = errors.New("member not found")
	ErrConcurrentInsert  = errors.New("member was inserted concurrently")
)
