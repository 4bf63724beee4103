package service

import "errors"

// Rejections leave all state untouched; callers may ignore them.
var (
	ErrEmptyName    = errors.New("deck name cannot be empty")
	ErrEmptyCard    = errors.New("card front and back cannot be empty")
	ErrDeckNotFound = errors.New("deck not found")
	ErrCardNotFound = errors.New("card not found")
)
