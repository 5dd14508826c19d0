package domain

import "errors"

var (
	// ErrPlayerNotFound is returned when a display name has no stored record.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrGameNotFound indicates a game record ID is invalid.
	ErrGameNotFound = errors.New("game not found")
	// ErrCategoryNotFound indicates the question bank has no such category.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrNoQuestions indicates a category exists but yielded no questions.
	ErrNoQuestions = errors.New("no questions available")
)
