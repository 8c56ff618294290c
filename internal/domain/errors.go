package domain

import "errors"

var (
	ErrInvalidProbability = errors.New("probability must be in (0, 1)")
	ErrInvalidPrice       = errors.New("decimal price must be greater than 1")
	ErrInvalidStake       = errors.New("stake must be positive")
	ErrPositionNotFound   = errors.New("position not found")
)
