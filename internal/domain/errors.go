package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidStage    = errors.New("invalid stage")
	ErrInvalidLabel    = errors.New("invalid label")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidCounter  = errors.New("invalid counter")
	ErrInvalidProgress = errors.New("invalid progress")
)
