package domain

import "errors"

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrProjectExists      = errors.New("project already exists")
	ErrInvalidPatch       = errors.New("invalid project fields")
	ErrStorageUnavailable = errors.New("project storage unavailable")
	ErrStorageWrite       = errors.New("project storage write failed")
)
