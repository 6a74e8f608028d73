package biz

import "errors"

var (
	ErrPresetNotFound  = errors.New("preset not found")
	ErrPresetNameTaken = errors.New("a preset with this name already exists")
	ErrInvalidFilters  = errors.New("invalid search filters")
)
