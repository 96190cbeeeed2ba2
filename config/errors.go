package config

import "errors"

var (
	errMinIndexedLevelTooLow   = errors.New("config: min_indexed_level must exceed min_level")
	errMaxFullyAllocatedTooLow = errors.New("config: max_fully_allocated_level must be >= min_level")
)
