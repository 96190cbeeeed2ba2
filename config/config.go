// Package config holds the tuning knobs for the buffer hierarchy: the
// constants spec.md §6 enumerates as "Configuration parameters". It follows
// the teacher's utils/config singleton: a JSON-tagged struct, loaded once
// from an optional file next to this package, falling back to defaults.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// HierarchyConfig holds the tunables of the leveled buffer hierarchy.
type HierarchyConfig struct {
	// MinLevel is the smallest level index ever used. The bottom level's
	// capacity is 2^(MinLevel+1) - 1 (it is the insertion buffer).
	MinLevel int `json:"min_level"`

	// MinIndexedLevel is the threshold at or above which a level carries a
	// companion learned index; below it, plain binary search is used.
	MinIndexedLevel int `json:"min_indexed_level"`

	// MaxFullyAllocatedLevel is the highest level index whose storage is
	// pre-reserved and retained across clears. Above it, storage is
	// allocated on demand and released (the level's slice is set to nil)
	// after emptying.
	MaxFullyAllocatedLevel int `json:"max_fully_allocated_level"`

	// InitLevels is the number of level slots pre-allocated at construction.
	InitLevels int `json:"init_levels"`
}

// DefaultConfig mirrors the source's documented constants (MIN_LEVEL = 6,
// MIN_INDEXED_LEVEL = 18).
func DefaultConfig() HierarchyConfig {
	return HierarchyConfig{
		MinLevel:               6,
		MinIndexedLevel:        18,
		MaxFullyAllocatedLevel: 24,
		InitLevels:             25,
	}
}

var (
	instance HierarchyConfig
	once     sync.Once
)

// GetConfig returns the process-wide singleton configuration, loading it
// from config.json next to this source file on first use, or falling back
// to DefaultConfig() if the file is absent or invalid.
func GetConfig() HierarchyConfig {
	once.Do(func() {
		instance = loadConfig()
	})
	return instance
}

func loadConfig() HierarchyConfig {
	cfg := DefaultConfig()

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return cfg
	}
	configPath := filepath.Join(filepath.Dir(filename), "config.json")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg
	}
	return cfg
}

// Validate reports whether the configuration satisfies the invariants
// spec.md §6 requires of it: MinIndexedLevel must exceed MinLevel, and the
// always-reserved band must be non-empty.
func (c HierarchyConfig) Validate() error {
	if c.MinIndexedLevel <= c.MinLevel {
		return errMinIndexedLevelTooLow
	}
	if c.MaxFullyAllocatedLevel < c.MinLevel {
		return errMaxFullyAllocatedTooLow
	}
	return nil
}
