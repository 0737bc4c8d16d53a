package types

import "fmt"

// RecommendSource identifies which engine branch produced a recommendation
type RecommendSource string

const (
	RecommendSourceHistory    RecommendSource = "history"
	RecommendSourcePreference RecommendSource = "preference"
	RecommendSourcePopularity RecommendSource = "popularity"
)

// IsValid checks if the source is valid
func (s RecommendSource) IsValid() bool {
	switch s {
	case RecommendSourceHistory,
		RecommendSourcePreference,
		RecommendSourcePopularity:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source
func (s RecommendSource) String() string {
	return string(s)
}

// RecommendMode is the engine operation that was requested
type RecommendMode string

const (
	RecommendModeUser       RecommendMode = "user"
	RecommendModePreference RecommendMode = "preference"
	RecommendModeHybrid     RecommendMode = "hybrid"
	RecommendModePopularity RecommendMode = "popularity"
)

// AllRecommendModes returns all recommendation modes
func AllRecommendModes() []RecommendMode {
	return []RecommendMode{
		RecommendModeUser,
		RecommendModePreference,
		RecommendModeHybrid,
		RecommendModePopularity,
	}
}

// IsValid checks if the mode is valid
func (m RecommendMode) IsValid() bool {
	switch m {
	case RecommendModeUser,
		RecommendModePreference,
		RecommendModeHybrid,
		RecommendModePopularity:
		return true
	default:
		return false
	}
}

// String returns the string representation of the mode
func (m RecommendMode) String() string {
	return string(m)
}

// ParseRecommendMode parses a string into a RecommendMode
func ParseRecommendMode(s string) (RecommendMode, error) {
	mode := RecommendMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid recommend mode: %s", s)
	}
	return mode, nil
}
