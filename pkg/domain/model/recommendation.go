package model

import "github.com/secmon-lab/foodrec/pkg/domain/types"

const (
	// ReasonHistory is attached to recommendations derived from order history
	ReasonHistory = "Based on your order history"
	// ReasonPopularity is attached to recommendations produced by the popularity fallback
	ReasonPopularity = "Popular product (no order history available)"
)

// PreferenceReason returns the reason attached to preference-based recommendations
func PreferenceReason(preference string) string {
	return `Matches preference: "` + preference + `"`
}

// Recommendation is a product suggested to a user together with its score and provenance
type Recommendation struct {
	Product *Product
	Score   float64
	Reason  string
	Source  types.RecommendSource
}
