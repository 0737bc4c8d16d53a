package usecase

import (
	"math"
	"sort"

	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/domain/types"
)

// purchasedSet holds what a user already bought. Product names match across restaurants.
type purchasedSet struct {
	names map[string]struct{}
	ids   map[model.ProductID]struct{}
}

func newPurchasedSet(summaries []*model.OrderSummary) *purchasedSet {
	s := &purchasedSet{
		names: make(map[string]struct{}, len(summaries)),
		ids:   make(map[model.ProductID]struct{}),
	}
	for _, summary := range summaries {
		s.names[summary.ProductName] = struct{}{}
		if summary.ProductID != "" {
			s.ids[summary.ProductID] = struct{}{}
		}
	}
	return s
}

func (s *purchasedSet) contains(p *model.Product) bool {
	if _, ok := s.names[p.ProductName]; ok {
		return true
	}
	_, ok := s.ids[p.ID]
	return ok
}

// filterPurchased removes candidates the user already bought, preserving order
func filterPurchased(candidates []*model.ScoredProduct, purchased *purchasedSet) []*model.ScoredProduct {
	result := make([]*model.ScoredProduct, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.Product == nil || purchased.contains(c.Product) {
			continue
		}
		result = append(result, c)
	}
	return result
}

// dedupByProduct keeps the first occurrence of each product ID, preserving order
func dedupByProduct(recs []*model.Recommendation) []*model.Recommendation {
	seen := make(map[model.ProductID]struct{}, len(recs))
	result := make([]*model.Recommendation, 0, len(recs))
	for _, r := range recs {
		if _, ok := seen[r.Product.ID]; ok {
			continue
		}
		seen[r.Product.ID] = struct{}{}
		result = append(result, r)
	}
	return result
}

// sortByScore orders recommendations by descending score. Equal scores keep their input order.
func sortByScore(recs []*model.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func scaleScores(recs []*model.Recommendation, weight float64) {
	for _, r := range recs {
		r.Score *= weight
	}
}

// similarityScore treats a missing or non-finite similarity as zero
func similarityScore(similarity float64) float64 {
	if math.IsNaN(similarity) || math.IsInf(similarity, 0) {
		return 0
	}
	return similarity
}

func toRecommendations(candidates []*model.ScoredProduct, source types.RecommendSource, reason string) []*model.Recommendation {
	recs := make([]*model.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.Product == nil {
			continue
		}
		recs = append(recs, &model.Recommendation{
			Product: c.Product,
			Score:   similarityScore(c.Similarity),
			Reason:  reason,
			Source:  source,
		})
	}
	return recs
}

// hybridShare is ceil(limit * weight). The epsilon keeps products like 10*0.7 from rounding up to 8.
func hybridShare(limit int, weight float64) int {
	return int(math.Ceil(float64(limit)*weight - 1e-9))
}
