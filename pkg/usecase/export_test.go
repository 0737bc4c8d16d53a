package usecase

// Candidate helpers exported for testing
var (
	NewPurchasedSet   = newPurchasedSet
	FilterPurchased   = filterPurchased
	DedupByProduct    = dedupByProduct
	SortByScore       = sortByScore
	HybridShare       = hybridShare
	SimilarityScore   = similarityScore
	ToRecommendations = toRecommendations
)
