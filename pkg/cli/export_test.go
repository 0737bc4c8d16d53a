package cli

var (
	PrintRecommendations     = printRecommendations
	PrintRecommendationsJSON = printRecommendationsJSON
	GetIndexConfig           = getIndexConfig
)
