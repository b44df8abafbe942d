package usage

// Plan quota defaults applied when SetUsageLimits is called without
// explicit quota overrides.
var planQuotas = map[string]map[MetricType]int64{
	"starter": {
		MetricQueries:   1_000,
		MetricDocuments: 100,
		MetricApiCalls:  10_000,
		MetricStorageGb: 1,
	},
	"growth": {
		MetricQueries:   10_000,
		MetricDocuments: 1_000,
		MetricApiCalls:  100_000,
		MetricStorageGb: 10,
	},
	"enterprise": {
		MetricQueries:   100_000,
		MetricDocuments: 10_000,
		MetricApiCalls:  1_000_000,
		MetricStorageGb: 100,
	},
}

func IsValidPlan(plan string) bool {
	_, ok := planQuotas[plan]
	return ok
}
