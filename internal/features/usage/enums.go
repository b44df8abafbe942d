package usage

type MetricType string

const (
	MetricQueries   MetricType = "queries"
	MetricDocuments MetricType = "documents"
	MetricApiCalls  MetricType = "apiCalls"
	MetricStorageGb MetricType = "storageGb"
)

var AllMetricTypes = []MetricType{
	MetricQueries,
	MetricDocuments,
	MetricApiCalls,
	MetricStorageGb,
}

func IsValidMetricType(metric MetricType) bool {
	for _, known := range AllMetricTypes {
		if metric == known {
			return true
		}
	}
	return false
}
