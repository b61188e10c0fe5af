package domain

// KeyPrefix namespaces every key the service writes to the backing store.
const KeyPrefix = "rawi:"

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model          string
	Dimensions     int
	DistanceMetric string
	Algorithm      string
}

// DefaultVectorConfig returns the defaults for the Arabic lecture corpus
// embedding model.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "gate-arabert-v1-doc",
		Dimensions:     768,
		DistanceMetric: "cosine",
		Algorithm:      "hnsw",
	}
}
