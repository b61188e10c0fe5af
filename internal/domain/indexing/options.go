package indexing

// IndexOptions tunes the HNSW vector field of a target index.
type IndexOptions struct {
	Dimensions  int
	M           int
	EFConstruct int
}
