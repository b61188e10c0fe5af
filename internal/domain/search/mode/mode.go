package mode

// Mode is the retrieval strategy.
type Mode string

// Search mode constants.
const (
	// Basic is a literal lexical match on the raw text field.
	Basic Mode = "basic"
	// Enhanced is a lexical match over normalized text with synonym
	// expansion and fuzzy terms.
	Enhanced Mode = "enhanced"
	// Semantic is a dense-vector nearest-neighbor match; requires the
	// embedding model.
	Semantic Mode = "semantic"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Basic || m == Enhanced || m == Semantic
}
