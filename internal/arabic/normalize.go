// Package arabic provides canonicalization and synonym expansion for Arabic
// query and corpus text.
package arabic

import "strings"

// Tashkeel (diacritic) range and the elongation character.
const (
	diacriticFirst = 'ً' // fathatan
	diacriticLast  = 'ْ' // sukun
	tatweel        = 'ـ' // ـ
)

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithTehMarbutaFolding controls whether teh marbuta (ة) is folded to heh (ه).
// Folding matches the analyzer used when the corpus was indexed; disable only
// for corpora indexed without it.
func WithTehMarbutaFolding(fold bool) Option {
	return func(n *Normalizer) { n.foldTehMarbuta = fold }
}

// Normalizer canonicalizes raw Arabic text. The zero value is not usable;
// construct with NewNormalizer.
type Normalizer struct {
	foldTehMarbuta bool
}

// NewNormalizer creates a Normalizer. Teh marbuta folding is on by default.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{foldTehMarbuta: true}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize canonicalizes raw text: strips tashkeel, drops tatweel runs,
// folds letter variants to a single form, and collapses whitespace.
// Diacritics are removed before tatweel so elongations interleaved with
// tashkeel collapse fully. Idempotent: Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		switch {
		case r >= diacriticFirst && r <= diacriticLast:
			// tashkeel
		case r == tatweel:
			// elongation
		default:
			b.WriteRune(n.foldRune(r))
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// foldRune maps letter variants to their canonical form. Non-Arabic runes
// become spaces so punctuation never reaches the term index, mirroring the
// corpus analyzer.
func (n *Normalizer) foldRune(r rune) rune {
	switch r {
	case 'أ', 'إ', 'آ', 'ٱ':
		return 'ا' // hamza/wasla alef variants -> bare alef
	case 'ى':
		return 'ي' // alef maqsura -> yeh
	case 'ة':
		if n.foldTehMarbuta {
			return 'ه'
		}
		return r
	}
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return ' '
	}
	if r < '؀' || r > 'ۿ' {
		return ' '
	}
	return r
}
