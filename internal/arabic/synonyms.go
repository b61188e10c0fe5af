package arabic

// dictionary is the built-in domain synonym table for the lecture corpus.
// Entries are one-directional: the key expands to its alternatives, never the
// reverse. Order inside an entry is meaningful and preserved by Expand.
var dictionary = []struct {
	term string
	syns []string
}{
	{"صلاة", []string{"صلوات", "صلاه", "الصلاة", "فريضة"}},
	{"سفر", []string{"سفار", "رحلة", "سفره", "مسافر"}},
	{"حج", []string{"حجة", "حجج", "الحج", "حاج"}},
	{"صوم", []string{"صيام", "صائم", "الصوم", "رمضان"}},
	{"زكاة", []string{"زكوات", "الزكاة", "صدقة"}},
	{"وضوء", []string{"طهارة", "تطهر", "الوضوء"}},
	{"قرآن", []string{"القرآن", "كتاب الله", "المصحف"}},
	{"سنة", []string{"سنن", "حديث", "نبوي"}},
	{"دعاء", []string{"أدعية", "ذكر", "دعوة"}},
	{"جنازة", []string{"موت", "وفاة", "دفن"}},
	{"نكاح", []string{"زواج", "عقد", "خطبة"}},
	{"طلاق", []string{"فسخ", "انفصال", "خلع"}},
	{"بيع", []string{"شراء", "تجارة", "معاملة"}},
	{"ربا", []string{"فائدة", "ريبة", "حرام"}},
	{"جهاد", []string{"قتال", "غزو", "مجاهد"}},
	{"علم", []string{"تعلم", "فقه", "معرفة"}},
	{"ذنب", []string{"معصية", "خطأ", "إثم"}},
	{"توبة", []string{"استغفار", "ندم", "رجوع"}},
	{"جنة", []string{"فردوس", "نعيم", "خلود"}},
	{"نار", []string{"عذاب", "جهنم", "عقاب"}},
}

// SynonymSet maps canonical terms to their surface-form alternatives.
// Built once at startup and read-only afterwards; safe for concurrent use.
type SynonymSet struct {
	entries map[string][]string
}

// NewSynonymSet builds the set from the built-in dictionary, passing every key
// and alternative through the given Normalizer so lookups operate on the same
// canonical forms as normalized queries.
func NewSynonymSet(n *Normalizer) *SynonymSet {
	entries := make(map[string][]string, len(dictionary))
	for _, e := range dictionary {
		key := n.Normalize(e.term)
		if key == "" {
			continue
		}
		syns := make([]string, 0, len(e.syns))
		seen := map[string]bool{key: true}
		for _, s := range e.syns {
			canon := n.Normalize(s)
			if canon == "" || seen[canon] {
				continue
			}
			seen[canon] = true
			syns = append(syns, canon)
		}
		entries[key] = syns
	}
	return &SynonymSet{entries: entries}
}

// Lookup returns the direct alternatives of a canonical term, or nil.
// The returned slice must not be modified.
func (s *SynonymSet) Lookup(term string) []string {
	return s.entries[term]
}

// Len returns the number of canonical terms in the set.
func (s *SynonymSet) Len() int { return len(s.entries) }

// Alternatives returns only the one-hop synonyms of the given terms, in
// dictionary-entry order, deduplicated, with the original terms excluded.
// The search ranking boosts synonyms separately from the query terms, so the
// originals must not leak into the synonym list.
func (s *SynonymSet) Alternatives(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		seen[t] = true
	}

	var out []string
	for _, t := range terms {
		for _, syn := range s.entries[t] {
			if seen[syn] {
				continue
			}
			seen[syn] = true
			out = append(out, syn)
		}
	}

	return out
}

// Expand returns terms unioned with every alternative reachable in one hop:
// the original terms first, then discovered alternatives in dictionary-entry
// order, deduplicated. Terms without an entry pass through unchanged.
// Expansion is deliberately non-recursive to bound result size.
func (s *SynonymSet) Expand(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))

	for _, t := range terms {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}

	for _, t := range terms {
		for _, syn := range s.entries[t] {
			if seen[syn] {
				continue
			}
			seen[syn] = true
			out = append(out, syn)
		}
	}

	return out
}
