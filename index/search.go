package index

import (
	"sort"
	"strings"
	"sync"
)

// Index is a simple inverted index for full-text search over node bodies.
// Each body line is one searchable unit.
type Index struct {
	mu sync.RWMutex
	// term → lines containing it
	terms map[string][]lineRef
	// node key → set of terms (for efficient removal on reindex)
	nodeTerms map[string]map[string]bool
}

type lineID struct {
	key  string
	line int
}

type lineRef struct {
	lineID
	text string
}

// Hit is a body line that matched a search query. Line is 1-based.
type Hit struct {
	Key  string `json:"id"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// New creates an empty index.
func New() *Index {
	return &Index{
		terms:     make(map[string][]lineRef),
		nodeTerms: make(map[string]map[string]bool),
	}
}

// Build replaces the index contents with bodies, keyed by node key.
func (ix *Index) Build(bodies map[string]string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.terms = make(map[string][]lineRef)
	ix.nodeTerms = make(map[string]map[string]bool)
	for key, body := range bodies {
		ix.addLocked(key, body)
	}
}

// Reindex replaces the indexed body of one node.
func (ix *Index) Reindex(key, body string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(key)
	ix.addLocked(key, body)
}

// Remove drops a node from the index.
func (ix *Index) Remove(key string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(key)
}

// Search finds lines containing every term of query (AND semantics),
// best matches first. Ties keep key and line order.
func (ix *Index) Search(query string, limit int) []Hit {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	terms := tokenize(query)
	if len(terms) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 20
	}

	// Start with the rarest term.
	rarest := terms[0]
	for _, t := range terms[1:] {
		if len(ix.terms[t]) < len(ix.terms[rarest]) {
			rarest = t
		}
	}
	candidates := ix.terms[rarest]
	if len(candidates) == 0 {
		return nil
	}

	others := make([]map[lineID]bool, 0, len(terms)-1)
	for _, t := range terms {
		if t == rarest {
			continue
		}
		set := make(map[lineID]bool, len(ix.terms[t]))
		for _, ref := range ix.terms[t] {
			set[ref.lineID] = true
		}
		others = append(others, set)
	}

	var hits []Hit
	for _, ref := range candidates {
		inAll := true
		for _, set := range others {
			if !set[ref.lineID] {
				inAll = false
				break
			}
		}
		if inAll {
			hits = append(hits, Hit{Key: ref.key, Line: ref.line, Text: ref.text})
		}
	}

	sortByRelevance(hits, terms)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Len reports the number of indexed nodes.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.nodeTerms)
}

// --- Internal ---

func (ix *Index) addLocked(key, body string) {
	seenNode := make(map[string]bool)
	for i, line := range strings.Split(body, "\n") {
		ref := lineRef{lineID: lineID{key: key, line: i + 1}, text: strings.TrimSpace(line)}
		seen := make(map[string]bool)
		for _, term := range tokenize(line) {
			if seen[term] {
				continue
			}
			seen[term] = true
			seenNode[term] = true
			ix.terms[term] = append(ix.terms[term], ref)
		}
	}
	ix.nodeTerms[key] = seenNode
}

func (ix *Index) removeLocked(key string) {
	terms, ok := ix.nodeTerms[key]
	if !ok {
		return
	}

	for term := range terms {
		refs := ix.terms[term]
		filtered := refs[:0]
		for _, ref := range refs {
			if ref.key != key {
				filtered = append(filtered, ref)
			}
		}
		if len(filtered) == 0 {
			delete(ix.terms, term)
		} else {
			ix.terms[term] = filtered
		}
	}

	delete(ix.nodeTerms, key)
}

// tokenize splits text into lowercase terms for indexing.
// Strips common markdown syntax and splits on whitespace + punctuation.
func tokenize(text string) []string {
	text = strings.NewReplacer(
		"[[", " ", "]]", " ",
		"#", " ", "**", " ", "__", " ", "`", " ",
	).Replace(text)
	text = strings.ToLower(text)

	// Split on non-word characters (Unicode-aware).
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordChar(r)
	})

	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, "-_")
		if len([]rune(w)) >= 2 { // skip single chars
			terms = append(terms, w)
		}
	}
	return terms
}

// isWordChar returns true for letters and digits (Unicode-aware).
func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r > 127
}

// sortByRelevance orders hits by term frequency, then key and line.
func sortByRelevance(hits []Hit, terms []string) {
	scores := make(map[lineID]int, len(hits))
	for _, h := range hits {
		scores[lineID{h.Key, h.Line}] = countTermHits(h.Text, terms)
	}
	sort.Slice(hits, func(i, j int) bool {
		si, sj := scores[lineID{hits[i].Key, hits[i].Line}], scores[lineID{hits[j].Key, hits[j].Line}]
		if si != sj {
			return si > sj
		}
		if hits[i].Key != hits[j].Key {
			return hits[i].Key < hits[j].Key
		}
		return hits[i].Line < hits[j].Line
	})
}

func countTermHits(text string, terms []string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, t := range terms {
		count += strings.Count(lower, t)
	}
	return count
}
