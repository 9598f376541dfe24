package correlation

import (
	"math"
	"sort"
	"strings"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/domain/correlation"
)

// semanticMatches vectorizes the alert and all candidates together with
// TF-IDF over unigrams and bigrams, then keeps candidates whose cosine
// similarity to the alert clears the semantic threshold.
func (e *Engine) semanticMatches(a *alert.Alert, candidates []*alert.Alert) []match {
	if len(candidates) == 0 {
		return nil
	}

	docs := make([][]string, 0, len(candidates)+1)
	docs = append(docs, ngrams(alertText(a)))
	for _, c := range candidates {
		docs = append(docs, ngrams(alertText(c)))
	}

	vectors := tfidfVectors(docs)

	var out []match
	for i, c := range candidates {
		sim := cosine(vectors[0], vectors[i+1])
		if sim > e.cfg.SemanticThreshold {
			out = append(out, match{
				alertID:    c.ID,
				corrType:   correlation.TypeSemantic,
				confidence: sim,
			})
		}
	}
	return out
}

// alertText concatenates the text content of an alert: title, description
// and annotation values in stable order.
func alertText(a *alert.Alert) string {
	parts := []string{a.Title, a.Description}

	keys := make([]string, 0, len(a.Annotations))
	for k := range a.Annotations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, a.Annotations[k])
	}

	return strings.Join(parts, " ")
}

// ngrams produces the unigram plus bigram term list of a document with stop
// words removed.
func ngrams(text string) []string {
	tokens := contentTokens(text)
	terms := make([]string, 0, 2*len(tokens))
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// tfidfVectors builds one sparse TF-IDF vector per document
func tfidfVectors(docs [][]string) []map[string]float64 {
	n := float64(len(docs))

	// Document frequency per term
	df := make(map[string]float64)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}

	vectors := make([]map[string]float64, len(docs))
	for i, doc := range docs {
		vec := make(map[string]float64)
		if len(doc) == 0 {
			vectors[i] = vec
			continue
		}

		tf := make(map[string]float64, len(doc))
		for _, term := range doc {
			tf[term]++
		}
		for term, count := range tf {
			idf := math.Log(n/(1.0+df[term])) + 1.0
			vec[term] = (count / float64(len(doc))) * idf
		}
		vectors[i] = vec
	}
	return vectors
}

// cosine computes the cosine similarity of two sparse vectors
func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for term, va := range a {
		normA += va * va
		if vb, ok := b[term]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
