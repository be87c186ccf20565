package textutil

import "strings"

const (
	winklerPrefixScale = 0.1
	winklerPrefixMax   = 4
)

// Similarity scores how closely two normalized titles match, in [0, 1].
// It computes Jaro-Winkler and token-set Jaccard similarity and returns
// whichever is higher: edit distance handles spelling noise, token overlap
// handles word reordering and subtitle differences that edit distance
// penalizes unfairly. Taking the max favors recall.
func Similarity(a, b string) float64 {
	jw := JaroWinkler(a, b)
	if jac := TokenJaccard(a, b); jac > jw {
		return jac
	}
	return jw
}

// JaroWinkler computes Jaro similarity with the standard Winkler prefix
// bonus (scale 0.1, prefix capped at 4 characters).
func JaroWinkler(a, b string) float64 {
	sim := jaro(a, b)
	if sim == 0 || sim == 1 {
		return sim
	}
	ra, rb := []rune(a), []rune(b)
	prefix := 0
	for prefix < len(ra) && prefix < len(rb) && prefix < winklerPrefixMax && ra[prefix] == rb[prefix] {
		prefix++
	}
	sim += float64(prefix) * winklerPrefixScale * (1 - sim)
	if sim > 1 {
		sim = 1
	}
	return sim
}

func jaro(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 && lb == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}

	window := la
	if lb > window {
		window = lb
	}
	window = window/2 - 1
	if window < 0 {
		window = 0
	}

	matchedA := make([]bool, la)
	matchedB := make([]bool, lb)
	matches := 0
	for i := range ra {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > lb {
			hi = lb
		}
		for j := lo; j < hi; j++ {
			if matchedB[j] || rb[j] != ra[i] {
				continue
			}
			matchedA[i] = true
			matchedB[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	j := 0
	for i := range ra {
		if !matchedA[i] {
			continue
		}
		for !matchedB[j] {
			j++
		}
		if ra[i] != rb[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	return (m/float64(la) + m/float64(lb) + (m-float64(transpositions)/2)/m) / 3
}

// TokenJaccard computes set overlap between whitespace-split tokens:
// |intersection| / |union|. Two empty token sets score 0, not NaN, so the
// max in Similarity stays well-formed.
func TokenJaccard(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 0
	}
	intersection := 0
	for token := range ta {
		if _, ok := tb[token]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}
