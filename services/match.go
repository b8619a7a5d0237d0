package services

import (
	"context"
	"strings"

	"rpp_scraper/models"
)

// AddressIndex is the slice of the store the matcher needs.
type AddressIndex interface {
	QueryMostSimilar(ctx context.Context, address string) (*models.MatchCandidate, error)
	ListAddresses(ctx context.Context) ([]models.MatchCandidate, error)
}

// MatchService scores address similarity and finds stored properties
// that can be reused instead of scraping again.
type MatchService struct {
	index               AddressIndex
	reuseThreshold      float64
	suggestionThreshold float64
}

// NewMatchService creates a new MatchService
func NewMatchService(index AddressIndex, reuseThreshold, suggestionThreshold float64) *MatchService {
	return &MatchService{
		index:               index,
		reuseThreshold:      reuseThreshold,
		suggestionThreshold: suggestionThreshold,
	}
}

func (s *MatchService) ReuseThreshold() float64      { return s.reuseThreshold }
func (s *MatchService) SuggestionThreshold() float64 { return s.suggestionThreshold }

// NormalizeAddress lowercases, collapses internal whitespace and trims
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

// Similarity returns a ratio in [0, 1] between two addresses after
// normalization. Identical inputs score 1.0; empty inputs score 0.0.
func Similarity(a, b string) float64 {
	na := NormalizeAddress(a)
	nb := NormalizeAddress(b)
	if na == "" || nb == "" {
		return 0
	}
	return ratio(na, nb)
}

// ratio is the Ratcliff/Obershelp similarity: twice the total length of
// matching blocks divided by the combined length of both strings.
func ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	matches := matchingBlocks(a, b)
	return 2.0 * float64(matches) / float64(total)
}

// matchingBlocks sums the lengths of all matching blocks by recursively
// splitting around the longest common substring.
func matchingBlocks(a, b string) int {
	la, lb, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	matched := size
	matched += matchingBlocks(a[:la], b[:lb])
	matched += matchingBlocks(a[la+size:], b[lb+size:])
	return matched
}

// longestMatch finds the longest common substring between a and b,
// preferring the earliest occurrence in a, then in b.
func longestMatch(a, b string) (bestA, bestB, bestSize int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// lengths[j] holds the run length ending at a[i-1], b[j-1]
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestA = i - bestSize
					bestB = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return bestA, bestB, bestSize
}

// FindBestMatch scores every candidate against the query address and
// returns the highest scorer, preferring the earlier candidate on ties.
func FindBestMatch(address string, candidates []models.MatchCandidate) (*models.MatchCandidate, float64) {
	var best *models.MatchCandidate
	bestScore := -1.0

	for i := range candidates {
		score := Similarity(address, candidates[i].Address)
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}

	if best == nil {
		return nil, 0
	}
	best.Similarity = bestScore
	return best, bestScore
}

// FindStoredMatch looks for an already-scraped property close enough to
// the requested address to reuse. It asks the store for its most similar
// row first, then falls back to scoring all stored addresses in process.
func (s *MatchService) FindStoredMatch(ctx context.Context, address string) (*models.MatchCandidate, error) {
	if strings.TrimSpace(address) == "" {
		return nil, nil
	}

	candidate, err := s.index.QueryMostSimilar(ctx, NormalizeAddress(address))
	if err == nil && candidate != nil {
		// Re-score with the sequence ratio so cache hits use the same
		// threshold semantics as suggestion matching.
		candidate.Similarity = Similarity(address, candidate.Address)
		if candidate.Similarity >= s.reuseThreshold {
			return candidate, nil
		}
		return nil, nil
	}

	candidates, err := s.index.ListAddresses(ctx)
	if err != nil {
		return nil, err
	}

	best, score := FindBestMatch(address, candidates)
	if best == nil || score < s.reuseThreshold {
		return nil, nil
	}
	return best, nil
}

// TopSuggestion scores the first portal suggestion against the query
// address. Only the top suggestion counts: a close match further down the
// list means the typed address resolved to the wrong property, so ok is
// false whenever the first entry falls below the suggestion threshold.
func (s *MatchService) TopSuggestion(address string, suggestions []string) (index int, score float64, ok bool) {
	if len(suggestions) == 0 {
		return -1, 0, false
	}
	score = Similarity(address, suggestions[0])
	return 0, score, score >= s.suggestionThreshold
}
