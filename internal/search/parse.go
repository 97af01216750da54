package search

import (
	"context"
	"strings"

	"pagesmith/internal/types"
)

// KeywordParser is a deterministic query parser. It recognizes three token
// forms:
//
//	term        plain keyword, or a concept when the term is in the lexicon
//	attr:value  attribute filter
//	-token      excluded form of either of the above
//
// Multi-word lexicon entries are matched greedily (longest phrase first)
// before single tokens are considered.
type KeywordParser struct {
	lexicon map[string]types.Facet
	// longest phrase length in the lexicon, in tokens
	maxPhrase int
}

// NewKeywordParser builds a parser over a concept lexicon keyed by
// lower-cased phrase.
func NewKeywordParser(lexicon map[string]types.Facet) *KeywordParser {
	p := &KeywordParser{lexicon: make(map[string]types.Facet, len(lexicon)), maxPhrase: 1}
	for phrase, facet := range lexicon {
		norm := strings.ToLower(strings.TrimSpace(phrase))
		if norm == "" {
			continue
		}
		p.lexicon[norm] = facet
		if n := len(strings.Fields(norm)); n > p.maxPhrase {
			p.maxPhrase = n
		}
	}
	return p
}

// Parse decomposes query into facets. Never fails; an empty query yields an
// empty ParsedQuery.
func (p *KeywordParser) Parse(_ context.Context, query string) (*ParsedQuery, error) {
	out := &ParsedQuery{
		Concepts:        []types.Facet{},
		IncludedFilters: []types.Facet{},
		ExcludedFilters: []types.Facet{},
	}

	tokens := strings.Fields(query)
	var keywords, excluded []string

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		negated := strings.HasPrefix(tok, "-") && len(tok) > 1
		if negated {
			tok = tok[1:]
		}

		if attr, value, ok := strings.Cut(tok, ":"); ok && attr != "" && value != "" {
			facet := types.Facet{
				Value: strings.ToLower(attr) + ":" + strings.ToLower(value),
				Label: titleCase(value),
			}
			if negated {
				out.ExcludedFilters = append(out.ExcludedFilters, facet)
			} else {
				out.IncludedFilters = append(out.IncludedFilters, facet)
			}
			continue
		}

		if negated {
			excluded = append(excluded, strings.ToLower(tok))
			continue
		}

		// Greedy phrase match against the lexicon.
		if facet, consumed := p.matchConcept(tokens[i:]); consumed > 0 {
			out.Concepts = append(out.Concepts, facet)
			i += consumed - 1
			continue
		}

		keywords = append(keywords, strings.ToLower(tok))
	}

	out.Keywords = strings.Join(keywords, " ")
	out.ExcludedKeywords = strings.Join(excluded, " ")
	return out, nil
}

// matchConcept tries the longest lexicon phrase starting at tokens[0].
// Returns the facet and how many tokens were consumed (0 when no match).
func (p *KeywordParser) matchConcept(tokens []string) (types.Facet, int) {
	limit := p.maxPhrase
	if limit > len(tokens) {
		limit = len(tokens)
	}
	for n := limit; n >= 1; n-- {
		phrase := strings.ToLower(strings.Join(tokens[:n], " "))
		if facet, ok := p.lexicon[phrase]; ok {
			return facet, n
		}
	}
	return types.Facet{}, 0
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
