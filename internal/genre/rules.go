package genre

import (
	"regexp"
	"strings"
)

// Field weights for presence-based scoring. A hit counts at most once per
// field so genres with long keyword lists gain no advantage.
const (
	titleWeight   = 2.0
	textWeight    = 1.0
	subjectWeight = 0.75

	// A subjects-only match is usually generic catalog metadata; it is
	// downscaled so it cannot claim a genre on its own.
	subjectOnlyFactor = 0.6
)

// ruleSet holds the compiled word-boundary matchers for one language.
type ruleSet struct {
	genres  map[string]*regexp.Regexp
	anchors map[string]*regexp.Regexp
}

func compileKeywords(keywords []string) *regexp.Regexp {
	escaped := make([]string, len(keywords))
	for i, k := range keywords {
		escaped[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(escaped, "|") + `)\b`)
}

func newRuleSet(language string) *ruleSet {
	rs := &ruleSet{
		genres:  make(map[string]*regexp.Regexp),
		anchors: make(map[string]*regexp.Regexp),
	}
	for g, keywords := range keywordsFor(language) {
		if len(keywords) > 0 {
			rs.genres[g] = compileKeywords(keywords)
		}
	}
	for g, keywords := range anchorKeywords {
		rs.anchors[g] = compileKeywords(keywords)
	}
	return rs
}

// scores produces the rule-stage distribution: per-genre presence scores
// normalized into [0,1], unmatched genres absent.
func (rs *ruleSet) scores(title, text string, subjects []string) map[string]float64 {
	out := make(map[string]float64)
	maxPossible := titleWeight + textWeight + subjectWeight

	// Subjects that alias to a taxonomy genre count as subject hits even
	// when the keyword matchers miss their phrasing.
	aliased := make(map[string]bool)
	for _, s := range subjects {
		for _, g := range SubjectGenres(s) {
			aliased[g] = true
		}
	}

	for g, re := range rs.genres {
		titleHit := re.MatchString(title)
		textHit := re.MatchString(text)
		subjectsHit := matchAny(re, subjects) || aliased[g]

		if !titleHit && !textHit && !subjectsHit {
			continue
		}

		// Anchored genres need a discriminative term somewhere before
		// generic keywords are allowed to count. An aliased subject is
		// explicit catalog intent and satisfies the anchor.
		if anchor, ok := rs.anchors[g]; ok && !aliased[g] {
			if !anchor.MatchString(title) && !anchor.MatchString(text) && !matchAny(anchor, subjects) {
				continue
			}
		}

		score := 0.0
		if titleHit {
			score += titleWeight
		}
		if textHit {
			score += textWeight
		}
		if subjectsHit {
			score += subjectWeight
		}
		if subjectsHit && !titleHit && !textHit {
			score *= subjectOnlyFactor
		}

		if score > maxPossible {
			score = maxPossible
		}
		out[g] = score / maxPossible
	}

	return out
}

func matchAny(re *regexp.Regexp, values []string) bool {
	for _, v := range values {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}
