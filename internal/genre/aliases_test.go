package genre

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectGenres(t *testing.T) {
	tests := []struct {
		subject string
		want    []string
	}{
		{"Sci-Fi", []string{"Science Fiction"}},
		{"SF", []string{"Science Fiction"}},
		{"Science Fiction & Fantasy", []string{"Science Fiction", "Fantasy"}},
		{"Mystery, Thriller & Suspense", []string{"Mystery", "Thriller"}},
		{"Biographies & Memoirs", []string{"Biography", "Memoir"}},
		{"Self Help", []string{"Self-Help"}},
		{"YA", []string{"Young Adult"}},
		{"True Crime", []string{"Crime"}},
		// Exact taxonomy labels resolve to themselves.
		{"Historical Fiction", []string{"Historical Fiction"}},
		{"Horror", []string{"Horror"}},
		// Unknown subjects resolve to nothing.
		{"Award Winners", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.want, SubjectGenres(tt.subject))
		})
	}
}

func TestRuleSet_AliasedSubjectCounts(t *testing.T) {
	rs := newRuleSet("en")

	// "Sci-Fi" as a catalog subject carries no anchor keyword, but the
	// alias makes it an explicit subject hit.
	scores := rs.scores("Plain Title", "plain words here", []string{"Sci-Fi"})
	assert.Contains(t, scores, "Science Fiction")

	// The same phrasing buried in text is not a subject and stays subject
	// to the anchor rule.
	scores = rs.scores("Plain Title", "a story with no markers at all", nil)
	assert.NotContains(t, scores, "Science Fiction")
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Science Fiction", "science-fiction"},
		{"Mystery, Thriller & Suspense", "mystery-thriller-suspense"},
		{"Café Stories", "cafe-stories"},
		{"  Self--Help  ", "self-help"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}
