package genre

// subjectAliases maps slugified catalog subjects to taxonomy genres.
// OPF subjects are often store categories ("Mystery, Thriller & Suspense")
// rather than prose, so keyword matching alone misses them.
var subjectAliases = map[string][]string{
	// Broad retail categories
	"literature-fiction":        {"Fiction"},
	"literature":                {"Fiction"},
	"science-fiction-fantasy":   {"Science Fiction", "Fantasy"},
	"sci-fi-fantasy":            {"Science Fiction", "Fantasy"},
	"mystery-thriller-suspense": {"Mystery", "Thriller"},
	"mystery-thriller":          {"Mystery", "Thriller"},
	"biographies-memoirs":       {"Biography", "Memoir"},
	"business-careers":          {"Business"},
	"money-finance":             {"Business"},
	"religion-spirituality":     {"Religion"},
	"politics-social-sciences":  {"Politics"},
	"comedy-humor":              {"Comedy"},
	"teens-young-adult":         {"Young Adult"},
	"children-s-books":          {"Children"},
	"childrens":                 {"Children"},
	"education-learning":        {"Educational"},

	// Science Fiction variations
	"sci-fi":  {"Science Fiction"},
	"scifi":   {"Science Fiction"},
	"sf":      {"Science Fiction"},
	"fantasy": {"Fantasy"},

	// Mystery/Thriller
	"suspense":   {"Thriller"},
	"whodunit":   {"Mystery"},
	"true-crime": {"Crime"},
	"noir":       {"Crime"},

	// Non-fiction variations
	"self-help":            {"Self-Help"},
	"selfhelp":             {"Self-Help"},
	"personal-development": {"Self-Help"},
	"memoirs":              {"Memoir"},
	"autobiographies":      {"Autobiography"},
	"essays":               {"Non-Fiction"},
	"popular-science":      {"Science"},
	"computers-technology": {"Technology"},

	// Young Adult variations
	"ya":   {"Young Adult"},
	"teen": {"Young Adult"},

	// Historical
	"historical":       {"Historical Fiction"},
	"historical-novel": {"Historical Fiction"},

	// Other common catalog forms
	"westerns":         {"Western"},
	"war-military":     {"War"},
	"action-adventure": {"Adventure"},
	"plays":            {"Drama"},
	"verse":            {"Poetry"},
}

// SubjectGenres resolves a raw subject string to taxonomy genres: first
// through the alias table, then by exact slug match against the taxonomy
// itself. Unknown subjects resolve to nil.
func SubjectGenres(raw string) []string {
	slug := Slugify(raw)
	if slug == "" {
		return nil
	}

	if genres, ok := subjectAliases[slug]; ok {
		return genres
	}

	for _, g := range Genres {
		if Slugify(g) == slug {
			return []string{g}
		}
	}
	return nil
}
