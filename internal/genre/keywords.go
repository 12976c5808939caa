package genre

// Genres is the closed classification taxonomy. Every distribution the
// classifier emits is over exactly this set.
var Genres = []string{
	"Fiction", "Non-Fiction", "Science Fiction", "Fantasy", "Mystery",
	"Romance", "Thriller", "Horror", "Historical Fiction", "Biography",
	"Autobiography", "Memoir", "Self-Help", "Business", "Philosophy",
	"Religion", "Science", "Technology", "History", "Politics",
	"Poetry", "Drama", "Comedy", "Adventure", "Crime", "War",
	"Western", "Young Adult", "Children", "Educational", "Reference",
}

// Unknown is reported when no genre scores above zero.
const Unknown = "Unknown"

var englishKeywords = map[string][]string{
	"Fiction": {
		"novel", "story", "tale", "narrative", "protagonist", "fiction",
	},
	"Non-Fiction": {
		"non-fiction", "nonfiction", "essay", "true story", "analysis",
		"study", "research", "report", "account",
	},
	"Science Fiction": {
		"science fiction", "sci-fi", "spaceship", "starship", "galaxy",
		"alien", "robot", "android", "cyborg", "space station", "time travel",
		"dystopia", "terraform", "interstellar", "hyperspace", "colony ship",
		"warp", "antimatter",
	},
	"Fantasy": {
		"fantasy", "magic", "wizard", "sorcerer", "witch", "dragon", "elf",
		"dwarf", "orc", "troll", "unicorn", "fairy", "kingdom", "quest",
		"enchanted", "spell", "prophecy", "sword and sorcery", "artifact",
	},
	"Mystery": {
		"mystery", "detective", "clue", "investigation", "whodunit",
		"sleuth", "suspect", "alibi", "inspector", "private investigator",
	},
	"Romance": {
		"romance", "love story", "passion", "beloved", "courtship",
		"heartbreak", "wedding", "sweetheart", "love affair",
	},
	"Thriller": {
		"thriller", "suspense", "conspiracy", "assassin", "espionage",
		"hostage", "manhunt", "chase", "double agent",
	},
	"Horror": {
		"horror", "ghost", "haunted", "vampire", "zombie", "demon",
		"nightmare", "terror", "occult", "possession", "macabre",
	},
	"Historical Fiction": {
		"historical fiction", "historical novel", "regency", "victorian era",
		"medieval", "ancient rome", "world war", "renaissance",
	},
	"Biography": {
		"biography", "life of", "biographical", "the life and times",
	},
	"Autobiography": {
		"autobiography", "my life", "my own story", "autobiographical",
	},
	"Memoir": {
		"memoir", "memoirs", "recollections", "reminiscences",
	},
	"Self-Help": {
		"self-help", "self improvement", "personal development", "habits",
		"motivation", "mindfulness", "productivity", "success",
	},
	"Business": {
		"business", "management", "entrepreneur", "startup", "marketing",
		"leadership", "investing", "economics", "finance", "strategy",
	},
	"Philosophy": {
		"philosophy", "metaphysics", "ethics", "epistemology", "stoicism",
		"existentialism", "philosopher", "dialectic", "phenomenology",
	},
	"Religion": {
		"religion", "theology", "scripture", "faith", "prayer", "bible",
		"quran", "torah", "buddhism", "spirituality", "church", "gospel",
	},
	"Science": {
		"science", "physics", "chemistry", "biology", "evolution",
		"quantum", "astronomy", "genetics", "experiment", "scientific",
	},
	"Technology": {
		"technology", "computer", "software", "programming", "internet",
		"artificial intelligence", "engineering", "digital", "algorithm",
	},
	"History": {
		"history", "historical", "ancient", "empire", "civilization",
		"archaeology", "dynasty", "revolution", "chronicle",
	},
	"Politics": {
		"politics", "political", "government", "democracy", "election",
		"policy", "parliament", "diplomacy", "ideology",
	},
	"Poetry": {
		"poetry", "poems", "verse", "sonnet", "haiku", "stanza", "anthology",
	},
	"Drama": {
		"drama", "play", "tragedy", "theatre", "theater", "playwright",
		"act one", "dramatis personae",
	},
	"Comedy": {
		"comedy", "humor", "humour", "satire", "comic", "parody", "farce",
	},
	"Adventure": {
		"adventure", "expedition", "journey", "treasure", "explorer",
		"survival", "voyage", "wilderness", "shipwreck",
	},
	"Crime": {
		"crime", "criminal", "murder", "heist", "gangster", "mafia",
		"homicide", "forensic", "underworld",
	},
	"War": {
		"war", "battle", "soldier", "regiment", "battlefield", "trench",
		"military", "invasion", "siege", "warfare",
	},
	"Western": {
		"western", "cowboy", "frontier", "ranch", "outlaw", "sheriff",
		"gunslinger", "saloon", "wild west",
	},
	"Young Adult": {
		"young adult", "teen", "teenager", "coming of age", "high school",
	},
	"Children": {
		"children", "picture book", "bedtime story", "nursery", "fable",
		"for kids", "read aloud",
	},
	"Educational": {
		"educational", "textbook", "curriculum", "lesson", "workbook",
		"exercises", "learning", "study guide",
	},
	"Reference": {
		"reference", "encyclopedia", "dictionary", "handbook", "manual",
		"glossary", "almanac", "compendium",
	},
}

// frenchKeywords covers the genres that commonly appear in French library
// metadata. Genres without an entry simply never match for French books.
var frenchKeywords = map[string][]string{
	"Fiction": {
		"roman", "récit", "histoire", "conte", "nouvelle",
	},
	"Science Fiction": {
		"science-fiction", "sf", "espace", "vaisseau", "planète",
		"astronaute", "robot", "cyborg", "androïde", "hyperespace",
		"interstellaire", "extraterrestre", "space opera", "antimatière",
	},
	"Fantasy": {
		"fantasy", "fantastique", "magie", "sorcier", "sorcière", "mage",
		"dragon", "elfe", "orc", "troll", "licorne", "fée", "royaume",
		"enchanteur", "sort", "incantation", "artefact",
	},
	"Mystery": {
		"mystère", "détective", "enquête", "policier", "indice",
		"inspecteur", "suspect",
	},
	"Romance": {
		"romance", "amour", "passion", "histoire d'amour", "coeur",
	},
	"Thriller": {
		"thriller", "suspense", "complot", "espionnage", "assassin",
	},
	"Horror": {
		"horreur", "épouvante", "fantôme", "vampire", "démon", "hanté",
	},
	"Biography": {
		"biographie", "vie de",
	},
	"Philosophy": {
		"philosophie", "éthique", "métaphysique", "philosophe",
	},
	"History": {
		"histoire", "historique", "empire", "civilisation", "révolution",
	},
	"Poetry": {
		"poésie", "poèmes", "vers", "sonnet",
	},
	"War": {
		"guerre", "bataille", "soldat", "militaire", "armée",
	},
	"Children": {
		"jeunesse", "enfants", "conte pour enfants",
	},
}

// anchorKeywords harden genres that generic vocabulary over-triggers: the
// genre is only considered at all when at least one anchor term appears.
// Both languages' anchors are merged since detection may be imperfect.
var anchorKeywords = map[string][]string{
	"Science Fiction": {
		"science fiction", "science-fiction", "sci-fi", "sf", "spaceship",
		"starship", "alien", "robot", "android", "cyborg", "interstellar",
		"hyperspace", "space opera", "warp", "antimatter", "espace",
		"vaisseau", "planète", "astronaute", "hyperespace", "interstellaire",
		"extraterrestre", "antimatière",
	},
	"Fantasy": {
		"fantasy", "magic", "wizard", "sorcerer", "witch", "dragon", "elf",
		"orc", "troll", "unicorn", "fairy", "enchanted", "spell",
		"magie", "sorcier", "sorcière", "mage", "elfe", "licorne", "fée",
		"enchanteur", "incantation", "artefact",
	},
}

// keywordsFor returns the lexicon for a supported language code.
func keywordsFor(language string) map[string][]string {
	if language == "fr" {
		return frenchKeywords
	}
	return englishKeywords
}
