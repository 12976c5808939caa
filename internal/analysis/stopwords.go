package analysis

import "strings"

var englishStopwords = toSet(`a about above after again against all am an and any are as at be
because been before being below between both but by could did do does doing down during each
few for from further had has have having he her here hers herself him himself his how i if in
into is it its itself just me more most my myself no nor not now of off on once only or other
our ours ourselves out over own same she should so some such than that the their theirs them
themselves then there these they this those through to too under until up very was we were what
when where which while who whom why will with you your yours yourself yourselves`)

var frenchStopwords = toSet(`au aux avec ce ces dans de des du elle en et eux il ils je la le
les leur lui ma mais me même mes moi mon ne nos notre nous on ou par pas pour qu que qui sa se
ses son sur ta te tes toi ton tu un une vos votre vous c d j l à m n s t y été étée étées étés
étant suis es est sommes êtes sont serai seras sera serons serez seront serais serait serions
seriez seraient étais était étions étiez étaient fus fut fûmes fûtes furent sois soit soyons
soyez soient fusse fusses fût fussions fussiez fussent ayant eu eue eues eus ai as avons avez
ont aurai auras aura aurons aurez auront aurais aurait aurions auriez auraient avais avait
avions aviez avaient eut eûmes eûtes eurent aie aies ait ayons ayez aient eusse eusses eût
eussions eussiez eussent`)

func toSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

// Stopwords returns the stopword set for a supported language code.
// Unsupported codes fall back to English.
func Stopwords(language string) map[string]bool {
	if language == "fr" {
		return frenchStopwords
	}
	return englishStopwords
}
