package activity

import "strings"

type keywordSet struct {
	id    string
	words []string
}

// keywords is scanned in order; the first activity with a matching word wins.
var keywords = []keywordSet{
	{"play", []string{"play", "playtime", "toys", "game"}},
	{"dinner", []string{"dinner", "supper", "evening meal"}},
	{"lunch", []string{"lunch", "midday meal"}},
	{"breakfast", []string{"breakfast", "morning meal"}},
	{"bath", []string{"bath", "bathing", "wash", "shower"}},
	{"story", []string{"story", "stories", "book", "reading time", "bedtime story"}},
	{"sleep", []string{"sleep", "bed", "bedtime", "night night", "goodnight"}},
	{"snack", []string{"snack", "treat", "fruit"}},
	{"tv", []string{"tv", "television", "screen", "movie", "show", "cartoon"}},
	{"teeth", []string{"teeth", "brush", "dental"}},
	{"dress", []string{"dress", "clothes", "getting dressed", "outfit"}},
	{"outside", []string{"outside", "outdoor", "garden", "park", "playground"}},
	{"quiet", []string{"quiet", "calm", "rest", "relax"}},
	{"music", []string{"music", "song", "singing", "dance"}},
	{"nap", []string{"nap", "rest", "quiet time"}},
	{"potty", []string{"potty", "toilet", "bathroom"}},
	{"clean", []string{"clean", "tidy", "cleanup"}},
	{"reading", []string{"read", "reading", "books"}},
}

// MatchFreeText maps free text such as a calendar event summary to an
// activity id. Matching is substring based and not best-match: "Bathroom
// break" resolves to bath because bath is declared before potty.
func MatchFreeText(text string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return "", false
	}
	if _, ok := catalog[s]; ok {
		return s, true
	}
	for _, set := range keywords {
		for _, w := range set.words {
			if strings.Contains(s, w) {
				return set.id, true
			}
		}
	}
	return "", false
}
