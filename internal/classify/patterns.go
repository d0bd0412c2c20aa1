package classify

import "regexp"

// Inclusion patterns for early-career detection. Matching is case-insensitive
// over title + description. The set covers English, German, French, Dutch,
// Spanish, Italian, Swedish, Danish, Polish, Czech, Portuguese and Greek.
var earlyCareerPatterns = []*regexp.Regexp{
	// English
	regexp.MustCompile(`(?i)\bgraduate\b`),
	regexp.MustCompile(`(?i)\bintern(ship)?s?\b`),
	regexp.MustCompile(`(?i)\bjunior\b`),
	regexp.MustCompile(`(?i)\btrainee\b`),
	regexp.MustCompile(`(?i)\bentry[ -]level\b`),
	regexp.MustCompile(`(?i)\bapprentice(ship)?\b`),
	regexp.MustCompile(`(?i)\bworking student\b`),
	regexp.MustCompile(`(?i)\bgrad (scheme|program(me)?)\b`),
	// German
	regexp.MustCompile(`(?i)\bpraktik(um|ant(in)?)\b`),
	regexp.MustCompile(`(?i)\bwerkstudent(in)?\b`),
	regexp.MustCompile(`(?i)\babsolvent(in)?\b`),
	regexp.MustCompile(`(?i)\bberufseinsteiger\b`),
	regexp.MustCompile(`(?i)\bausbildung\b`),
	// French
	regexp.MustCompile(`(?i)\bstagiaire\b`),
	regexp.MustCompile(`(?i)\bstage\b`),
	regexp.MustCompile(`(?i)\balternance\b`),
	regexp.MustCompile(`(?i)jeune dipl[oô]m[eé]`),
	regexp.MustCompile(`(?i)\bd[eé]butant\b`),
	// Dutch
	regexp.MustCompile(`(?i)\bstagiair(e)?\b`),
	regexp.MustCompile(`(?i)\btraineeship\b`),
	regexp.MustCompile(`(?i)\bafgestudeerde\b`),
	regexp.MustCompile(`(?i)\bstarterfunctie\b`),
	// Spanish
	regexp.MustCompile(`(?i)\bbecario\b`),
	regexp.MustCompile(`(?i)\bpr[aá]cticas\b`),
	regexp.MustCompile(`(?i)reci[eé]n (graduado|titulado)`),
	// Italian
	regexp.MustCompile(`(?i)\btirocin(io|ante)\b`),
	regexp.MustCompile(`(?i)\bstagista\b`),
	regexp.MustCompile(`(?i)\bneolaureat[oi]\b`),
	// Swedish
	regexp.MustCompile(`(?i)\bpraktikant\b`),
	regexp.MustCompile(`(?i)\bnyexaminerad\b`),
	regexp.MustCompile(`(?i)\btraineeprogram\b`),
	// Danish
	regexp.MustCompile(`(?i)\bnyuddannet\b`),
	regexp.MustCompile(`(?i)\belevplads\b`),
	// Polish
	regexp.MustCompile(`(?i)\bsta[żz]ysta\b`),
	regexp.MustCompile(`(?i)\bpraktykant\b`),
	regexp.MustCompile(`(?i)\babsolwent\b`),
	regexp.MustCompile(`(?i)\bm[łl]odszy\b`),
	// Czech
	regexp.MustCompile(`(?i)\bst[áa][žz]ista\b`),
	regexp.MustCompile(`(?i)čerstv[ýy] absolvent`),
	// Portuguese
	regexp.MustCompile(`(?i)\best[áa]gi(o|[áa]rio)\b`),
	regexp.MustCompile(`(?i)rec[eé]m[ -]formado`),
	// Greek
	regexp.MustCompile(`(?i)ασκούμεν`),
	regexp.MustCompile(`(?i)πρακτική άσκηση`),
}

// Graduate patterns are the subset used for the graduate/internship
// precedence decision.
var graduatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bgraduate\b`),
	regexp.MustCompile(`(?i)\bgrad (scheme|program(me)?)\b`),
	regexp.MustCompile(`(?i)\babsolvent(in)?\b`),
	regexp.MustCompile(`(?i)jeune dipl[oô]m[eé]`),
	regexp.MustCompile(`(?i)\bafgestudeerde\b`),
	regexp.MustCompile(`(?i)reci[eé]n (graduado|titulado)`),
	regexp.MustCompile(`(?i)\bneolaureat[oi]\b`),
	regexp.MustCompile(`(?i)\bnyexaminerad\b`),
	regexp.MustCompile(`(?i)\bnyuddannet\b`),
	regexp.MustCompile(`(?i)\babsolwent\b`),
	regexp.MustCompile(`(?i)rec[eé]m[ -]formado`),
}

var internshipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bintern(ship)?s?\b`),
	regexp.MustCompile(`(?i)\bpraktik(um|ant(in)?)\b`),
	regexp.MustCompile(`(?i)\bwerkstudent(in)?\b`),
	regexp.MustCompile(`(?i)\bstagiaire?\b`),
	regexp.MustCompile(`(?i)\bstage\b`),
	regexp.MustCompile(`(?i)\bstagiair(e)?\b`),
	regexp.MustCompile(`(?i)\bbecario\b`),
	regexp.MustCompile(`(?i)\bpr[aá]cticas\b`),
	regexp.MustCompile(`(?i)\btirocin(io|ante)\b`),
	regexp.MustCompile(`(?i)\bstagista\b`),
	regexp.MustCompile(`(?i)\bpraktikant\b`),
	regexp.MustCompile(`(?i)staż|\bstaz\b`),
	regexp.MustCompile(`(?i)\bpraktykant\b`),
	regexp.MustCompile(`(?i)\best[áa]gi(o|[áa]rio)\b`),
	regexp.MustCompile(`(?i)πρακτική`),
}

// Seniority exclusion: any match disqualifies a posting from early-career
// regardless of inclusion hits.
var seniorityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bsenior\b`),
	regexp.MustCompile(`(?i)\bsr\.? \w`),
	regexp.MustCompile(`(?i)\blead\b`),
	regexp.MustCompile(`(?i)\bprincipal\b`),
	regexp.MustCompile(`(?i)\bstaff engineer\b`),
	regexp.MustCompile(`(?i)\bdirector\b`),
	regexp.MustCompile(`(?i)\bchief\b`),
	regexp.MustCompile(`(?i)\bhead of\b`),
	regexp.MustCompile(`(?i)\bvp\b`),
	regexp.MustCompile(`(?i)\bvice president\b`),
	regexp.MustCompile(`(?i)\bexpert(e)?\b`),
	regexp.MustCompile(`(?i)\berfahren(e|er)?\b`),
	regexp.MustCompile(`(?i)\bexp[eé]riment[eé]\b`),
}

// Experience thresholds: explicit multi-year requirements (3+/5+/7+/10+),
// including the common localized "years" tokens.
var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(3|4|5|6|7|8|9|10|[1-9][0-9])\s*\+?\s*(years?|yrs?|jahren?|ans?|jaar|a[ñn]os?|anni|[åa]rs?|lat|let|anos?|χρόνια)\b`),
	regexp.MustCompile(`(?i)\bminimum (of )?(3|4|5|6|7|8|9|10)\b`),
	regexp.MustCompile(`(?i)\bat least (3|4|5|6|7|8|9|10) years\b`),
}

// Remote patterns reject postings whose location signal is not a concrete
// place. Substring matching on the lower-cased location union.
var remoteLocationTerms = []string{
	"remote",
	"work from home",
	"work-from-home",
	"anywhere",
	"worldwide",
	"fully distributed",
	"home-based",
	"home based",
	"telecommute",
}

// EU capital cities.
var euCapitals = []string{
	"amsterdam", "athens", "berlin", "bratislava", "brussels", "bucharest",
	"budapest", "copenhagen", "dublin", "helsinki", "lisbon", "ljubljana",
	"luxembourg", "madrid", "nicosia", "paris", "prague", "riga", "rome",
	"sofia", "stockholm", "tallinn", "valletta", "vienna", "vilnius",
	"warsaw", "zagreb",
}

// EU country names, English plus the common local forms seen in feeds.
var euCountries = []string{
	"austria", "belgium", "bulgaria", "croatia", "cyprus", "czech republic",
	"czechia", "denmark", "estonia", "finland", "france", "germany", "greece",
	"hungary", "ireland", "italy", "latvia", "lithuania", "luxembourg",
	"malta", "netherlands", "poland", "portugal", "romania", "slovakia",
	"slovenia", "spain", "sweden",
	"deutschland", "österreich", "españa", "italia", "polska",
	"nederland", "sverige", "danmark", "belgië", "belgique", "suomi",
	"éire", "ελλάδα", "česko",
}

// Other major EU business cities beyond the capitals.
var euBusinessCities = []string{
	"munich", "münchen", "frankfurt", "hamburg", "cologne", "köln",
	"düsseldorf", "dusseldorf", "stuttgart", "barcelona", "valencia",
	"seville", "milan", "milano", "turin", "torino", "bologna", "rotterdam",
	"eindhoven", "utrecht", "the hague", "antwerp", "ghent", "lyon",
	"toulouse", "marseille", "nantes", "gothenburg", "göteborg", "malmö",
	"malmo", "aarhus", "krakow", "kraków", "wroclaw", "wrocław", "gdansk",
	"gdańsk", "brno", "porto", "thessaloniki", "cork", "tampere",
}

var euRegionPhrases = []string{
	"europe", "european union", "eu-wide", "emea",
}

// Career-path keyword map. Order matters: first matching category wins.
var careerPathRules = []struct {
	Category string
	Keywords []string
}{
	{"tech", []string{"software", "developer", "engineer", "devops", "backend", "frontend", "full stack", "fullstack"}},
	{"data-analytics", []string{"data", "analyst", "analytics", "business intelligence", "machine learning"}},
	{"marketing", []string{"marketing", "brand", "digital", "content", "social media", "seo"}},
	{"finance", []string{"finance", "banking", "accounting", "audit", "treasury"}},
	{"strategy", []string{"business", "strategy", "consulting", "operations"}},
	{"product", []string{"design", "creative", "ux", "ui", "product"}},
}

// CategoryUnknown is assigned when no career-path keyword matches.
const CategoryUnknown = "unknown"

// languageMarkers maps free-text markers of a non-English language
// requirement to the language they demand.
var languageMarkers = []struct {
	Marker   string
	Language string
}{
	{"german required", "German"},
	{"fluent german", "German"},
	{"deutschkenntnisse", "German"},
	{"fließend deutsch", "German"},
	{"french required", "French"},
	{"fluent french", "French"},
	{"français courant", "French"},
	{"maîtrise du français", "French"},
	{"dutch required", "Dutch"},
	{"fluent dutch", "Dutch"},
	{"nederlands vereist", "Dutch"},
	{"spanish required", "Spanish"},
	{"fluent spanish", "Spanish"},
	{"dominio del español", "Spanish"},
	{"italian required", "Italian"},
	{"fluent italian", "Italian"},
	{"ottima conoscenza dell'italiano", "Italian"},
	{"swedish required", "Swedish"},
	{"flytande svenska", "Swedish"},
	{"danish required", "Danish"},
	{"flydende dansk", "Danish"},
	{"polish required", "Polish"},
	{"język polski", "Polish"},
	{"czech required", "Czech"},
	{"portuguese required", "Portuguese"},
	{"fluente em português", "Portuguese"},
	{"greek required", "Greek"},
}
