package location

import "strings"

// Curated city index. Keys are lowercase; lookup prefers the longest match so
// "mexico city" beats "mexico". This is static configuration data, kept small
// on purpose: the LLM tier covers the long tail.
type cityInfo struct {
	City    string
	Country string
}

var knownCities = map[string]cityInfo{
	"london":         {"London", "United Kingdom"},
	"paris":          {"Paris", "France"},
	"berlin":         {"Berlin", "Germany"},
	"madrid":         {"Madrid", "Spain"},
	"barcelona":      {"Barcelona", "Spain"},
	"rome":           {"Rome", "Italy"},
	"milan":          {"Milan", "Italy"},
	"amsterdam":      {"Amsterdam", "Netherlands"},
	"brussels":       {"Brussels", "Belgium"},
	"vienna":         {"Vienna", "Austria"},
	"zurich":         {"Zurich", "Switzerland"},
	"geneva":         {"Geneva", "Switzerland"},
	"lisbon":         {"Lisbon", "Portugal"},
	"dublin":         {"Dublin", "Ireland"},
	"stockholm":      {"Stockholm", "Sweden"},
	"oslo":           {"Oslo", "Norway"},
	"copenhagen":     {"Copenhagen", "Denmark"},
	"helsinki":       {"Helsinki", "Finland"},
	"warsaw":         {"Warsaw", "Poland"},
	"prague":         {"Prague", "Czech Republic"},
	"budapest":       {"Budapest", "Hungary"},
	"athens":         {"Athens", "Greece"},
	"istanbul":       {"Istanbul", "Turkey"},
	"ankara":         {"Ankara", "Turkey"},
	"kyiv":           {"Kyiv", "Ukraine"},
	"moscow":         {"Moscow", "Russia"},
	"new york":       {"New York", "United States"},
	"washington":     {"Washington", "United States"},
	"los angeles":    {"Los Angeles", "United States"},
	"chicago":        {"Chicago", "United States"},
	"san francisco":  {"San Francisco", "United States"},
	"miami":          {"Miami", "United States"},
	"toronto":        {"Toronto", "Canada"},
	"vancouver":      {"Vancouver", "Canada"},
	"ottawa":         {"Ottawa", "Canada"},
	"mexico city":    {"Mexico City", "Mexico"},
	"bogota":         {"Bogota", "Colombia"},
	"lima":           {"Lima", "Peru"},
	"santiago":       {"Santiago", "Chile"},
	"buenos aires":   {"Buenos Aires", "Argentina"},
	"sao paulo":      {"Sao Paulo", "Brazil"},
	"rio de janeiro": {"Rio de Janeiro", "Brazil"},
	"brasilia":       {"Brasilia", "Brazil"},
	"cairo":          {"Cairo", "Egypt"},
	"lagos":          {"Lagos", "Nigeria"},
	"abuja":          {"Abuja", "Nigeria"},
	"nairobi":        {"Nairobi", "Kenya"},
	"johannesburg":   {"Johannesburg", "South Africa"},
	"cape town":      {"Cape Town", "South Africa"},
	"addis ababa":    {"Addis Ababa", "Ethiopia"},
	"khartoum":       {"Khartoum", "Sudan"},
	"tunis":          {"Tunis", "Tunisia"},
	"algiers":        {"Algiers", "Algeria"},
	"casablanca":     {"Casablanca", "Morocco"},
	"tel aviv":       {"Tel Aviv", "Israel"},
	"jerusalem":      {"Jerusalem", "Israel"},
	"beirut":         {"Beirut", "Lebanon"},
	"damascus":       {"Damascus", "Syria"},
	"baghdad":        {"Baghdad", "Iraq"},
	"tehran":         {"Tehran", "Iran"},
	"riyadh":         {"Riyadh", "Saudi Arabia"},
	"dubai":          {"Dubai", "United Arab Emirates"},
	"abu dhabi":      {"Abu Dhabi", "United Arab Emirates"},
	"doha":           {"Doha", "Qatar"},
	"kabul":          {"Kabul", "Afghanistan"},
	"islamabad":      {"Islamabad", "Pakistan"},
	"karachi":        {"Karachi", "Pakistan"},
	"new delhi":      {"New Delhi", "India"},
	"mumbai":         {"Mumbai", "India"},
	"dhaka":          {"Dhaka", "Bangladesh"},
	"colombo":        {"Colombo", "Sri Lanka"},
	"kathmandu":      {"Kathmandu", "Nepal"},
	"yangon":         {"Yangon", "Myanmar"},
	"bangkok":        {"Bangkok", "Thailand"},
	"hanoi":          {"Hanoi", "Vietnam"},
	"ho chi minh city": {"Ho Chi Minh City", "Vietnam"},
	"jakarta":        {"Jakarta", "Indonesia"},
	"kuala lumpur":   {"Kuala Lumpur", "Malaysia"},
	"singapore":      {"Singapore", "Singapore"},
	"manila":         {"Manila", "Philippines"},
	"hong kong":      {"Hong Kong", "China"},
	"beijing":        {"Beijing", "China"},
	"shanghai":       {"Shanghai", "China"},
	"taipei":         {"Taipei", "Taiwan"},
	"seoul":          {"Seoul", "South Korea"},
	"pyongyang":      {"Pyongyang", "North Korea"},
	"tokyo":          {"Tokyo", "Japan"},
	"osaka":          {"Osaka", "Japan"},
	"sydney":         {"Sydney", "Australia"},
	"melbourne":      {"Melbourne", "Australia"},
	"canberra":       {"Canberra", "Australia"},
	"auckland":       {"Auckland", "New Zealand"},
	"wellington":     {"Wellington", "New Zealand"},
	"port-au-prince": {"Port-au-Prince", "Haiti"},
	"havana":         {"Havana", "Cuba"},
	"caracas":        {"Caracas", "Venezuela"},
	"quito":          {"Quito", "Ecuador"},
	"la paz":         {"La Paz", "Bolivia"},
}

// countryRegions maps a country to its reporting region.
var countryRegions = map[string]string{
	"United Kingdom": "western_europe", "France": "western_europe",
	"Germany": "western_europe", "Spain": "western_europe",
	"Italy": "western_europe", "Netherlands": "western_europe",
	"Belgium": "western_europe", "Austria": "western_europe",
	"Switzerland": "western_europe", "Portugal": "western_europe",
	"Ireland": "western_europe",
	"Sweden":  "northern_europe", "Norway": "northern_europe",
	"Denmark": "northern_europe", "Finland": "northern_europe",
	"Poland": "eastern_europe", "Czech Republic": "eastern_europe",
	"Hungary": "eastern_europe", "Ukraine": "eastern_europe",
	"Russia": "eastern_europe", "Greece": "southern_europe",
	"Turkey": "middle_east", "Israel": "middle_east",
	"Lebanon": "middle_east", "Syria": "middle_east",
	"Iraq": "middle_east", "Iran": "middle_east",
	"Saudi Arabia": "middle_east", "United Arab Emirates": "middle_east",
	"Qatar": "middle_east",
	"Egypt": "north_africa", "Tunisia": "north_africa",
	"Algeria": "north_africa", "Morocco": "north_africa",
	"Sudan":  "north_africa",
	"Nigeria": "sub_saharan_africa", "Kenya": "sub_saharan_africa",
	"South Africa": "sub_saharan_africa", "Ethiopia": "sub_saharan_africa",
	"United States": "north_america", "Canada": "north_america",
	"Mexico": "central_america", "Haiti": "caribbean", "Cuba": "caribbean",
	"Colombia": "south_america", "Peru": "south_america",
	"Chile": "south_america", "Argentina": "south_america",
	"Brazil": "south_america", "Venezuela": "south_america",
	"Ecuador": "south_america", "Bolivia": "south_america",
	"Afghanistan": "south_asia", "Pakistan": "south_asia",
	"India": "south_asia", "Bangladesh": "south_asia",
	"Sri Lanka": "south_asia", "Nepal": "south_asia",
	"Myanmar": "southeast_asia", "Thailand": "southeast_asia",
	"Vietnam": "southeast_asia", "Indonesia": "southeast_asia",
	"Malaysia": "southeast_asia", "Singapore": "southeast_asia",
	"Philippines": "southeast_asia",
	"China": "east_asia", "Taiwan": "east_asia",
	"South Korea": "east_asia", "North Korea": "east_asia", "Japan": "east_asia",
	"Australia": "oceania", "New Zealand": "oceania",
}

// countryAliases normalizes spellings seen in datelines to canonical names.
var countryAliases = map[string]string{
	"uk": "United Kingdom", "britain": "United Kingdom",
	"great britain": "United Kingdom", "england": "United Kingdom",
	"usa": "United States", "us": "United States",
	"united states of america": "United States", "america": "United States",
	"uae": "United Arab Emirates", "holland": "Netherlands",
	"burma": "Myanmar", "czechia": "Czech Republic",
	"south korea": "South Korea", "north korea": "North Korea",
	"ivory coast": "Ivory Coast",
}

// canonicalCountry resolves a raw country string against the alias table and
// the region table. Empty return means unknown.
func canonicalCountry(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return ""
	}
	if canonical, ok := countryAliases[lowered]; ok {
		return canonical
	}
	titled := titleCase(lowered)
	if _, ok := countryRegions[titled]; ok {
		return titled
	}
	return ""
}

// lookupCity finds the longest known-city key contained in the lowercased
// text, so the most specific name wins.
func lookupCity(lowered string) (cityInfo, bool) {
	padded := " " + nonWordChars.ReplaceAllString(lowered, " ") + " "

	var best cityInfo
	bestLen := 0
	for key, info := range knownCities {
		if len(key) > bestLen && strings.Contains(padded, " "+key+" ") {
			best = info
			bestLen = len(key)
		}
	}
	return best, bestLen > 0
}

func regionOf(country string) string {
	return countryRegions[country]
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
