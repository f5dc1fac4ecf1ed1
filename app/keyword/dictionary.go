package keyword

// Static term tables. These are configuration data, not algorithm: the
// matcher only cares about the risk/impact split and the weights.

// riskTerms name a threat or hazard in the broadest sense. A risk term alone
// is not a hit: "bomb" shows up in "bombshell announcement".
var riskTerms = map[string]struct{}{
	"attack": {}, "bomb": {}, "bombing": {}, "blast": {}, "explosion": {},
	"shooting": {}, "gunfire": {}, "gunman": {}, "hostage": {}, "kidnapping": {},
	"protest": {}, "protests": {}, "riot": {}, "riots": {}, "unrest": {},
	"clashes": {}, "demonstration": {}, "strike": {}, "strikes": {}, "coup": {},
	"earthquake": {}, "flood": {}, "floods": {}, "flooding": {}, "wildfire": {},
	"hurricane": {}, "typhoon": {}, "cyclone": {}, "tornado": {}, "landslide": {},
	"outbreak": {}, "epidemic": {}, "pandemic": {}, "curfew": {}, "lockdown": {},
	"militants": {}, "insurgents": {}, "airstrike": {}, "shelling": {},
	"blackout": {}, "sabotage": {}, "derailment": {}, "crash": {},
}

// impactTerms describe consequences. Requiring one near a risk term is the
// precision lever that keeps single alarming words out of the pipeline.
var impactTerms = map[string]struct{}{
	"killed": {}, "dead": {}, "deaths": {}, "died": {}, "casualties": {},
	"injured": {}, "wounded": {}, "missing": {}, "trapped": {}, "stranded": {},
	"evacuated": {}, "evacuation": {}, "displaced": {}, "destroyed": {},
	"damaged": {}, "damage": {}, "collapsed": {}, "closed": {}, "closure": {},
	"shutdown": {}, "shut": {}, "suspended": {}, "cancelled": {}, "canceled": {},
	"disrupted": {}, "disruption": {}, "blocked": {}, "halted": {}, "grounded": {},
	"delayed": {}, "erupted": {}, "spread": {}, "declared": {}, "imposed": {},
}

// weightedKeywords backs the fallback tier: a hit needs at least two distinct
// entries. Weights are kept for scoring downstream; the matcher itself only
// counts distinct matches.
var weightedKeywords = map[string]int{
	"attack": 3, "bomb": 3, "bombing": 3, "explosion": 3, "blast": 3,
	"shooting": 3, "gunfire": 3, "hostage": 3, "kidnapping": 3, "airstrike": 3,
	"terrorism": 3, "militants": 3, "insurgents": 3, "shelling": 3,
	"protest": 2, "riot": 2, "unrest": 2, "clashes": 2, "demonstration": 2,
	"strike": 2, "coup": 2, "curfew": 2, "lockdown": 2, "sabotage": 2,
	"earthquake": 3, "flood": 2, "flooding": 2, "wildfire": 3, "hurricane": 3,
	"typhoon": 3, "cyclone": 3, "tornado": 3, "landslide": 3,
	"outbreak": 2, "epidemic": 3, "pandemic": 3,
	"killed": 2, "casualties": 2, "injured": 2, "wounded": 2, "evacuated": 2,
	"evacuation": 2, "destroyed": 2, "collapsed": 2, "derailment": 3,
	"blackout": 2, "shutdown": 1, "disruption": 1, "disrupted": 1, "emergency": 1, "security": 1,
	"police": 1, "military": 1, "violence": 2, "armed": 2,
}

// categoryTags maps an alert tag to the terms that imply it. Tags are derived
// over the full text blob during alert assembly.
var categoryTags = map[string][]string{
	"armed_conflict":   {"airstrike", "shelling", "militants", "insurgents", "offensive", "ceasefire"},
	"terrorism":        {"bomb", "bombing", "blast", "explosion", "hostage", "suicide attack", "ied"},
	"civil_unrest":     {"protest", "protests", "riot", "riots", "unrest", "clashes", "demonstration", "curfew"},
	"crime":            {"shooting", "gunfire", "gunman", "kidnapping", "robbery", "looting"},
	"natural_disaster": {"earthquake", "flood", "flooding", "wildfire", "hurricane", "typhoon", "cyclone", "tornado", "landslide", "tsunami"},
	"health":           {"outbreak", "epidemic", "pandemic", "virus", "quarantine", "contamination"},
	"transport":        {"airport", "flight", "flights", "grounded", "derailment", "rail", "highway", "port"},
	"infrastructure":   {"blackout", "power outage", "water supply", "pipeline", "grid", "telecom"},
	"labor_action":     {"strike", "strikes", "walkout", "industrial action", "picket"},
}
