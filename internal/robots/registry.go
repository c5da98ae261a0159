package robots

import "maps"

// CrawlerID is the canonical slug of a crawler name.
type CrawlerID string

const (
	// WildcardID is the id of the entry that stands for every crawler.
	WildcardID CrawlerID = "all"
	// WildcardName is both the input token and the display name of the wildcard crawler.
	WildcardName = "*"
)

// builtinRobots is copied into every new Registry.
var builtinRobots = map[CrawlerID]string{
	WildcardID:             WildcardName,
	"googlebot":            "Googlebot",
	"googlebot-mobile":     "Googlebot-Mobile",
	"googlebot-image":      "Googlebot-Image",
	"mediapartners-google": "Mediapartners-Google",
	"adsbot-google":        "Adsbot-Google",
	"slurp":                "Slurp",
	"msnbot":               "msnbot",
	"msnbot-media":         "msnbot-media",
	"teoma":                "Teoma",
}

// Registry maps canonical crawler ids to their display names. It only grows.
// A Registry is not safe for concurrent mutation.
type Registry struct {
	robots map[CrawlerID]string
}

func NewRegistry() *Registry {
	return &Registry{robots: maps.Clone(builtinRobots)}
}

// Normalize returns the canonical id of a crawler name. "*" is treated as "all".
func Normalize(name string) CrawlerID {
	if name == WildcardName {
		name = string(WildcardID)
	}
	return CrawlerID(slugify(name))
}

// Register stores the name under its id unless the id is already known. The first registration wins.
func (r *Registry) Register(name string) CrawlerID {
	id := Normalize(name)
	if _, ok := r.robots[id]; !ok {
		r.robots[id] = name
	}
	return id
}

// Exists reports whether the crawler is known, registering it first when autoCreate is set.
func (r *Registry) Exists(name string, autoCreate bool) bool {
	if _, ok := r.robots[Normalize(name)]; ok {
		return true
	}
	if !autoCreate {
		return false
	}
	r.Register(name)
	return true
}

// LookupName returns the display name for an id, falling back to the wildcard name for unknown ids.
func (r *Registry) LookupName(id CrawlerID) string {
	if id == WildcardName {
		id = WildcardID
	}
	if name, ok := r.robots[id]; ok {
		return name
	}
	return r.robots[WildcardID]
}

// Robots returns a copy of the id to name table.
func (r *Registry) Robots() map[CrawlerID]string {
	return maps.Clone(r.robots)
}
