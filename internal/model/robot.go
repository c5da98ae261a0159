package model

import "time"

type RuleKind string

const (
	AllowRule    RuleKind = "allow"
	DisallowRule RuleKind = "disallow"
)

func (k RuleKind) Valid() bool {
	return k == AllowRule || k == DisallowRule
}

// Rule godoc
// @Description Represents a path rule for one crawler on a domain
// @Type Rule
type Rule struct {
	ID        int       `json:"id"`
	Domain    string    `json:"domain"`
	Robot     string    `json:"robot"`
	Path      string    `json:"path"`
	Kind      RuleKind  `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// PolicyResponse godoc
// @Description Resolved robots policy for a domain
// @Type PolicyResponse
type PolicyResponse struct {
	Domain            string        `json:"domain"`
	AllowAllRobots    bool          `json:"allow_all_robots"`
	DisallowAllRobots bool          `json:"disallow_all_robots"`
	UseSitemap        bool          `json:"use_sitemap"`
	SitemapUrl        string        `json:"sitemap_url"`
	Crawlers          []CrawlerRule `json:"crawlers"`
}

// CrawlerRule godoc
// @Description Path rules of one crawler
// @Type CrawlerRule
type CrawlerRule struct {
	ID        string   `json:"id"`
	UserAgent string   `json:"user_agent"`
	Disallow  []string `json:"disallow"`
	Allow     []string `json:"allow"`
}
