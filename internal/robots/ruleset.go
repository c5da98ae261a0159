package robots

import (
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

const (
	defaultUseSitemap  = true
	defaultSitemapFile = "/sitemap.xml"
)

// Settings are the recognized robots options. Keys are matched case-insensitively when decoded.
type Settings struct {
	DisallowAllRobots bool                `mapstructure:"disallowAllRobots" json:"disallowAllRobots"`
	AllowAllRobots    bool                `mapstructure:"allowAllRobots" json:"allowAllRobots"`
	UseSitemap        bool                `mapstructure:"useSitemap" json:"useSitemap"`
	SitemapFile       string              `mapstructure:"sitemapFile" json:"sitemapFile"`
	Robots            []string            `mapstructure:"robots" json:"robots"`
	AllowRules        map[string][]string `mapstructure:"allowRules" json:"allowRules"`
	DisallowRules     map[string][]string `mapstructure:"disallowRules" json:"disallowRules"`
}

func DefaultSettings() Settings {
	return Settings{
		UseSitemap:  defaultUseSitemap,
		SitemapFile: defaultSitemapFile,
	}
}

// DecodeSettings turns raw configuration into Settings on top of the defaults.
// nil yields the defaults; anything that is not a mapping is a *ConfigError.
// Strings are accepted for boolean options: values strconv.ParseBool understands keep their meaning,
// any other non-empty string ("yes", "on") is true.
func DecodeSettings(raw any) (Settings, error) {
	settings := DefaultSettings()
	switch v := raw.(type) {
	case nil:
		return settings, nil
	case Settings:
		return v, nil
	case *Settings:
		if v == nil {
			return settings, nil
		}
		return *v, nil
	}

	if reflect.ValueOf(raw).Kind() != reflect.Map {
		return settings, &ConfigError{Reason: "expected a mapping, got " + reflect.TypeOf(raw).String()}
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncType(stringToBoolHook),
		Result:           &settings,
	})
	if err != nil {
		return settings, &ConfigError{Reason: "decoder setup", Err: err}
	}
	if err = decoder.Decode(raw); err != nil {
		return settings, &ConfigError{Reason: "malformed option", Err: err}
	}

	return settings, nil
}

func stringToBoolHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	s := strings.TrimSpace(reflect.ValueOf(data).String())
	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}
	return s != "", nil
}

// PolicyConfig holds the global flags. AllowAllRobots and DisallowAllRobots are never both true.
type PolicyConfig struct {
	AllowAllRobots    bool   `json:"allow_all_robots"`
	DisallowAllRobots bool   `json:"disallow_all_robots"`
	UseSitemap        bool   `json:"use_sitemap"`
	SitemapPath       string `json:"sitemap_file"`
}

// Overridden reports whether a global flag supersedes the per-crawler rules.
func (c PolicyConfig) Overridden() bool {
	return c.AllowAllRobots || c.DisallowAllRobots
}

// RuleTable maps a crawler to its path rules in the order they were added. Duplicates are kept.
type RuleTable map[CrawlerID][]string

func (t RuleTable) clone() RuleTable {
	c := make(RuleTable, len(t))
	for id, paths := range t {
		c[id] = slices.Clone(paths)
	}
	return c
}

// ResolvedPolicy is a read-only snapshot handed to the renderer.
type ResolvedPolicy struct {
	PolicyConfig
	AllowRules    RuleTable
	DisallowRules RuleTable
	// Crawlers lists every id present in either table, in the order its first bucket was created.
	Crawlers []CrawlerID
	registry *Registry
}

func (p *ResolvedPolicy) RobotName(id CrawlerID) string {
	return p.registry.LookupName(id)
}

// RuleSet resolves robots settings into global flags and per-crawler path rules.
// Configure it once, then share it read-only.
type RuleSet struct {
	registry   *Registry
	config     PolicyConfig
	allow      RuleTable
	disallow   RuleTable
	order      []CrawlerID
	seen       map[CrawlerID]struct{}
	configured bool
}

// NewRuleSet returns an unconfigured RuleSet with its own Registry.
func NewRuleSet() *RuleSet {
	return &RuleSet{
		registry: NewRegistry(),
		config: PolicyConfig{
			UseSitemap:  defaultUseSitemap,
			SitemapPath: defaultSitemapFile,
		},
		allow:    make(RuleTable),
		disallow: make(RuleTable),
		seen:     make(map[CrawlerID]struct{}),
	}
}

// Configure builds a configured RuleSet from raw settings.
func Configure(raw any) (*RuleSet, error) {
	rs := NewRuleSet()
	if err := rs.Configure(raw); err != nil {
		return nil, err
	}
	return rs, nil
}

// Configure applies raw settings. Allow-all wins over disallow-all, and per-crawler rules are only
// loaded when neither override is set. A RuleSet can be configured once.
func (s *RuleSet) Configure(raw any) error {
	if s.configured {
		return ErrAlreadyConfigured
	}
	settings, err := DecodeSettings(raw)
	if err != nil {
		return err
	}

	s.config = PolicyConfig{
		AllowAllRobots:    settings.AllowAllRobots,
		DisallowAllRobots: settings.DisallowAllRobots && !settings.AllowAllRobots,
		UseSitemap:        settings.UseSitemap,
		SitemapPath:       settings.SitemapFile,
	}

	for _, name := range settings.Robots {
		s.registry.Register(name)
	}

	if !s.config.Overridden() {
		s.loadRules(s.allow, settings.AllowRules)
		s.loadRules(s.disallow, settings.DisallowRules)
	}
	s.configured = true

	return nil
}

// loadRules walks crawler names in sorted order so the result does not depend on map iteration.
func (s *RuleSet) loadRules(table RuleTable, rules map[string][]string) {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s.registry.Exists(name, true)
		s.appendRules(table, Normalize(name), rules[name]...)
	}
}

func (s *RuleSet) appendRules(table RuleTable, id CrawlerID, paths ...string) {
	if _, ok := s.seen[id]; !ok {
		s.seen[id] = struct{}{}
		s.order = append(s.order, id)
	}
	if _, ok := table[id]; !ok {
		table[id] = []string{}
	}
	table[id] = append(table[id], paths...)
}

// AddRobot registers an extra crawler name.
func (s *RuleSet) AddRobot(name string) CrawlerID {
	return s.registry.Register(name)
}

// AddAllowRule appends an allow path for the crawler, registering the crawler when it is unknown.
// The override flags are not consulted.
func (s *RuleSet) AddAllowRule(path, robot string) bool {
	return s.addRule(s.allow, path, robot)
}

// AddDisallowRule appends a disallow path for the crawler, registering the crawler when it is unknown.
func (s *RuleSet) AddDisallowRule(path, robot string) bool {
	return s.addRule(s.disallow, path, robot)
}

func (s *RuleSet) addRule(table RuleTable, path, robot string) bool {
	// Exists auto-creates, so false is currently unreachable.
	if !s.registry.Exists(robot, true) {
		return false
	}
	s.appendRules(table, Normalize(robot), path)
	return true
}

func (s *RuleSet) Configured() bool {
	return s.configured
}

func (s *RuleSet) Config() PolicyConfig {
	return s.config
}

func (s *RuleSet) Registry() *Registry {
	return s.registry
}

func (s *RuleSet) AllowRules() RuleTable {
	return s.allow.clone()
}

func (s *RuleSet) DisallowRules() RuleTable {
	return s.disallow.clone()
}

func (s *RuleSet) RobotName(id CrawlerID) string {
	return s.registry.LookupName(id)
}

// ResolvedPolicy returns a snapshot of the flags and rule tables.
func (s *RuleSet) ResolvedPolicy() *ResolvedPolicy {
	return &ResolvedPolicy{
		PolicyConfig:  s.config,
		AllowRules:    s.allow.clone(),
		DisallowRules: s.disallow.clone(),
		Crawlers:      slices.Clone(s.order),
		registry:      s.registry,
	}
}
