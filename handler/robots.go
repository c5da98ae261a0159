package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/IliaW/robots-api/config"
	cacheClient "github.com/IliaW/robots-api/internal/cache"
	"github.com/IliaW/robots-api/internal/model"
	"github.com/IliaW/robots-api/internal/persistence"
	"github.com/IliaW/robots-api/internal/robots"
	"github.com/IliaW/robots-api/internal/telemetry"
	"github.com/IliaW/robots-api/util"
	"github.com/gin-gonic/gin"
)

const textContentType = "text/plain; charset=utf-8"

type robotsSettings struct {
	settings robots.Settings
	revision string
}

type RobotsHandler struct {
	cache    cacheClient.CachedClient
	ruleRepo persistence.RuleStorage
	metrics  *telemetry.ApiMetrics
	settings atomic.Pointer[robotsSettings]
}

// NewRobotsHandler fails with *robots.ConfigError when the robots section of the config is malformed.
func NewRobotsHandler(cfg *config.Config, cache cacheClient.CachedClient, ruleRepo persistence.RuleStorage,
	metrics *telemetry.ApiMetrics) (*RobotsHandler, error) {
	h := &RobotsHandler{
		cache:    cache,
		ruleRepo: ruleRepo,
		metrics:  metrics,
	}
	if err := h.UpdateSettings(cfg.Robots); err != nil {
		return nil, err
	}

	return h, nil
}

// UpdateSettings swaps the robots settings used for new requests. Invalid settings are rejected and
// the current ones are kept.
func (h *RobotsHandler) UpdateSettings(raw any) error {
	settings, err := robots.DecodeSettings(raw)
	if err != nil {
		return err
	}
	revision, err := settingsRevision(settings)
	if err != nil {
		return err
	}
	h.settings.Store(&robotsSettings{settings: settings, revision: revision})
	slog.Info("robots settings applied.", slog.String("revision", revision))

	return nil
}

// Revision identifies the active robots settings.
func (h *RobotsHandler) Revision() string {
	return h.settings.Load().revision
}

// GetRobotsTxt godoc
// @Summary Get robots.txt
// @Description Render the robots exclusion directives for the requested host
// @Tags Robots
// @Produce plain
// @Success 200 {string} string "robots.txt body"
// @Router /robots.txt [get]
func (h *RobotsHandler) GetRobotsTxt(c *gin.Context) {
	baseUrl := requestBaseUrl(c.Request)
	domain, err := util.GetDomain(baseUrl)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid host")
		h.metrics.RenderErrorCounter(1)
		return
	}
	current := h.settings.Load()

	// the cached body holds the directives only, the Sitemap line depends on the request scheme and port
	directives, ok := h.cache.GetRobotsTxt(domain, current.revision)
	if !ok {
		rs, err := h.ruleSet(current, domain)
		if err != nil {
			slog.Error("failed to resolve robots policy.", slog.String("domain", domain),
				slog.String("err", err.Error()))
			c.String(http.StatusInternalServerError, "failed to resolve robots policy")
			h.metrics.RenderErrorCounter(1)
			return
		}
		directives = []byte(robots.RenderDirectives(rs.ResolvedPolicy()))
		h.cache.SaveRobotsTxt(domain, current.revision, directives)
	}

	body := string(directives)
	if current.settings.UseSitemap {
		body = robots.AppendSitemap(body, sitemapUrl(true, current.settings.SitemapFile, baseUrl))
	}
	c.Data(http.StatusOK, textContentType, []byte(body))
	h.metrics.RenderSuccessCounter(1)
}

// GetPolicy godoc
// @Summary Get the resolved robots policy
// @Description Resolve the global flags and per-crawler rules that apply to the domain of the given URL
// @Tags Robots
// @Produce json
// @Param url query string true "URL of the site"
// @Success 200 {object} model.PolicyResponse "Resolved policy"
// @Router /policy [get]
func (h *RobotsHandler) GetPolicy(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'url' query parameter is required"})
		return
	}
	baseUrl, err := util.GetBaseUrl(url)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to parse url. %s", err.Error())})
		return
	}
	domain, _ := util.GetDomain(baseUrl)

	rs, err := h.ruleSet(h.settings.Load(), domain)
	if err != nil {
		c.JSON(http.StatusInternalServerError,
			gin.H{"error": fmt.Sprintf("failed to resolve robots policy. %s", err.Error())})
		return
	}

	c.JSON(http.StatusOK, policyResponse(domain, baseUrl, rs.ResolvedPolicy()))
}

// GetRule godoc
// @Summary Get stored rules by ID or URL
// @Description Retrieve one rule by 'id' or every rule of the domain of 'url'
// @Tags Rule
// @Produce json
// @Param id query string false "Rule ID"
// @Param url query string false "URL of the site"
// @Success 200 {object} model.Rule "Rule object, or a list of them when queried by url"
// @Security ApiKeyAuth
// @Router /rule [get]
func (h *RobotsHandler) GetRule(c *gin.Context) {
	id := c.Query("id")
	url := c.Query("url")
	if id == "" && url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'id' or 'url' query parameter is required"})
		return
	}

	if id != "" {
		if !validId(id) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "'id' query parameter must be a number"})
			return
		}
		rule, err := h.ruleRepo.GetById(id)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": fmt.Sprintf("failed to get rule by id. %s", err.Error())})
			return
		}
		c.JSON(http.StatusOK, rule)
		return
	}

	domain, err := util.GetDomain(url)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to parse url. %s", err.Error())})
		return
	}
	rules, err := h.ruleRepo.GetByDomain(domain)
	if err != nil {
		c.JSON(http.StatusInternalServerError,
			gin.H{"error": fmt.Sprintf("failed to get rules by url. %s", err.Error())})
		return
	}

	c.JSON(http.StatusOK, rules)
}

// CreateRule godoc
// @Summary Create a path rule
// @Description Store an allow or disallow path for a crawler on the domain of the given URL
// @Tags Rule
// @Produce json
// @Param url query string true "URL of the site"
// @Param robot query string true "Crawler name, '*' for every crawler"
// @Param path query string true "Path of the rule"
// @Param kind query string true "'allow' or 'disallow'"
// @Success 200 {object} string "Rule created successfully"
// @Security ApiKeyAuth
// @Router /rule [post]
func (h *RobotsHandler) CreateRule(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'url' query parameter is required"})
		return
	}
	robot := strings.TrimSpace(c.Query("robot"))
	if robot == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'robot' query parameter is required"})
		return
	}
	path, ok := c.GetQuery("path")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'path' query parameter is required"})
		return
	}
	if !robots.ValidValue(robot) || !robots.ValidValue(path) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'robot' and 'path' must not contain control characters"})
		return
	}
	kind := model.RuleKind(strings.ToLower(c.Query("kind")))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'kind' query parameter must be 'allow' or 'disallow'"})
		return
	}
	domain, err := util.GetDomain(url)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to parse url. %s", err.Error())})
		return
	}

	id, err := h.ruleRepo.Save(&model.Rule{
		Domain: domain,
		Robot:  robot,
		Path:   path,
		Kind:   kind,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError,
			gin.H{"error": fmt.Sprintf("failed to save rule. %v", err.Error())})
		return
	}
	h.cache.DeleteRobotsTxt(domain, h.Revision())
	h.metrics.RuleChangeCounter(1)

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// DeleteRule godoc
// @Summary Delete a path rule by ID
// @Description Delete a stored rule and drop the cached robots.txt of its domain
// @Tags Rule
// @Produce json
// @Param id query string true "Rule ID"
// @Success 200 {object} string "Rule deleted successfully"
// @Security ApiKeyAuth
// @Router /rule [delete]
func (h *RobotsHandler) DeleteRule(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'id' query parameter is required"})
		return
	}
	if !validId(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'id' query parameter must be a number"})
		return
	}

	rule, err := h.ruleRepo.GetById(id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": fmt.Sprintf("failed to get rule by id. %s", err.Error())})
		return
	}
	if err = h.ruleRepo.Delete(id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": fmt.Sprintf("failed to delete rule. %v", err.Error())})
		return
	}
	h.cache.DeleteRobotsTxt(rule.Domain, h.Revision())
	h.metrics.RuleChangeCounter(1)

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("rule with id '%s' is deleted", id)})
}

// ruleSet configures a request-scoped rule set and applies the stored rules of the domain.
// Stored rules are skipped under a global override since they would not be rendered.
func (h *RobotsHandler) ruleSet(current *robotsSettings, domain string) (*robots.RuleSet, error) {
	rs, err := robots.Configure(&current.settings)
	if err != nil {
		return nil, err
	}
	if rs.Config().Overridden() {
		return rs, nil
	}

	rules, err := h.ruleRepo.GetByDomain(domain)
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		var added bool
		switch rule.Kind {
		case model.AllowRule:
			added = rs.AddAllowRule(rule.Path, rule.Robot)
		case model.DisallowRule:
			added = rs.AddDisallowRule(rule.Path, rule.Robot)
		}
		if !added {
			slog.Warn("stored rule skipped.", slog.Int("id", rule.ID), slog.String("kind", string(rule.Kind)))
		}
	}

	return rs, nil
}

func policyResponse(domain, baseUrl string, policy *robots.ResolvedPolicy) model.PolicyResponse {
	resp := model.PolicyResponse{
		Domain:            domain,
		AllowAllRobots:    policy.AllowAllRobots,
		DisallowAllRobots: policy.DisallowAllRobots,
		UseSitemap:        policy.UseSitemap,
		SitemapUrl:        sitemapUrl(policy.UseSitemap, policy.SitemapPath, baseUrl),
		Crawlers:          make([]model.CrawlerRule, 0, len(policy.Crawlers)),
	}
	if policy.Overridden() {
		return resp
	}
	for _, id := range policy.Crawlers {
		disallow, allow := policy.DisallowRules[id], policy.AllowRules[id]
		if len(disallow) == 0 && len(allow) == 0 {
			continue
		}
		resp.Crawlers = append(resp.Crawlers, model.CrawlerRule{
			ID:        string(id),
			UserAgent: policy.RobotName(id),
			Disallow:  nonNil(disallow),
			Allow:     nonNil(allow),
		})
	}

	return resp
}

func sitemapUrl(useSitemap bool, file, baseUrl string) string {
	if !useSitemap {
		return ""
	}
	url, err := util.SitemapUrl(baseUrl, file)
	if err != nil {
		slog.Warn("failed to build sitemap url.", slog.String("file", file),
			slog.String("err", err.Error()))
		return ""
	}
	return url
}

// requestBaseUrl honours X-Forwarded-Proto set by a terminating proxy.
func requestBaseUrl(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host
}

func settingsRevision(settings robots.Settings) (string, error) {
	b, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("failed to hash robots settings: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8]), nil
}

func validId(id string) bool {
	_, err := strconv.Atoi(id)
	return err == nil
}

func statusFor(err error) int {
	if errors.Is(err, persistence.ErrRuleNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
