package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IliaW/robots-api/config"
	cacheMock "github.com/IliaW/robots-api/internal/cache/mocks"
	"github.com/IliaW/robots-api/internal/model"
	"github.com/IliaW/robots-api/internal/persistence"
	storageMock "github.com/IliaW/robots-api/internal/persistence/mocks"
	"github.com/IliaW/robots-api/internal/robots"
	"github.com/IliaW/robots-api/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testSettings = map[string]any{
	"robots":        []any{"CustomBot"},
	"allowRules":    map[string]any{"*": []any{"/public"}},
	"disallowRules": map[string]any{"*": []any{"/private"}},
}

func newTestHandler(t *testing.T, settings any, cache *cacheMock.CachedClient,
	ruleRepo *storageMock.RuleStorage) *RobotsHandler {
	t.Helper()
	metrics := telemetry.SetupMetrics(context.Background(), &config.Config{
		TelemetrySettings: &config.TelemetryConfig{
			Enabled: false,
		},
	})
	h, err := NewRobotsHandler(&config.Config{Robots: settings}, cache, ruleRepo, metrics.ApiMetrics)
	require.NoError(t, err)
	return h
}

func newRouter(h *RobotsHandler) *gin.Engine {
	r := gin.New()
	r.GET("/robots.txt", h.GetRobotsTxt)
	r.GET("/policy", h.GetPolicy)
	r.GET("/rule", h.GetRule)
	r.POST("/rule", h.CreateRule)
	r.DELETE("/rule", h.DeleteRule)
	return r
}

func Test_GetRobotsTxt_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testSet := []struct {
		name               string
		settings           map[string]any
		forwardedProto     string
		mockCached         func() ([]byte, bool)
		mockStoredRules    func() ([]*model.Rule, error)
		expectedResponse   string
		expectedStatusCode int
		expectedCached     string
	}{
		{
			name:     "settings and stored rules",
			settings: testSettings,
			mockCached: func() ([]byte, bool) {
				return nil, false
			},
			mockStoredRules: func() ([]*model.Rule, error) {
				return []*model.Rule{
					{ID: 1, Domain: "example.com", Robot: "custombot", Path: "/secret", Kind: model.DisallowRule},
					{ID: 2, Domain: "example.com", Robot: "NewBot", Path: "/p", Kind: model.AllowRule},
				}, nil
			},
			expectedResponse: "User-agent: *\nDisallow: /private\nAllow: /public\n\n" +
				"User-agent: CustomBot\nDisallow: /secret\n\n" +
				"User-agent: NewBot\nAllow: /p\n\n" +
				"Sitemap: http://example.com/sitemap.xml\n",
			expectedStatusCode: http.StatusOK,
			expectedCached: "User-agent: *\nDisallow: /private\nAllow: /public\n\n" +
				"User-agent: CustomBot\nDisallow: /secret\n\n" +
				"User-agent: NewBot\nAllow: /p\n",
		},
		{
			name:           "disallow all skips stored rules",
			settings:       map[string]any{"disallowAllRobots": true, "sitemapFile": "/maps/sitemap.xml"},
			forwardedProto: "https",
			mockCached: func() ([]byte, bool) {
				return nil, false
			},
			expectedResponse:   "User-agent: *\nDisallow: /\n\nSitemap: https://example.com/maps/sitemap.xml\n",
			expectedStatusCode: http.StatusOK,
			expectedCached:     "User-agent: *\nDisallow: /\n",
		},
		{
			name:     "allow all without sitemap",
			settings: map[string]any{"allowAllRobots": true, "useSitemap": false},
			mockCached: func() ([]byte, bool) {
				return nil, false
			},
			expectedResponse:   "User-agent: *\nDisallow:\n",
			expectedStatusCode: http.StatusOK,
			expectedCached:     "User-agent: *\nDisallow:\n",
		},
		{
			name:     "served from cache",
			settings: testSettings,
			mockCached: func() ([]byte, bool) {
				return []byte("User-agent: *\nDisallow: /cached\n"), true
			},
			expectedResponse:   "User-agent: *\nDisallow: /cached\n\nSitemap: http://example.com/sitemap.xml\n",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:     "storage failure",
			settings: testSettings,
			mockCached: func() ([]byte, bool) {
				return nil, false
			},
			mockStoredRules: func() ([]*model.Rule, error) {
				return nil, errors.New("connection refused")
			},
			expectedResponse:   "failed to resolve robots policy",
			expectedStatusCode: http.StatusInternalServerError,
		},
	}
	for _, test := range testSet {
		t.Run(test.name, func(tt *testing.T) {
			cache := cacheMock.NewCachedClient(tt)
			cache.On("GetRobotsTxt", "example.com", mock.Anything).Return(test.mockCached())
			if test.expectedCached != "" {
				cache.On("SaveRobotsTxt", "example.com", mock.Anything, []byte(test.expectedCached)).Once()
			}
			ruleRepo := storageMock.NewRuleStorage(tt)
			if test.mockStoredRules != nil {
				ruleRepo.On("GetByDomain", "example.com").Return(test.mockStoredRules())
			}

			r := newRouter(newTestHandler(tt, test.settings, cache, ruleRepo))
			req := httptest.NewRequest(http.MethodGet, "http://example.com/robots.txt", nil)
			if test.forwardedProto != "" {
				req.Header.Set("X-Forwarded-Proto", test.forwardedProto)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(tt, test.expectedStatusCode, w.Code)
			assert.Equal(tt, test.expectedResponse, w.Body.String())
			if w.Code == http.StatusOK {
				assert.Equal(tt, textContentType, w.Header().Get("Content-Type"))
			}
		})
	}
}

func Test_GetPolicy_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cache := cacheMock.NewCachedClient(t)
	ruleRepo := storageMock.NewRuleStorage(t)
	ruleRepo.On("GetByDomain", "example.com").Return([]*model.Rule{
		{ID: 1, Domain: "example.com", Robot: "Googlebot", Path: "/news", Kind: model.AllowRule},
	}, nil)

	r := newRouter(newTestHandler(t, testSettings, cache, ruleRepo))
	req := httptest.NewRequest(http.MethodGet, "/policy?url=https://example.com/page", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp model.PolicyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.PolicyResponse{
		Domain:     "example.com",
		UseSitemap: true,
		SitemapUrl: "https://example.com/sitemap.xml",
		Crawlers: []model.CrawlerRule{
			{ID: "all", UserAgent: "*", Disallow: []string{"/private"}, Allow: []string{"/public"}},
			{ID: "googlebot", UserAgent: "Googlebot", Disallow: []string{}, Allow: []string{"/news"}},
		},
	}, resp)
}

func Test_GetPolicy_MissingUrl(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newRouter(newTestHandler(t, nil, cacheMock.NewCachedClient(t), storageMock.NewRuleStorage(t)))
	req := httptest.NewRequest(http.MethodGet, "/policy", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "{\"error\":\"'url' query parameter is required\"}", w.Body.String())
}

func Test_CreateRule_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testSet := []struct {
		name               string
		query              string
		mockSave           func() (int64, error)
		expectedResponse   string
		expectedStatusCode int
	}{
		{
			name:  "created",
			query: "url=https://example.com/&robot=NewBot&path=/p&kind=Allow",
			mockSave: func() (int64, error) {
				return 5, nil
			},
			expectedResponse:   "{\"id\":5}",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "missing url",
			query:              "robot=NewBot&path=/p&kind=allow",
			expectedResponse:   "{\"error\":\"'url' query parameter is required\"}",
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "missing robot",
			query:              "url=https://example.com/&path=/p&kind=allow",
			expectedResponse:   "{\"error\":\"'robot' query parameter is required\"}",
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "missing path",
			query:              "url=https://example.com/&robot=NewBot&kind=allow",
			expectedResponse:   "{\"error\":\"'path' query parameter is required\"}",
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "unknown kind",
			query:              "url=https://example.com/&robot=NewBot&path=/p&kind=maybe",
			expectedResponse:   "{\"error\":\"'kind' query parameter must be 'allow' or 'disallow'\"}",
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:  "storage failure",
			query: "url=https://example.com/&robot=NewBot&path=/p&kind=disallow",
			mockSave: func() (int64, error) {
				return 0, errors.New("duplicate key")
			},
			expectedResponse:   "{\"error\":\"failed to save rule. duplicate key\"}",
			expectedStatusCode: http.StatusInternalServerError,
		},
	}
	for _, test := range testSet {
		t.Run(test.name, func(tt *testing.T) {
			cache := cacheMock.NewCachedClient(tt)
			ruleRepo := storageMock.NewRuleStorage(tt)
			h := newTestHandler(tt, testSettings, cache, ruleRepo)
			if test.mockSave != nil {
				ruleRepo.On("Save", mock.MatchedBy(func(rule *model.Rule) bool {
					return rule.Domain == "example.com" && rule.Robot == "NewBot" && rule.Path == "/p"
				})).Return(test.mockSave())
			}
			if test.expectedStatusCode == http.StatusOK {
				cache.On("DeleteRobotsTxt", "example.com", h.Revision()).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/rule?"+test.query, nil)
			w := httptest.NewRecorder()
			newRouter(h).ServeHTTP(w, req)

			assert.Equal(tt, test.expectedStatusCode, w.Code)
			assert.Equal(tt, test.expectedResponse, w.Body.String())
		})
	}
}

func Test_GetRule_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rule := &model.Rule{ID: 3, Domain: "example.com", Robot: "Bing", Path: "/x", Kind: model.DisallowRule}
	testSet := []struct {
		name               string
		query              string
		mock               func(repo *storageMock.RuleStorage)
		expectedStatusCode int
		expectedContains   string
	}{
		{
			name:  "by id",
			query: "id=3",
			mock: func(repo *storageMock.RuleStorage) {
				repo.On("GetById", "3").Return(rule, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedContains:   "\"robot\":\"Bing\"",
		},
		{
			name:  "by id not found",
			query: "id=4",
			mock: func(repo *storageMock.RuleStorage) {
				repo.On("GetById", "4").Return(nil, fmt.Errorf("rule with id '4': %w", persistence.ErrRuleNotFound))
			},
			expectedStatusCode: http.StatusNotFound,
			expectedContains:   "rule not found",
		},
		{
			name:  "by url",
			query: "url=https://example.com/page",
			mock: func(repo *storageMock.RuleStorage) {
				repo.On("GetByDomain", "example.com").Return([]*model.Rule{rule}, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedContains:   "[{\"id\":3,",
		},
		{
			name:               "no parameters",
			query:              "",
			mock:               func(repo *storageMock.RuleStorage) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedContains:   "'id' or 'url' query parameter is required",
		},
	}
	for _, test := range testSet {
		t.Run(test.name, func(tt *testing.T) {
			ruleRepo := storageMock.NewRuleStorage(tt)
			test.mock(ruleRepo)
			h := newTestHandler(tt, nil, cacheMock.NewCachedClient(tt), ruleRepo)

			req := httptest.NewRequest(http.MethodGet, "/rule?"+test.query, nil)
			w := httptest.NewRecorder()
			newRouter(h).ServeHTTP(w, req)

			assert.Equal(tt, test.expectedStatusCode, w.Code)
			assert.Contains(tt, w.Body.String(), test.expectedContains)
		})
	}
}

func Test_DeleteRule_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cache := cacheMock.NewCachedClient(t)
	ruleRepo := storageMock.NewRuleStorage(t)
	h := newTestHandler(t, testSettings, cache, ruleRepo)
	ruleRepo.On("GetById", "3").Return(&model.Rule{ID: 3, Domain: "example.com"}, nil)
	ruleRepo.On("Delete", "3").Return(nil)
	cache.On("DeleteRobotsTxt", "example.com", h.Revision()).Once()

	req := httptest.NewRequest(http.MethodDelete, "/rule?id=3", nil)
	w := httptest.NewRecorder()
	newRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{\"message\":\"rule with id '3' is deleted\"}", w.Body.String())
}

func Test_NewRobotsHandler_MalformedSettings(t *testing.T) {
	metrics := telemetry.SetupMetrics(context.Background(), &config.Config{
		TelemetrySettings: &config.TelemetryConfig{Enabled: false},
	})

	h, err := NewRobotsHandler(&config.Config{Robots: "disallow everything"}, nil, nil, metrics.ApiMetrics)

	assert.Nil(t, h)
	var configErr *robots.ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func Test_UpdateSettings(t *testing.T) {
	h := newTestHandler(t, testSettings, nil, nil)
	revision := h.Revision()

	err := h.UpdateSettings([]any{"not", "a", "mapping"})
	assert.Error(t, err)
	assert.Equal(t, revision, h.Revision())

	require.NoError(t, h.UpdateSettings(map[string]any{"disallowAllRobots": true}))
	assert.NotEqual(t, revision, h.Revision())

	require.NoError(t, h.UpdateSettings(testSettings))
	assert.Equal(t, revision, h.Revision())
}

type memoryCache struct {
	bodies map[string][]byte
}

func (m *memoryCache) GetRobotsTxt(domain, revision string) ([]byte, bool) {
	body, ok := m.bodies[domain+"/"+revision]
	return body, ok
}

func (m *memoryCache) SaveRobotsTxt(domain, revision string, body []byte) {
	m.bodies[domain+"/"+revision] = body
}

func (m *memoryCache) DeleteRobotsTxt(domain, revision string) {
	delete(m.bodies, domain+"/"+revision)
}

func (m *memoryCache) Close() {}

func Test_GetRobotsTxt_SitemapFollowsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := telemetry.SetupMetrics(context.Background(), &config.Config{
		TelemetrySettings: &config.TelemetryConfig{Enabled: false},
	})
	ruleRepo := storageMock.NewRuleStorage(t)
	h, err := NewRobotsHandler(&config.Config{Robots: map[string]any{"disallowAllRobots": true}},
		&memoryCache{bodies: map[string][]byte{}}, ruleRepo, metrics.ApiMetrics)
	require.NoError(t, err)
	r := newRouter(h)

	for _, proto := range []string{"http", "https", "http"} {
		req := httptest.NewRequest(http.MethodGet, "http://example.com:8080/robots.txt", nil)
		req.Header.Set("X-Forwarded-Proto", proto)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "User-agent: *\nDisallow: /\n\nSitemap: "+proto+"://example.com:8080/sitemap.xml\n",
			w.Body.String(), proto)
	}
}

func Test_GetRobotsTxt_StoredRuleCanNotAddDirectives(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cache := cacheMock.NewCachedClient(t)
	cache.On("GetRobotsTxt", "example.com", mock.Anything).Return(nil, false)
	cache.On("SaveRobotsTxt", "example.com", mock.Anything, mock.Anything).Once()
	ruleRepo := storageMock.NewRuleStorage(t)
	ruleRepo.On("GetByDomain", "example.com").Return([]*model.Rule{
		{ID: 1, Domain: "example.com", Robot: "Googlebot", Path: "/a\nUser-agent: *\nDisallow: /",
			Kind: model.DisallowRule},
		{ID: 2, Domain: "example.com", Robot: "Googlebot", Path: "/b", Kind: model.DisallowRule},
	}, nil)

	r := newRouter(newTestHandler(t, map[string]any{"useSitemap": false}, cache, ruleRepo))
	req := httptest.NewRequest(http.MethodGet, "http://example.com/robots.txt", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User-agent: Googlebot\nDisallow: /b\n", w.Body.String())
}

func Test_CreateRule_RejectsControlCharacters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testSet := []struct {
		name  string
		query string
	}{
		{name: "newline in path", query: "url=https://example.com/&robot=Googlebot&path=/a%0AUser-agent:%20*&kind=disallow"},
		{name: "carriage return in path", query: "url=https://example.com/&robot=Googlebot&path=/a%0D&kind=allow"},
		{name: "newline in robot", query: "url=https://example.com/&robot=Bot%0ADisallow:%20/&path=/a&kind=allow"},
		{name: "tab in path", query: "url=https://example.com/&robot=Googlebot&path=/a%09b&kind=allow"},
	}
	for _, test := range testSet {
		t.Run(test.name, func(tt *testing.T) {
			h := newTestHandler(tt, testSettings, cacheMock.NewCachedClient(tt), storageMock.NewRuleStorage(tt))

			req := httptest.NewRequest(http.MethodPost, "/rule?"+test.query, nil)
			w := httptest.NewRecorder()
			newRouter(h).ServeHTTP(w, req)

			assert.Equal(tt, http.StatusBadRequest, w.Code)
			assert.Equal(tt, "{\"error\":\"'robot' and 'path' must not contain control characters\"}",
				w.Body.String())
		})
	}
}

func Test_Rule_NonNumericId(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		t.Run(method, func(tt *testing.T) {
			h := newTestHandler(tt, nil, cacheMock.NewCachedClient(tt), storageMock.NewRuleStorage(tt))

			req := httptest.NewRequest(method, "/rule?id=abc", nil)
			w := httptest.NewRecorder()
			newRouter(h).ServeHTTP(w, req)

			assert.Equal(tt, http.StatusBadRequest, w.Code)
			assert.Equal(tt, "{\"error\":\"'id' query parameter must be a number\"}", w.Body.String())
		})
	}
}
