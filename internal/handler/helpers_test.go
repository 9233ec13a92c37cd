package handler

import (
	"bytes"
	"database/sql"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/qualitysolutions/qsite/internal/auth"
	"github.com/qualitysolutions/qsite/internal/cache"
	"github.com/qualitysolutions/qsite/internal/i18n"
	"github.com/qualitysolutions/qsite/internal/loader"
	"github.com/qualitysolutions/qsite/internal/middleware"
	"github.com/qualitysolutions/qsite/internal/render"
	"github.com/qualitysolutions/qsite/internal/service"
	"github.com/qualitysolutions/qsite/internal/session"
	"github.com/qualitysolutions/qsite/internal/store"
	"github.com/qualitysolutions/qsite/internal/testutil"
	"github.com/qualitysolutions/qsite/web"
)

const testSecret = "test-secret-Key-with-enough-bytes-123"

func TestMain(m *testing.M) {
	if err := i18n.Init(nil); err != nil {
		panic(err)
	}
	m.Run()
}

// testApp wires the handlers to a seeded database the same way the server
// does, minus CSRF and rate limiting.
type testApp struct {
	db          *sql.DB
	cache       cache.Cache
	tokens      *session.TokenIssuer
	revocations *session.Revocations
	router      http.Handler
	// logs holds what the frontend handler logged.
	logs *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SeededDB(t)
	logger := testutil.TestLoggerSilent()

	c := cache.NewSimpleMemoryCache(0)
	t.Cleanup(func() { _ = c.Close() })

	sm := scs.New()
	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	tokens := session.NewTokenIssuer(testSecret, "http://example.com", false)
	revocations := session.NewRevocations(c)
	events := service.NewEventService(db, logger)
	queries := store.New(db)

	logs := &bytes.Buffer{}
	frontend := NewFrontendHandler(loader.New(queries, c), db, renderer, events, slog.New(slog.NewTextHandler(logs, nil)))
	authHandler := NewAuthHandler(AuthDeps{
		DB:              db,
		Authenticator:   auth.NewAuthenticator(queries, logger),
		Tokens:          tokens,
		Revocations:     revocations,
		LoginProtection: middleware.NewLoginProtection(db, middleware.LoginProtectionConfig{}),
		SessionManager:  sm,
		Renderer:        renderer,
		Events:          events,
		Logger:          logger,
	})
	languageHandler := NewLanguageHandler(false)
	healthHandler := NewHealthHandler(db, c, cache.BackendMemory)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.Language)
	r.Use(middleware.NewSessionAuth(tokens, revocations, logger).OptionalSession)

	r.Get(RouteRoot, frontend.Home)
	r.Route(RouteArticles, func(r chi.Router) {
		r.Get(RouteRoot, frontend.ArticleList)
		r.Get(RouteParamSlug, frontend.ArticleDetail)
		r.Post(RouteSuffixComments, frontend.CommentCreate)
	})
	r.Route(RouteProducts, func(r chi.Router) {
		r.Get(RouteRoot, frontend.ProductList)
		r.Get(RouteParamSlug, frontend.ProductDetail)
	})
	r.With(middleware.RequireSession).Get(RouteDashboard, frontend.Dashboard)
	r.Get(RouteLogin, authHandler.LoginForm)
	r.Post(RouteLogin, authHandler.Login)
	r.Post(RouteLogout, authHandler.Logout)
	r.Post(RouteLanguage, languageHandler.SetLanguage)
	r.Get(RouteHealth, healthHandler.Health)
	r.Get(RouteHealth+"/live", healthHandler.Liveness)
	r.Get(RouteHealth+"/ready", healthHandler.Readiness)
	r.NotFound(frontend.NotFound)

	return &testApp{db: db, cache: c, tokens: tokens, revocations: revocations, router: r, logs: logs}
}

// client is a tiny cookie-keeping browser for the test router.
type client struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) client(t *testing.T) *client {
	c := &client{t: t, app: a, cookies: make(map[string]*http.Cookie)}
	c.setCookie(middleware.LanguageCookieName, "en")
	return c
}

func (c *client) setCookie(name, value string) {
	c.cookies[name] = &http.Cookie{Name: name, Value: value}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.app.router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) login(email, password string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.post(RouteLogin, url.Values{"email": {email}, "password": {password}})
}

func (c *client) token() string {
	if ck, ok := c.cookies[session.TokenCookieName]; ok {
		return ck.Value
	}
	return ""
}
