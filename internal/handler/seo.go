package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/qualitysolutions/qsite/internal/cache"
	"github.com/qualitysolutions/qsite/internal/seo"
	"github.com/qualitysolutions/qsite/internal/store"
)

const (
	sitemapCacheKey = "seo:sitemap"
	sitemapCacheTTL = 10 * time.Minute
)

// SEOHandler serves robots.txt and sitemap.xml.
type SEOHandler struct {
	queries    *store.Queries
	cache      cache.Cache
	baseURL    string
	production bool
	logger     *slog.Logger
}

// NewSEOHandler creates an SEOHandler. Crawlers are only invited in
// production. c may be nil.
func NewSEOHandler(db store.DBTX, c cache.Cache, baseURL string, production bool, logger *slog.Logger) *SEOHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SEOHandler{
		queries:    store.New(db),
		cache:      c,
		baseURL:    baseURL,
		production: production,
		logger:     logger,
	}
}

// Robots handles GET /robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.BuildRobots(seo.RobotsConfig{
		SiteURL:     h.baseURL,
		DisallowAll: !h.production,
	})))
}

// Sitemap handles GET /sitemap.xml.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cache != nil {
		if data, err := h.cache.Get(ctx, sitemapCacheKey); err == nil {
			writeXML(w, data)
			return
		}
	}

	articles, err := h.queries.ListPublishedArticleSlugs(ctx)
	if err != nil {
		h.logger.Error("listing articles for sitemap", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	products, err := h.queries.ListActiveProductSlugs(ctx)
	if err != nil {
		h.logger.Error("listing products for sitemap", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data, err := seo.GenerateSitemap(h.baseURL, articles, products)
	if err != nil {
		h.logger.Error("building sitemap", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, sitemapCacheKey, data, sitemapCacheTTL); err != nil {
			h.logger.Warn("caching sitemap", "error", err)
		}
	}
	writeXML(w, data)
}

func writeXML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(data)
}
