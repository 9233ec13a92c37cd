// Package seo builds the sitemap and robots.txt for the public pages.
package seo

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/qualitysolutions/qsite/internal/store"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Change frequencies used by the site.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapBuilder collects the public URLs of the site.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a builder for absolute URLs under siteURL.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: strings.TrimSuffix(siteURL, "/"),
		urls:    make([]SitemapURL, 0),
	}
}

// AddHomepage adds the homepage and the two listing pages.
func (b *SitemapBuilder) AddHomepage() {
	b.urls = append(b.urls,
		SitemapURL{Loc: b.siteURL + "/", ChangeFreq: ChangeFreqDaily, Priority: "1.0"},
		SitemapURL{Loc: b.siteURL + "/articles", ChangeFreq: ChangeFreqDaily, Priority: "0.9"},
		SitemapURL{Loc: b.siteURL + "/products", ChangeFreq: ChangeFreqDaily, Priority: "0.9"},
	)
}

// AddArticles adds one URL per published article.
func (b *SitemapBuilder) AddArticles(entries []store.SitemapEntry) {
	for _, e := range entries {
		b.add("/articles/", e, ChangeFreqMonthly, "0.8")
	}
}

// AddProducts adds one URL per active product.
func (b *SitemapBuilder) AddProducts(entries []store.SitemapEntry) {
	for _, e := range entries {
		b.add("/products/", e, ChangeFreqWeekly, "0.7")
	}
}

func (b *SitemapBuilder) add(prefix string, e store.SitemapEntry, freq ChangeFreq, priority string) {
	u := SitemapURL{
		Loc:        b.siteURL + prefix + e.Slug,
		ChangeFreq: freq,
		Priority:   priority,
	}
	if !e.UpdatedAt.IsZero() {
		u.LastMod = e.UpdatedAt.UTC().Format(time.RFC3339)
	}
	b.urls = append(b.urls, u)
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(output, xmlBytes...), nil
}

// GenerateSitemap builds the full sitemap for the given content.
func GenerateSitemap(siteURL string, articles, products []store.SitemapEntry) ([]byte, error) {
	builder := NewSitemapBuilder(siteURL)
	builder.AddHomepage()
	builder.AddArticles(articles)
	builder.AddProducts(products)
	return builder.Build()
}
