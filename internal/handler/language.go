package handler

import (
	"net/http"
	"net/url"

	"github.com/qualitysolutions/qsite/internal/i18n"
	"github.com/qualitysolutions/qsite/internal/middleware"
)

// LanguageHandler switches the UI language.
type LanguageHandler struct {
	secureCookies bool
}

// NewLanguageHandler creates a LanguageHandler.
func NewLanguageHandler(secureCookies bool) *LanguageHandler {
	return &LanguageHandler{secureCookies: secureCookies}
}

// SetLanguage stores the chosen language and returns to the page the form
// was posted from.
// POST /language
func (h *LanguageHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}

	lang := r.PostFormValue("lang")
	if i18n.IsSupported(lang) {
		middleware.SetLanguageCookie(w, lang, h.secureCookies)
	}

	http.Redirect(w, r, safeRedirect(r.PostFormValue("next"), refererPath(r)), http.StatusSeeOther)
}

// refererPath returns the path of a same-host Referer, or "/".
func refererPath(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || ref.Path == "" {
		return RouteRoot
	}
	target := ref.Path
	if ref.RawQuery != "" {
		target += "?" + ref.RawQuery
	}
	return safeRedirect(target, RouteRoot)
}
