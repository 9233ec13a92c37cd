// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/qualitysolutions/qsite/internal/i18n"
)

// LanguageCookieName is the cookie name for language preference.
const LanguageCookieName = "qs_lang"

const languageCookieMaxAge = 365 * 24 * 60 * 60

// Language detects the request language and stores it in the context.
// Priority order:
// 1. The qs_lang cookie, when it names a supported language
// 2. The Accept-Language header
// 3. Arabic
func Language(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := detectLanguage(r)
		ctx := context.WithValue(r.Context(), ContextKeyLanguage, lang)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func detectLanguage(r *http.Request) string {
	if c, err := r.Cookie(LanguageCookieName); err == nil {
		code := strings.ToLower(c.Value)
		if i18n.IsSupported(code) {
			return code
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return i18n.MatchLanguage(accept)
	}
	return i18n.DefaultLanguage
}

// GetLang returns the request language, defaulting to Arabic when the
// Language middleware did not run.
func GetLang(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLanguage
}

// SetLanguageCookie stores the language preference for a year.
func SetLanguageCookie(w http.ResponseWriter, lang string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     LanguageCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   languageCookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
