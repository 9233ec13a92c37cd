package render

import (
	"database/sql"
	"fmt"
	"html/template"
	"math"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/qualitysolutions/qsite/internal/i18n"
	"github.com/qualitysolutions/qsite/internal/model"
)

var arabicMonths = [...]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// TemplateFuncs returns the functions available to every template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"T":              i18n.T,
		"dir":            i18n.Direction,
		"langName":       i18n.LanguageName,
		"languages":      languages,
		"formatDate":     FormatDate,
		"formatNullDate": formatNullDate,
		"formatPrice":    FormatPrice,
		"formatNumber":   FormatNumber,
		"roleName":       roleName,
		"markdown":       Markdown,
		"truncate":       Truncate,
		"stars":          Stars,
		"add":            add,
	}
}

func languages() []string { return i18n.SupportedLanguages }

func formatNullDate(lang string, t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return FormatDate(lang, t.Time)
}

func roleName(lang string, r model.Role) string {
	return i18n.T(lang, "role."+string(r))
}

func add(a, b int) int { return a + b }

// FormatDate renders t as "2 January 2006" with month names in lang.
func FormatDate(lang string, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if lang == "ar" {
		return fmt.Sprintf("%d %s %d", t.Day(), arabicMonths[t.Month()-1], t.Year())
	}
	return t.Format("2 January 2006")
}

// FormatPrice formats an amount with two decimals and the grouping rules
// of lang.
func FormatPrice(lang string, v float64) string {
	return message.NewPrinter(language.Make(lang)).Sprintf("%.2f", v)
}

// FormatNumber formats an integer with the grouping rules of lang.
func FormatNumber(lang string, n int64) string {
	return message.NewPrinter(language.Make(lang)).Sprintf("%d", n)
}

// Truncate shortens s to at most n characters, adding an ellipsis.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}

// Stars maps a 0..5 rating to five filled/empty flags, rounding to the
// nearest whole star.
func Stars(rating float64) []bool {
	filled := int(math.Round(math.Max(0, math.Min(5, rating))))
	out := make([]bool, 5)
	for i := range filled {
		out[i] = true
	}
	return out
}
