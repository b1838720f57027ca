package resolve

import (
	"regexp"
	"strings"

	"appatlas/internal/object"
)

// Translation locators resolve to the quoted display text for the requested
// locale. Locale preference: exact match, then same language prefix, then
// any available entry. Long values are truncated so resolved expressions
// stay readable.
var translationRefRe = regexp.MustCompile(`(?i)#"urn:appian:translation-string:v1:([a-f0-9\-]{36})"`)

const maxTranslationLen = 100

func (r *Resolver) indexTranslation(rec *object.Record) {
	texts := make(map[string]string)
	for _, item := range listField(rec.Data, "translations") {
		locale, _ := item["locale"].(string)
		value, _ := item["value"].(string)
		if locale == "" || value == "" {
			continue
		}
		texts[locale] = value
	}
	if len(texts) == 0 {
		return
	}
	r.texts[rec.UUID] = texts
	if base := object.BaseAddress(rec.UUID); base != "" && base != rec.UUID {
		setDefault(r.texts, base, texts)
	}
}

func (r *Resolver) resolveTranslations(code, locale string) string {
	return translationRefRe.ReplaceAllStringFunc(code, func(m string) string {
		token := translationRefRe.FindStringSubmatch(m)[1]
		texts := r.texts[strings.ToLower(token)]
		if texts == nil {
			texts = r.texts[token]
		}
		if len(texts) == 0 {
			return m
		}
		text := bestTranslation(texts, locale)
		text = strings.ReplaceAll(text, `"`, `\"`)
		if runes := []rune(text); len(runes) > maxTranslationLen {
			text = string(runes[:maxTranslationLen]) + "..."
		}
		return `"` + text + `"`
	})
}

func bestTranslation(texts map[string]string, locale string) string {
	if t, ok := texts[locale]; ok {
		return t
	}
	lang := strings.SplitN(locale, "-", 2)[0]
	var fallbackKey string
	for key := range texts {
		if strings.SplitN(key, "-", 2)[0] == lang {
			return texts[key]
		}
		if fallbackKey == "" || key < fallbackKey {
			fallbackKey = key
		}
	}
	return texts[fallbackKey]
}
