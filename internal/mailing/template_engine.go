// Package mailing renders personalised email content: Liquid variable
// substitution for subjects and bodies, and plain-text alternatives
// derived from HTML.
package mailing

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/osteele/liquid"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/pkg/logger"
)

// TemplateService handles Liquid template rendering with caching.
type TemplateService struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewTemplateService creates a template service with the mail filters registered.
func NewTemplateService() *TemplateService {
	ts := &TemplateService{engine: liquid.NewEngine()}
	ts.registerFilters()
	return ts
}

func (ts *TemplateService) registerFilters() {
	// {{ name | default: "Friend" }}
	ts.engine.RegisterFilter("default", func(value any, fallback string) any {
		if value == nil {
			return fallback
		}
		if s := fmt.Sprintf("%v", value); s == "" || s == "<nil>" {
			return fallback
		}
		return value
	})

	// {{ name | capitalize }}
	ts.engine.RegisterFilter("capitalize", func(s string) string {
		if s == "" {
			return s
		}
		r, n := utf8.DecodeRuneInString(s)
		return string(unicode.ToUpper(r)) + strings.ToLower(s[n:])
	})

	// {{ email | urlencode }}
	ts.engine.RegisterFilter("urlencode", url.QueryEscape)

	// {{ company | escape }}
	ts.engine.RegisterFilter("escape", html.EscapeString)

	// {{ email | email_domain }}
	ts.engine.RegisterFilter("email_domain", func(email string) string {
		if i := strings.LastIndex(email, "@"); i >= 0 {
			return email[i+1:]
		}
		return ""
	})

	// {{ email | mask_email }}
	ts.engine.RegisterFilter("mask_email", logger.RedactEmail)
}

// Parse compiles a template string and returns any syntax errors.
func (ts *TemplateService) Parse(src string) error {
	_, err := ts.engine.ParseString(src)
	if err != nil {
		return err
	}
	return nil
}

// Render processes src with vars. A non-empty cacheKey caches the compiled
// template; on error the original source is returned with the error.
func (ts *TemplateService) Render(cacheKey, src string, vars map[string]any) (string, error) {
	if cacheKey != "" {
		if cached, ok := ts.cache.Load(cacheKey); ok {
			return ts.execute(cached.(*liquid.Template), src, vars)
		}
	}

	tpl, err := ts.engine.ParseString(src)
	if err != nil {
		logger.Warn("template parse failed", "cache_key", cacheKey, "error", err)
		return src, err
	}
	if cacheKey != "" {
		ts.cache.Store(cacheKey, tpl)
	}
	return ts.execute(tpl, src, vars)
}

func (ts *TemplateService) execute(tpl *liquid.Template, src string, vars map[string]any) (string, error) {
	out, err := tpl.RenderString(vars)
	if err != nil {
		logger.Warn("template render failed", "error", err)
		return src, err
	}
	return out, nil
}

// ClearCache drops every compiled template.
func (ts *TemplateService) ClearCache() {
	ts.cache.Range(func(key, _ any) bool {
		ts.cache.Delete(key)
		return true
	})
}

// Cached reports how many compiled templates are held.
func (ts *TemplateService) Cached() int {
	n := 0
	ts.cache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// ContactVars builds the variables available to a template for one contact.
func ContactVars(c domain.Contact) map[string]any {
	first := c.Name
	if i := strings.IndexByte(first, ' '); i > 0 {
		first = first[:i]
	}
	return map[string]any{
		"id":         c.ID,
		"email":      c.Email,
		"name":       c.Name,
		"first_name": first,
		"company":    c.Company,
	}
}

// CacheKey identifies one part of one template revision.
func CacheKey(t domain.EmailTemplate, part string) string {
	return t.ID + ":" + part + ":" + t.LastModified.UTC().Format("20060102T150405.000000000")
}
