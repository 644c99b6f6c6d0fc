package mailing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/mailflow/internal/domain"
)

func TestRenderContactVars(t *testing.T) {
	ts := NewTemplateService()
	vars := ContactVars(domain.Contact{Email: "ann.lee@example.com", Name: "Ann Lee", Company: "Acme"})

	out, err := ts.Render("", "Hi {{ first_name }} from {{ company }} <{{ email }}>", vars)
	require.NoError(t, err)
	assert.Equal(t, "Hi Ann from Acme <ann.lee@example.com>", out)
}

func TestDefaultFilter(t *testing.T) {
	ts := NewTemplateService()
	vars := ContactVars(domain.Contact{Email: "x@example.com"})

	out, err := ts.Render("", `Dear {{ name | default: "Broker Partner" }},`, vars)
	require.NoError(t, err)
	assert.Equal(t, "Dear Broker Partner,", out)
}

func TestCustomFilters(t *testing.T) {
	ts := NewTemplateService()
	vars := map[string]any{"email": "john.doe@example.com", "name": "aNN"}

	out, err := ts.Render("", "{{ email | email_domain }} {{ email | mask_email }} {{ name | capitalize }}", vars)
	require.NoError(t, err)
	assert.Equal(t, "example.com jo***@example.com Ann", out)

	for name, want := range map[string]string{"élodie": "Élodie", "ÖZGE": "Özge", "łukasz": "Łukasz"} {
		out, err := ts.Render("", "{{ name | capitalize }}", map[string]any{"name": name})
		require.NoError(t, err)
		assert.Equal(t, want, out)
	}
}

func TestRenderParseErrorReturnsSource(t *testing.T) {
	ts := NewTemplateService()
	src := "Hello {% if %}"
	out, err := ts.Render("", src, nil)
	assert.Error(t, err)
	assert.Equal(t, src, out)
	assert.Error(t, ts.Parse(src))
}

func TestRenderCaches(t *testing.T) {
	ts := NewTemplateService()
	tmpl := domain.EmailTemplate{ID: "t1", LastModified: time.Unix(100, 0)}
	key := CacheKey(tmpl, "subject")

	out, err := ts.Render(key, "A {{ name }}", map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "A x", out)

	// Same key reuses the compiled template even if the source differs.
	out, err = ts.Render(key, "B {{ name }}", map[string]any{"name": "y"})
	require.NoError(t, err)
	assert.Equal(t, "A y", out)

	assert.Equal(t, 1, ts.Cached())
	ts.ClearCache()
	assert.Equal(t, 0, ts.Cached())
	out, err = ts.Render(key, "B {{ name }}", map[string]any{"name": "y"})
	require.NoError(t, err)
	assert.Equal(t, "B y", out)

	// A new revision gets a new key.
	tmpl.LastModified = time.Unix(200, 0)
	assert.NotEqual(t, key, CacheKey(tmpl, "subject"))
}

func TestDefaultTemplateRenders(t *testing.T) {
	ts := NewTemplateService()
	tmpl := domain.DefaultTemplate()
	out, err := ts.Render("", tmpl.HTMLContent, ContactVars(domain.Contact{Email: "a@b.co"}))
	require.NoError(t, err)
	assert.Equal(t, tmpl.HTMLContent, out)
}

func TestPlainText(t *testing.T) {
	text, err := PlainText(`<h1>Global Forex Awards</h1><p>We are <strong>delighted</strong>.</p>`)
	require.NoError(t, err)
	assert.Contains(t, text, "Global Forex Awards")
	assert.Contains(t, text, "**delighted**")
	assert.NotContains(t, text, "<p>")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "abc", Truncate("abc", 500))
	assert.Equal(t, "", Truncate("abc", 0))
}
