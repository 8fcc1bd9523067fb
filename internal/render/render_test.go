package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSubstitutesKnownKeys(t *testing.T) {
	ctx := map[string]interface{}{
		"client_name": "Ada",
		"amount":      49.5,
		"order_id":    7,
	}
	out := Render("Hi {{client_name}}, order #{{order_id}} totals {{amount}}", ctx)
	assert.Equal(t, "Hi Ada, order #7 totals 49.5", out)
}

func TestRenderIsDeterministic(t *testing.T) {
	ctx := map[string]interface{}{"name": "Grace"}
	first := Render("Hello {{name}} {{name}}", ctx)
	second := Render("Hello {{name}} {{name}}", ctx)
	assert.Equal(t, first, second)
	assert.Equal(t, "Hello Grace Grace", first)
}

func TestRenderAbsentKeyBecomesEmpty(t *testing.T) {
	out := Render("Hello {{missing}}!", map[string]interface{}{})
	assert.Equal(t, "Hello !", out)
}

func TestRenderNilValueBecomesEmpty(t *testing.T) {
	out := Render("Value: {{val}}", map[string]interface{}{"val": nil})
	assert.Equal(t, "Value: ", out)
}

func TestRenderLeavesMalformedTokensVerbatim(t *testing.T) {
	ctx := map[string]interface{}{"name": "x"}
	assert.Equal(t, "{{ }}", Render("{{ }}", ctx))
	assert.Equal(t, "{{na me}}", Render("{{na me}}", ctx))
	assert.Equal(t, "{name}", Render("{name}", ctx))
}

func TestRenderDoesNotRecurse(t *testing.T) {
	// A substituted value containing placeholder syntax stays literal.
	ctx := map[string]interface{}{
		"outer": "{{inner}}",
		"inner": "should never appear",
	}
	assert.Equal(t, "{{inner}}", Render("{{outer}}", ctx))
}

func TestRenderWhitespaceInsideToken(t *testing.T) {
	out := Render("{{  name  }}", map[string]interface{}{"name": "ok"})
	assert.Equal(t, "ok", out)
}

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRendererFileMissingTemplate(t *testing.T) {
	r := New(t.TempDir())
	_, err := r.File("nope.html", nil)
	require.Error(t, err)
}

func TestRendererPageComposition(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "base.html", "<title>{{title}}</title><script>{{context_json}}</script>{{scripts}}<body>{{content}}</body>")
	writeTemplate(t, dir, "layout.html", "<nav>{{brand_name}}</nav><main>{{content}}</main>")
	writeTemplate(t, dir, "page.html", "<h1>Hello {{user_name}}</h1>")

	r := New(dir)
	html, err := r.Page("page.html", PageOptions{
		Title:          "Portal",
		Layout:         "layout.html",
		LayoutContext:  map[string]interface{}{"brand_name": "Acme"},
		ContentContext: map[string]interface{}{"user_name": "Ada"},
		Scripts:        []string{"/static/js/client.js"},
		Context:        map[string]interface{}{"branding": map[string]interface{}{"brand_name": "Acme"}},
	})
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Portal</title>")
	assert.Contains(t, html, "<nav>Acme</nav>")
	assert.Contains(t, html, "<h1>Hello Ada</h1>")
	assert.Contains(t, html, `src="/static/js/client.js"`)
	assert.Contains(t, html, `"brand_name":"Acme"`)
}

func TestRendererPageEscapesScriptCloseInContext(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "base.html", "{{context_json}}|{{content}}")
	writeTemplate(t, dir, "page.html", "x")

	r := New(dir)
	html, err := r.Page("page.html", PageOptions{
		Context: map[string]interface{}{"evil": "</script><script>alert(1)"},
	})
	require.NoError(t, err)
	assert.False(t, strings.Contains(html, "</script><script>alert(1)"))
	assert.Contains(t, html, `<\/script>`)
}

func TestRendererPageDefaultTitle(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "base.html", "{{title}}")
	writeTemplate(t, dir, "page.html", "x")

	r := New(dir)
	html, err := r.Page("page.html", PageOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Client Portal", html)
}
