package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// placeholderPattern matches {{name}} tokens with a strict identifier shape
// (letters, digits, dot, underscore). Anything else is left verbatim.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Render substitutes every {{name}} token in pattern with the string form of
// ctx[name], or the empty string when the key is absent. Substitution is a
// single pass: replacement values are never re-scanned for placeholders.
// The same implementation backs HTML page composition and email rendering.
func Render(pattern string, ctx map[string]interface{}) string {
	return placeholderPattern.ReplaceAllStringFunc(pattern, func(token string) string {
		key := strings.TrimSpace(token[2 : len(token)-2])
		value, ok := ctx[key]
		if !ok || value == nil {
			return ""
		}
		return fmt.Sprint(value)
	})
}

// Renderer loads template files from a directory and composes pages.
type Renderer struct {
	dir string
}

func New(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// File renders the named template file against ctx. A missing template is an
// irrecoverable lookup failure surfaced to the caller.
func (r *Renderer) File(name string, ctx map[string]interface{}) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		return "", fmt.Errorf("load template %s: %w", name, err)
	}
	return Render(string(data), ctx), nil
}

// PageOptions controls how a content template is wrapped for delivery.
type PageOptions struct {
	Title          string
	Layout         string
	LayoutContext  map[string]interface{}
	ContentContext map[string]interface{}
	Scripts        []string
	// Context is serialized into the base shell for client-side scripts.
	Context interface{}
}

// Page renders a content template, optionally nests it inside a layout via
// the layout's {{content}} slot, and wraps the result in base.html.
func (r *Renderer) Page(contentTemplate string, opts PageOptions) (string, error) {
	content, err := r.File(contentTemplate, opts.ContentContext)
	if err != nil {
		return "", err
	}

	if opts.Layout != "" {
		layoutCtx := make(map[string]interface{}, len(opts.LayoutContext)+1)
		for k, v := range opts.LayoutContext {
			layoutCtx[k] = v
		}
		layoutCtx["content"] = content
		content, err = r.File(opts.Layout, layoutCtx)
		if err != nil {
			return "", err
		}
	}

	title := opts.Title
	if title == "" {
		title = "Client Portal"
	}

	ctxJSON := "{}"
	if opts.Context != nil {
		if data, err := json.Marshal(opts.Context); err == nil {
			// Guard against </script> breaking out of the inline block.
			ctxJSON = strings.ReplaceAll(string(data), "</", "<\\/")
		}
	}

	var scripts strings.Builder
	for _, src := range opts.Scripts {
		fmt.Fprintf(&scripts, "<script src=%q defer></script>\n", src)
	}

	return r.File("base.html", map[string]interface{}{
		"title":        title,
		"content":      content,
		"context_json": ctxJSON,
		"scripts":      scripts.String(),
	})
}
