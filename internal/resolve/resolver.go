// Package resolve assembles a single self-contained HTML document from a
// virtual file set. Generated apps reference sibling stylesheets and
// scripts with literal relative paths; with no server behind the preview,
// textual inlining is the only way to execute multi-file output in one
// rendering context. The resolver also injects the instrumentation the
// sandbox needs: link-click interception and one-shot element selection.
package resolve

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// DefaultEntry is the entry document used when no path is given.
const DefaultEntry = "index.html"

var (
	linkTagRe   = regexp.MustCompile(`(?i)<link\b[^>]*>`)
	hrefAttrRe  = regexp.MustCompile(`(?i)\bhref\s*=\s*["']([^"']+)["']`)
	relStyleRe  = regexp.MustCompile(`(?i)\brel\s*=\s*["']?stylesheet["']?`)
	scriptTagRe = regexp.MustCompile(`(?is)<script\b[^>]*\bsrc\s*=\s*["'][^"']*["'][^>]*>\s*</script>`)
	srcAttrRe   = regexp.MustCompile(`(?i)\bsrc\s*=\s*["']([^"']+)["']`)
)

// Resolve produces a self-contained document for the entry path. It never
// fails: a missing entry renders a diagnostic page so navigation to a path
// the generated app references but never created shows a meaningful 404
// instead of a blank frame.
func Resolve(fs vfs.FileSet, entryPath string) string {
	if entryPath == "" {
		entryPath = DefaultEntry
	}

	entry, ok := fs.Get(entryPath)
	if !ok {
		return missingEntryDocument(entryPath, fs)
	}

	doc := inlineStylesheets(entry.Content, fs)
	doc = inlineScripts(doc, fs)
	return inject(doc, instrumentationScript)
}

// inlineStylesheets replaces <link rel="stylesheet" href="X"> tags whose
// href exactly matches a file in the set with an inline <style> block.
// Matching is literal: no normalization of "./" prefixes or query strings,
// so only the author's exact path strings resolve. Tags referencing files
// not in the set are left untouched; CDN stylesheets keep working.
func inlineStylesheets(doc string, fs vfs.FileSet) string {
	return linkTagRe.ReplaceAllStringFunc(doc, func(tag string) string {
		m := hrefAttrRe.FindStringSubmatch(tag)
		if m == nil {
			return tag
		}
		href := m[1]
		if !relStyleRe.MatchString(tag) && !strings.HasSuffix(href, ".css") {
			return tag
		}
		f, ok := fs.Get(href)
		if !ok {
			return tag
		}
		return "<style>\n" + f.Content + "\n</style>"
	})
}

// inlineScripts replaces <script src="X"></script> tags symmetrically.
func inlineScripts(doc string, fs vfs.FileSet) string {
	return scriptTagRe.ReplaceAllStringFunc(doc, func(tag string) string {
		m := srcAttrRe.FindStringSubmatch(tag)
		if m == nil {
			return tag
		}
		f, ok := fs.Get(m[1])
		if !ok {
			return tag
		}
		return "<script>\n" + f.Content + "\n</script>"
	})
}

// inject places a script before the closing body tag, or appends it when
// the document has none.
func inject(doc, script string) string {
	block := "<script>\n" + script + "\n</script>"
	lower := strings.ToLower(doc)
	if idx := strings.LastIndex(lower, "</body>"); idx >= 0 {
		return doc[:idx] + block + "\n" + doc[idx:]
	}
	return doc + "\n" + block
}

// missingEntryDocument renders the in-sandbox 404 page, listing the
// project's pages as links; the injected instrumentation turns their
// clicks into navigate messages. It is a resolution diagnostic, not an
// error: the host UI is never alerted.
func missingEntryDocument(entryPath string, fs vfs.FileSet) string {
	escaped := html.EscapeString(entryPath)

	var pages []string
	for _, f := range fs {
		if strings.HasSuffix(f.Path, ".html") {
			pages = append(pages, f.Path)
		}
	}
	sort.Strings(pages)

	var list strings.Builder
	if len(pages) > 0 {
		list.WriteString(`  <p>Pages in this project:</p>
  <ul class="pages">
`)
		for _, p := range pages {
			ep := html.EscapeString(p)
			list.WriteString(`    <li><a href="` + ep + `">` + ep + `</a></li>
`)
		}
		list.WriteString("  </ul>\n")
	}

	return `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Page Not Found</title>
<style>
  body { font-family: system-ui, sans-serif; display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; background: #f8f9fa; color: #343a40; }
  .card { text-align: center; }
  .card h1 { font-size: 48px; margin: 0 0 8px; }
  .card code { background: #e9ecef; padding: 2px 8px; border-radius: 4px; }
  .card ul.pages { list-style: none; padding: 0; }
</style>
</head>
<body>
<div class="card">
  <h1>404</h1>
  <p>No file named <code>` + escaped + `</code> exists in this project.</p>
` + list.String() + `</div>
` + "<script>\n" + instrumentationScript + "\n</script>" + `
</body>
</html>`
}
