package generate

import (
	"bytes"
	"html"
	"log"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var planMarkdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		goldmarkhtml.WithUnsafe(),
	),
)

// RenderPlan converts the plan markdown to HTML for the studio UI. A
// conversion failure degrades to an escaped <pre> block rather than
// erroring; the plan is presentation only.
func RenderPlan(markdown string) string {
	var buf bytes.Buffer
	if err := planMarkdown.Convert([]byte(markdown), &buf); err != nil {
		log.Printf("generate: rendering plan markdown: %v", err)
		return "<pre>" + html.EscapeString(markdown) + "</pre>"
	}
	return buf.String()
}
