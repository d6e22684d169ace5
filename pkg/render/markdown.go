package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

func newMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()))
}

// Markdown converts group help text to HTML. Raw HTML in the source is
// omitted by goldmark's default renderer.
func (r *Renderer) Markdown(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
