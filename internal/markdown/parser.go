package markdown

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Parser renders user-written Markdown (comments, goal notes, check-in notes)
// to sanitized HTML.
type Parser struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Parser{
		md:     md,
		policy: policy,
	}
}

func (p *Parser) Parse(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := p.md.Convert(source, &buf)
	if err != nil {
		return nil, err
	}
	return p.policy.SanitizeBytes(buf.Bytes()), nil
}

// RenderString is Parse for template use. On failure the escaped source is returned.
func (p *Parser) RenderString(source string) string {
	out, err := p.Parse([]byte(source))
	if err != nil {
		return p.policy.Sanitize(source)
	}
	return string(out)
}
