package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRendersMarkdown(t *testing.T) {
	p := NewParser()

	out, err := p.Parse([]byte("**Ran 5k**\n\n- stretch\n- sleep"))

	require.NoError(t, err)
	assert.Contains(t, string(out), "<strong>Ran 5k</strong>")
	assert.Contains(t, string(out), "<li>stretch</li>")
}

func TestParseStripsScripts(t *testing.T) {
	p := NewParser()

	out := p.RenderString(`hello <script>alert(1)</script> <a href="javascript:alert(1)">x</a>`)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "hello")
}

func TestParseLinksAreNoFollow(t *testing.T) {
	p := NewParser()

	out := p.RenderString("see https://example.com/plan")

	assert.Contains(t, out, `href="https://example.com/plan"`)
	assert.Contains(t, out, "nofollow")
}
