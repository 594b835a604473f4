package avatar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recolorText(t *testing.T, text string, color string) string {
	t.Helper()
	codec := XMLCodec{}
	doc, err := codec.Parse(text)
	require.NoError(t, err)
	require.NoError(t, Recolor(doc, color))
	out, err := codec.Serialize(doc)
	require.NoError(t, err)
	return out
}

func TestRecolor(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		color string
		out   string
	}{
		{
			"fill and stroke",
			`<svg fill="black"><path stroke="black"/></svg>`, "#112233",
			`<svg fill="#112233"><path stroke="#112233"/></svg>`,
		},
		{
			"sibling without fill untouched",
			`<svg><path fill="red" d="M0 0"/><path d="M1 1"/></svg>`, "#00ff00",
			`<svg><path fill="#00ff00" d="M0 0"/><path d="M1 1"/></svg>`,
		},
		{
			"nothing added",
			`<svg viewBox="0 0 1 1"><path d="M0 0"/></svg>`, "#00ff00",
			`<svg viewBox="0 0 1 1"><path d="M0 0"/></svg>`,
		},
		{
			"empty fill stays empty",
			`<svg fill=""><path stroke=""/></svg>`, "#00ff00",
			`<svg fill=""><path stroke=""/></svg>`,
		},
		{
			"nested paths",
			`<svg><g fill="blue"><g><path fill="red"/></g></g></svg>`, "#abcdef",
			`<svg><g fill="blue"><g><path fill="#abcdef"/></g></g></svg>`,
		},
		{
			"other shapes untouched",
			`<svg><circle fill="red"/><rect stroke="red"/></svg>`, "#abcdef",
			`<svg><circle fill="red"/><rect stroke="red"/></svg>`,
		},
		{
			"inline style",
			`<svg style="fill: red; opacity: 0.5"><path style="stroke:blue;stroke-width:2"/></svg>`, "#123456",
			`<svg style="fill: #123456; opacity: 0.5"><path style="stroke: #123456; stroke-width: 2"/></svg>`,
		},
		{
			"inline style without paint keeps formatting",
			`<svg><path style="opacity:0.5"/></svg>`, "#123456",
			`<svg><path style="opacity:0.5"/></svg>`,
		},
		{
			"important kept",
			`<svg><path style="fill:red !important"/></svg>`, "#123456",
			`<svg><path style="fill: #123456 !important"/></svg>`,
		},
		{
			"prefixed path",
			`<svg:svg xmlns:svg="http://www.w3.org/2000/svg" fill="red"><svg:path stroke="red"/></svg:svg>`, "#000000",
			`<svg:svg xmlns:svg="http://www.w3.org/2000/svg" fill="#000000"><svg:path stroke="#000000"/></svg:svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, recolorText(t, tt.in, tt.color))
		})
	}
}

func TestRecolorIsIdempotent(t *testing.T) {
	in := `<svg fill="#112233" style="stroke:#112233"><path stroke="#112233" d="M0 0"/><path d="M1 1"/></svg>`
	once := recolorText(t, in, "#112233")
	assert.Equal(t, in, once)
	assert.Equal(t, once, recolorText(t, once, "#112233"))
}

func TestRecolorConvergesToSingleTone(t *testing.T) {
	out := recolorText(t, `<svg><path fill="red"/><path fill="blue" stroke="green"/></svg>`, "white")
	assert.Equal(t, `<svg><path fill="white"/><path fill="white" stroke="white"/></svg>`, out)
}

func TestRecolorWithoutRoot(t *testing.T) {
	assert.Error(t, Recolor(nil, "red"))
	assert.Error(t, Recolor(&Document{}, "red"))
}
