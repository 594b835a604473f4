package avatar

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

const illustratorSVG = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n" +
	"<!DOCTYPE svg PUBLIC \"-//W3C//DTD SVG 1.1//EN\" \"http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd\" [\n" +
	"\t<!ENTITY ns_svg \"http://www.w3.org/2000/svg\">\n" +
	"\t<!ENTITY ns_xlink 'http://www.w3.org/1999/xlink'>\n" +
	"]>\n" +
	`<svg xmlns="&ns_svg;" xmlns:xlink="&ns_xlink;" fill="red"><path fill="red"/></svg>`

func utf16LE(t *testing.T, text string) []byte {
	t.Helper()
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(text)
	require.NoError(t, err)
	return []byte(encoded)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestIsVectorMarkup(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"bare root", `<svg/>`, true},
		{"with declaration", `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + `<svg xmlns="http://www.w3.org/2000/svg"></svg>`, true},
		{"declared latin1", `<?xml version="1.0" encoding="ISO-8859-1"?><svg></svg>`, true},
		{"comment and doctype", "<!-- icon -->\n<!DOCTYPE svg PUBLIC \"-//W3C//DTD SVG 1.1//EN\" \"http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd\">\n<svg></svg>", true},
		{"prefixed root", `<svg:svg xmlns:svg="http://www.w3.org/2000/svg"></svg:svg>`, true},
		{"leading whitespace", "  \n\t<svg></svg>", true},
		{"byte order mark", "\ufeff<svg fill=\"red\"/>", true},
		{"internal subset entities", illustratorSVG, true},
		{"undeclared entity", `<svg xmlns="&ns_svg;"/>`, false},
		{"html root", `<html><svg></svg></html>`, false},
		{"text first", `hello <svg></svg>`, false},
		{"plain text", `not markup at all`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVectorMarkup(tt.text))
		})
	}
}

func TestClassifyContent(t *testing.T) {
	vector := classifyContent([]byte(`<svg fill="red"/>`), "")
	assert.Equal(t, Vector, vector.Kind)
	assert.Equal(t, `<svg fill="red"/>`, vector.Text)
	assert.Nil(t, vector.Data)

	data := pngBytes(t)
	raster := classifyContent(data, "")
	assert.Equal(t, Raster, raster.Kind)
	assert.Equal(t, data, raster.Data)
	assert.Equal(t, "image/png", raster.FileType.MIME.Value)

	for name, content := range map[string][]byte{
		"utf-8 bom":    []byte("\xef\xbb\xbf<svg fill=\"red\"/>"),
		"utf-16le bom": utf16LE(t, `<svg fill="red"/>`),
	} {
		bom := classifyContent(content, "")
		assert.Equal(t, Vector, bom.Kind, name)
		assert.Equal(t, `<svg fill="red"/>`, bom.Text, name)
	}

	illustrator := classifyContent([]byte(illustratorSVG), "")
	assert.Equal(t, Vector, illustrator.Kind)

	other := classifyContent([]byte("GIF-ish but not really"), "")
	assert.Equal(t, Raster, other.Kind)
	assert.Empty(t, other.Text)
}

func TestXMLCodecRoundTrip(t *testing.T) {
	codec := XMLCodec{}
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"self closing", `<svg fill="black"><path stroke="black"/></svg>`, `<svg fill="black"><path stroke="black"/></svg>`},
		{"empty pair collapses", `<svg><g></g></svg>`, `<svg><g/></svg>`},
		{"prolog dropped", `<?xml version="1.0"?><!-- c --><svg/>`, `<svg/>`},
		{"prefixes kept", `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"><use xlink:href="#a"/></svg>`,
			`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"><use xlink:href="#a"/></svg>`},
		{"escaping", `<svg><title>a &amp; b &lt; c</title><text x="1" data-q="&quot;q&quot;">&gt;</text></svg>`,
			`<svg><title>a &amp; b &lt; c</title><text x="1" data-q="&quot;q&quot;">&gt;</text></svg>`},
		{"comments inside kept", `<svg><!-- keep --><path/></svg>`, `<svg><!-- keep --><path/></svg>`},
		{"html entity", `<svg><title>a&nbsp;b</title></svg>`, "<svg><title>a\u00a0b</title></svg>"},
		{"declared entities expanded", illustratorSVG,
			`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" fill="red"><path fill="red"/></svg>`},
		{"byte order mark dropped", "\ufeff<svg/>", `<svg/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := codec.Parse(tt.in)
			require.NoError(t, err)
			out, err := codec.Serialize(doc)
			require.NoError(t, err)
			assert.Equal(t, tt.out, out)
		})
	}
}

func TestXMLCodecParseErrors(t *testing.T) {
	codec := XMLCodec{}
	for _, text := range []string{
		`<svg><path></svg>`,
		`<svg>`,
		`<svg/><svg/>`,
		`<svg/>trailing`,
		`<!-- only a comment -->`,
		`<svg fill="red></svg>`,
	} {
		_, err := codec.Parse(text)
		assert.Error(t, err, text)
	}
}

func TestXMLCodecDataURI(t *testing.T) {
	uri := XMLCodec{}.DataURI(`<svg/>`)
	require.True(t, strings.HasPrefix(uri, "data:image/svg+xml;base64,"))
	assert.NotContains(t, uri, "\n")
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/svg+xml;base64,"))
	require.NoError(t, err)
	assert.Equal(t, `<svg/>`, string(decoded))
}

func TestDecodeText(t *testing.T) {
	latin1 := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><svg><title>caf\xe9</title></svg>")
	text, err := DecodeText(latin1, "")
	require.NoError(t, err)
	assert.Contains(t, text, "café")

	text, err = DecodeText([]byte("<svg><title>caf\xe9</title></svg>"), "image/svg+xml; charset=ISO-8859-1")
	require.NoError(t, err)
	assert.Contains(t, text, "café")

	text, err = DecodeText([]byte("<svg><title>café</title></svg>"), "")
	require.NoError(t, err)
	assert.Contains(t, text, "café")

	text, err = DecodeText([]byte("\xef\xbb\xbf<svg><title>café</title></svg>"), "")
	require.NoError(t, err)
	assert.Equal(t, "<svg><title>café</title></svg>", text)

	text, err = DecodeText(utf16LE(t, "<svg><title>café</title></svg>"), "image/svg+xml")
	require.NoError(t, err)
	assert.Equal(t, "<svg><title>café</title></svg>", text)
}
