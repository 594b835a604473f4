package avatar

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"io"
	"regexp"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/xerrors"
)

// VectorRootTag is the local name of the root element of SVG markup
const VectorRootTag = "svg"

// dataURIPrefix starts every data URI produced for recolored markup
const dataURIPrefix = "data:" + VectorMediaType + ";base64,"

// xmlDeclEncodingRegEx matches the encoding pseudo-attribute in something like:
//   <?xml version="1.0" encoding="ISO-8859-1"?>
var xmlDeclEncodingRegEx = regexp.MustCompile(`^\s*<\?xml[^>]*\sencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// VectorCodec parses and serializes SVG markup and wraps it as a data URI
type VectorCodec interface {
	Parse(text string) (*Document, error)
	Serialize(doc *Document) (string, error)
	DataURI(text string) string
}

// Document is parsed SVG markup. Only the root element is kept; the prolog
// is not written back.
type Document struct {
	Root *Element
}

// Element is a single markup element. Children holds *Element, xml.CharData,
// xml.Comment, xml.ProcInst and xml.Directive values in document order.
// Names keep their namespace prefix in Space, exactly as written.
type Element struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []interface{}
}

// Attribute returns the value of the named (unprefixed) attribute
func (e *Element) Attribute(local string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttribute overwrites the named (unprefixed) attribute, appending it if absent
func (e *Element) SetAttribute(local string, value string) {
	for i, a := range e.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			e.Attr[i].Value = value
			return
		}
	}
	e.Attr = append(e.Attr, xml.Attr{Name: xml.Name{Local: local}, Value: value})
}

// Walk calls fn for the element and all its descendants, depth first
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		if child, ok := c.(*Element); ok {
			child.Walk(fn)
		}
	}
}

// XMLCodec is the default VectorCodec built on encoding/xml raw tokens
type XMLCodec struct{}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;")
)

// utf8CharsetReader is used once text has already been decoded to UTF-8, so a
// declared encoding must not be applied twice
func utf8CharsetReader(label string, input io.Reader) (io.Reader, error) {
	return input, nil
}

// byteOrderMark may survive in text that was handed over already decoded
const byteOrderMark = "\ufeff"

// entityDeclRegEx matches general entities of an internal DTD subset, as
// written by Illustrator:
//   <!ENTITY ns_svg "http://www.w3.org/2000/svg">
var entityDeclRegEx = regexp.MustCompile(`<!ENTITY\s+([A-Za-z_:][\w.:-]*)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

func newMarkupDecoder(text string) *xml.Decoder {
	text = strings.TrimPrefix(text, byteOrderMark)
	decoder := xml.NewDecoder(strings.NewReader(text))
	decoder.Entity = markupEntities(text)
	decoder.CharsetReader = utf8CharsetReader
	return decoder
}

// markupEntities returns the HTML entities plus those declared in the
// document's internal subset
func markupEntities(text string) map[string]string {
	decls := entityDeclRegEx.FindAllStringSubmatch(text, -1)
	if len(decls) == 0 {
		return xml.HTMLEntity
	}
	entities := make(map[string]string, len(xml.HTMLEntity)+len(decls))
	for name, value := range xml.HTMLEntity {
		entities[name] = value
	}
	for _, decl := range decls {
		// the first declaration of an entity is binding
		if _, declared := entities[decl[1]]; declared {
			continue
		}
		entities[decl[1]] = decl[2] + decl[3]
	}
	return entities
}

// Parse builds a Document, verifying that elements are balanced and that
// there is exactly one root element
func (XMLCodec) Parse(text string) (*Document, error) {
	decoder := newMarkupDecoder(text)
	doc := new(Document)
	var stack []*Element
	for {
		tok, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, xerrors.Errorf("Unable to tokenize markup: %w", err)
		}
		switch t := xml.CopyToken(tok).(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name, Attr: t.Attr}
			if len(stack) == 0 {
				if doc.Root != nil {
					return nil, xerrors.Errorf("Second root element <%s> at line %d", qualifiedName(t.Name), lineOf(decoder))
				}
				doc.Root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1].Name != t.Name {
				return nil, xerrors.Errorf("Unexpected end element </%s> at line %d", qualifiedName(t.Name), lineOf(decoder))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, xerrors.Errorf("Text outside of root element at line %d", lineOf(decoder))
				}
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, t)
		default:
			// comments, processing instructions and directives outside the root are dropped
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, t)
			}
		}
	}
	if doc.Root == nil {
		return nil, xerrors.New("No root element")
	}
	if len(stack) > 0 {
		return nil, xerrors.Errorf("Unclosed element <%s>", qualifiedName(stack[len(stack)-1].Name))
	}
	return doc, nil
}

// Serialize writes the root element back as markup; empty elements are self-closed
func (XMLCodec) Serialize(doc *Document) (string, error) {
	if doc == nil || doc.Root == nil {
		return "", xerrors.New("Document has no root element")
	}
	var b strings.Builder
	if err := writeElement(&b, doc.Root); err != nil {
		return "", err
	}
	return b.String(), nil
}

// DataURI encodes markup as data:image/svg+xml;base64,...
func (XMLCodec) DataURI(text string) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString([]byte(text))
}

func writeElement(b *strings.Builder, e *Element) error {
	name := qualifiedName(e.Name)
	b.WriteByte('<')
	b.WriteString(name)
	for _, a := range e.Attr {
		b.WriteByte(' ')
		b.WriteString(qualifiedName(a.Name))
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Value))
		b.WriteByte('"')
	}
	if len(e.Children) == 0 {
		b.WriteString("/>")
		return nil
	}
	b.WriteByte('>')
	for _, c := range e.Children {
		switch child := c.(type) {
		case *Element:
			if err := writeElement(b, child); err != nil {
				return err
			}
		case xml.CharData:
			b.WriteString(textEscaper.Replace(string(child)))
		case xml.Comment:
			b.WriteString("<!--")
			b.Write(child)
			b.WriteString("-->")
		case xml.ProcInst:
			b.WriteString("<?")
			b.WriteString(child.Target)
			if len(child.Inst) > 0 {
				b.WriteByte(' ')
				b.Write(child.Inst)
			}
			b.WriteString("?>")
		case xml.Directive:
			b.WriteString("<!")
			b.Write(child)
			b.WriteByte('>')
		default:
			return xerrors.Errorf("Unable to serialize node of type %T", c)
		}
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
	return nil
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func lineOf(d *xml.Decoder) int {
	line, _ := d.InputPos()
	return line
}

// IsVectorMarkup reports whether the first element of text, after any XML
// declaration, comments, doctype and whitespace, is an svg element
func IsVectorMarkup(text string) bool {
	decoder := newMarkupDecoder(text)
	for {
		tok, err := decoder.RawToken()
		if err != nil {
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t.Name.Local == VectorRootTag
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return false
			}
		}
	}
}

// DecodeText converts content to UTF-8 text without a byte order mark. The
// encoding is taken from a byte order mark, the charset of contentType, an
// XML declaration, or is detected, in that order.
func DecodeText(content []byte, contentType string) (string, error) {
	enc, _, certain := charset.DetermineEncoding(content, contentType)
	if !certain {
		if m := xmlDeclEncodingRegEx.FindSubmatch(content); m != nil {
			if declared, _ := charset.Lookup(string(m[1])); declared != nil {
				enc = declared
			}
		}
	}
	text, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), content)
	if err != nil {
		return "", xerrors.Errorf("Unable to decode content as text: %w", err)
	}
	return string(text), nil
}

// classifyContent applies the vector/raster test to raw content
func classifyContent(content []byte, contentType string) *Classified {
	result := &Classified{FileType: filetype.Unknown}
	if kind := sniff(content); kind != filetype.Unknown && kind.MIME.Value != VectorMediaType {
		result.Kind = Raster
		result.Data = content
		result.FileType = kind
		return result
	}
	text, err := DecodeText(content, contentType)
	if err == nil && IsVectorMarkup(text) {
		result.Kind = Vector
		result.Text = text
		return result
	}
	result.Kind = Raster
	result.Data = content
	return result
}
