package avatar

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/xerrors"
)

// paints are the presentation attributes and style properties that get recolored
var paints = []string{"fill", "stroke"}

// recolorTag is the element, besides the root, whose paints are recolored
const recolorTag = "path"

// Recolor overwrites the fill and stroke of the root element and of every
// path element, whether given as attribute or inline style, with color.
// Paints that are absent or empty stay absent: nothing is ever added.
func Recolor(doc *Document, color string) error {
	if doc == nil || doc.Root == nil {
		return xerrors.New("Document has no root element")
	}
	var err error
	doc.Root.Walk(func(el *Element) {
		if err != nil {
			return
		}
		if el != doc.Root && el.Name.Local != recolorTag {
			return
		}
		err = recolorElement(el, color)
	})
	return err
}

func recolorElement(el *Element, color string) error {
	for _, paint := range paints {
		if value, ok := el.Attribute(paint); ok && len(strings.TrimSpace(value)) > 0 {
			el.SetAttribute(paint, color)
		}
	}

	style, ok := el.Attribute("style")
	if !ok || len(strings.TrimSpace(style)) == 0 {
		return nil
	}
	// the last declaration only ends at a semicolon
	if !strings.HasSuffix(strings.TrimSpace(style), ";") {
		style += ";"
	}
	declarations, err := parser.ParseDeclarations(style)
	if err != nil {
		return xerrors.Errorf("Unable to parse style of <%s>: %w", qualifiedName(el.Name), err)
	}
	changed := false
	for _, d := range declarations {
		if !isPaint(d.Property) || len(strings.TrimSpace(d.Value)) == 0 || d.Value == color {
			continue
		}
		d.Value = color
		changed = true
	}
	// untouched styles keep their original formatting
	if changed {
		el.SetAttribute("style", formatDeclarations(declarations))
	}
	return nil
}

func isPaint(property string) bool {
	for _, paint := range paints {
		if strings.EqualFold(strings.TrimSpace(property), paint) {
			return true
		}
	}
	return false
}

func formatDeclarations(declarations []*css.Declaration) string {
	parts := make([]string, 0, len(declarations))
	for _, d := range declarations {
		part := d.Property + ": " + d.Value
		if d.Important {
			part += " !important"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
