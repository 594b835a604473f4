package avatar

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/sirupsen/logrus"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/xerrors"
)

// textBaseline places the middle of the letters slightly below the center
const textBaseline = 1.8

type iconLoader interface {
	Load(ctx context.Context, rawURL string) ([]byte, types.Type, error)
}

// Generator draws avatars: a background derived from an identifier, overlaid
// with letters or a custom icon
type Generator struct {
	resolver Resolver
	log      *logrus.Entry
}

// NewGenerator creates a generator. Options are recognized by type: a
// Resolver, a *logrus.Entry or a *logrus.Logger. Without a resolver a
// MediaResolver reporting its warnings to the generator's log is used.
func NewGenerator(options ...interface{}) *Generator {
	result := &Generator{}
	for _, option := range options {
		switch instance := option.(type) {
		case *logrus.Entry:
			result.log = instance
		case *logrus.Logger:
			result.log = logrus.NewEntry(instance)
		case Resolver:
			result.resolver = instance
		}
	}
	if result.log == nil {
		result.log = logrus.NewEntry(logrus.StandardLogger())
	}
	if result.resolver == nil {
		result.resolver = NewResolver(WarningLogger{Log: result.log})
	}
	return result
}

// Generate renders the avatar for uniqueIdentifier and returns it as a data
// URL of the export type. Letters default to the upper-cased first character
// of uniqueIdentifier.
func (g *Generator) Generate(ctx context.Context, uniqueIdentifier string, letters string, opts Options) (string, error) {
	opts = opts.normalize()
	img, err := g.Render(ctx, uniqueIdentifier, letters, opts)
	if err != nil {
		return "", err
	}
	return g.export(img, opts.Export)
}

// GenerateSync renders background and letters only; a custom icon is ignored
// with a warning
func (g *Generator) GenerateSync(uniqueIdentifier string, letters string, opts Options) (string, error) {
	opts = opts.normalize()
	if !opts.CustomIcon.IsZero() {
		g.log.WithFields(logrus.Fields{
			"code": CustomIconIgnoredInSyncMode,
			"icon": opts.CustomIcon.String(),
		}).Warn("Custom icons are not supported in sync mode, the icon is ignored")
	}
	canvas, err := g.background(uniqueIdentifier, opts)
	if err != nil {
		return "", err
	}
	if err := g.drawLetters(canvas, letterOrDefault(uniqueIdentifier, letters), opts); err != nil {
		return "", err
	}
	return g.export(canvas, opts.Export)
}

// Render draws the avatar. When a custom icon is set and acceptable, the
// icon replaces the letters.
func (g *Generator) Render(ctx context.Context, uniqueIdentifier string, letters string, opts Options) (image.Image, error) {
	opts = opts.normalize()
	canvas, err := g.background(uniqueIdentifier, opts)
	if err != nil {
		return nil, err
	}

	if !opts.CustomIcon.IsZero() {
		if g.resolver.IsAcceptable(opts.CustomIcon) {
			return g.drawIcon(ctx, canvas, opts)
		}
		g.log.WithField("icon", opts.CustomIcon.String()).Warn("Custom icon is not acceptable, drawing letters instead")
	}

	if err := g.drawLetters(canvas, letterOrDefault(uniqueIdentifier, letters), opts); err != nil {
		return nil, err
	}
	return canvas, nil
}

func letterOrDefault(uniqueIdentifier string, letters string) string {
	if len(letters) > 0 {
		return letters
	}
	first, size := utf8.DecodeRuneInString(uniqueIdentifier)
	if size == 0 {
		return ""
	}
	return strings.ToUpper(string(first))
}

func (g *Generator) background(uniqueIdentifier string, opts Options) (*image.NRGBA, error) {
	if len(uniqueIdentifier) == 0 {
		return nil, &Error{Message: "Unique identifier is blank", Code: 500, Frame: xerrors.Caller(xErrorsFrameCaller + 1)}
	}
	bg, err := ParseColor(StringToColor(uniqueIdentifier))
	if err != nil {
		return nil, err
	}
	return imaging.New(opts.Size, opts.Size, bg), nil
}

func (g *Generator) drawIcon(ctx context.Context, canvas *image.NRGBA, opts Options) (image.Image, error) {
	resolved, err := g.resolver.Resolve(ctx, opts.CustomIcon, opts.Foreground)
	if err != nil {
		return nil, err
	}
	size := int(float64(opts.Size) * IconScale)
	icon, err := g.iconImage(ctx, resolved, size)
	if err != nil {
		return nil, err
	}
	offset := (opts.Size - size) / 2
	return imaging.Overlay(canvas, icon, image.Pt(offset, offset), 1.0), nil
}

func (g *Generator) iconImage(ctx context.Context, resolved *Resolved, size int) (image.Image, error) {
	switch resolved.Form {
	case FormDataURI:
		markup, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(resolved.DataURI, dataURIPrefix))
		if err != nil {
			return nil, xerrors.Errorf("Unable to decode icon data URI: %w", err)
		}
		return rasterizeVector(markup, size)
	case FormURL:
		loader, ok := g.resolver.(iconLoader)
		if !ok {
			return nil, xerrors.Errorf("Resolver %T cannot load %s", g.resolver, resolved.URL)
		}
		data, kind, err := loader.Load(ctx, resolved.URL)
		if err != nil {
			return nil, err
		}
		// markup served under another media type is drawn as is, not recolored
		if kind == filetype.Unknown {
			if text, err := DecodeText(data, ""); err == nil && IsVectorMarkup(text) {
				return rasterizeVector([]byte(text), size)
			}
		}
		return decodeRaster(data, size)
	}
	return decodeRaster(resolved.Data, size)
}

func rasterizeVector(markup []byte, size int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(markup), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, &MalformedVectorError{Err: err, Frame: xerrors.Caller(xErrorsFrameCaller)}
	}
	icon.SetTarget(0, 0, float64(size), float64(size))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return img, nil
}

func decodeRaster(data []byte, size int) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, xerrors.Errorf("Unable to decode icon image: %w", err)
	}
	return imaging.Resize(img, size, size, imaging.Lanczos), nil
}

func (g *Generator) drawLetters(canvas *image.NRGBA, letters string, opts Options) error {
	if len(letters) == 0 {
		return nil
	}
	fg, err := ParseColor(opts.Foreground)
	if err != nil {
		return err
	}
	face, err := g.fontFace(opts, opts.FontSize)
	if err != nil {
		return err
	}
	defer face.Close()

	d := &font.Drawer{Dst: canvas, Src: image.NewUniform(fg), Face: face}
	width := d.MeasureString(letters)
	if limit := fixed.I(opts.Size); width > limit {
		// shrink to fit the canvas width
		scaled, err := g.fontFace(opts, opts.FontSize*float64(limit)/float64(width))
		if err != nil {
			return err
		}
		defer scaled.Close()
		d.Face = scaled
		width = d.MeasureString(letters)
	}

	metrics := d.Face.Metrics()
	middle := fixed.Int26_6(float64(opts.Size) / textBaseline * 64)
	d.Dot = fixed.Point26_6{
		X: (fixed.I(opts.Size) - width) / 2,
		Y: middle + (metrics.Ascent-metrics.Descent)/2,
	}
	d.DrawString(letters)
	return nil
}

func (g *Generator) fontFace(opts Options, size float64) (font.Face, error) {
	var ttf []byte
	mono := strings.EqualFold(strings.TrimSpace(opts.Font), "Go Mono")
	switch {
	case mono && opts.IsBold():
		ttf = gomonobold.TTF
	case mono:
		ttf = gomono.TTF
	case opts.IsBold():
		ttf = gobold.TTF
	default:
		ttf = goregular.TTF
	}
	if !mono && !strings.EqualFold(strings.TrimSpace(opts.Font), DefaultFont) {
		g.log.WithField("font", opts.Font).Debug("Font is not bundled, using Go")
	}

	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, xerrors.Errorf("Unable to parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, xerrors.Errorf("Unable to create font face: %w", err)
	}
	return face, nil
}

// export encodes img as a data URL. Unknown export types fall back to PNG.
func (g *Generator) export(img image.Image, mediaType string) (string, error) {
	var buf bytes.Buffer
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "image/jpg" {
		mediaType = "image/jpeg"
	}
	if err := encodeImage(&buf, img, mediaType); err != nil {
		if _, ok := err.(unsupportedExportError); !ok {
			return "", err
		}
		g.log.WithField("export", mediaType).Warn("Unsupported export type, using image/png")
		mediaType = DefaultExport
		buf.Reset()
		if err := encodeImage(&buf, img, mediaType); err != nil {
			return "", err
		}
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

type unsupportedExportError string

func (e unsupportedExportError) Error() string {
	return "unsupported export type " + string(e)
}

func encodeImage(w io.Writer, img image.Image, mediaType string) error {
	var err error
	switch mediaType {
	case "image/png":
		err = png.Encode(w, img)
	case "image/jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 92})
	case "image/gif":
		err = gif.Encode(w, img, nil)
	case "image/bmp":
		err = bmp.Encode(w, img)
	case "image/tiff":
		err = tiff.Encode(w, img, nil)
	default:
		return unsupportedExportError(mediaType)
	}
	if err != nil {
		return xerrors.Errorf("Unable to encode %s: %w", mediaType, err)
	}
	return nil
}
