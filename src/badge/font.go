// Package badge renders shields.io-style SVG badges for dependency status.
package badge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

const defaultFontSize = 11

// FontMetrics holds glyph widths and, when loaded from a file, the raw
// font data for SVG embedding.
type FontMetrics struct {
	name     string           // font family name
	size     float64          // point size
	data     []byte           // raw TTF/OTF bytes, nil for approximate metrics
	advances map[rune]float64 // glyph advances for printable ASCII
	fallback float64          // width for unmapped runes
}

// TextWidth returns the pixel width of s using the glyph advances.
func (m *FontMetrics) TextWidth(s string) float64 {
	var w float64
	for _, r := range s {
		if adv, ok := m.advances[r]; ok {
			w += adv
		} else {
			w += m.fallback
		}
	}
	return w
}

// FontData returns the raw font bytes, nil for approximate metrics.
func (m *FontMetrics) FontData() []byte { return m.data }

// FontName returns the font family name.
func (m *FontMetrics) FontName() string { return m.name }

// FontSize returns the point size.
func (m *FontMetrics) FontSize() float64 { return m.size }

// ApproxMetrics returns Verdana-like metrics without font data. Badges
// rendered with it rely on the viewer's installed fonts, matching what
// shields.io itself assumes.
func ApproxMetrics() *FontMetrics {
	advances := make(map[rune]float64, 95)
	for r := rune(32); r <= 126; r++ {
		advances[r] = approxAdvance(r)
	}
	return &FontMetrics{
		name:     "Verdana",
		size:     defaultFontSize,
		advances: advances,
		fallback: defaultFontSize * 0.62,
	}
}

// approxAdvance estimates Verdana glyph widths at 11pt by class.
func approxAdvance(r rune) float64 {
	switch {
	case r == ' ':
		return 3.9
	case strings.ContainsRune("iIjl.,:;'|!", r):
		return 3.1
	case strings.ContainsRune("ftr()[]{}-", r):
		return 4.5
	case strings.ContainsRune("mwMW@", r):
		return 10.2
	case r >= 'A' && r <= 'Z':
		return 7.9
	case r >= '0' && r <= '9':
		return 7.0
	default:
		return 6.8
	}
}

// LoadFont parses a TTF/OTF and measures glyph advances at size.
func LoadFont(name string, data []byte, size float64) (*FontMetrics, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("badge: parsing font %s: %w", name, err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72})
	if err != nil {
		return nil, fmt.Errorf("badge: creating face for %s: %w", name, err)
	}
	defer face.Close()

	advances := make(map[rune]float64, 95)
	var total float64
	var count int
	for r := rune(32); r <= 126; r++ {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		px := float64(adv) / 64.0 // fixed.Int26_6 to pixels
		advances[r] = px
		total += px
		count++
	}

	fallback := size * 0.6
	if count > 0 {
		fallback = total / float64(count)
	}

	familyName := name
	buf := &sfnt.Buffer{}
	if n, err := f.Name(buf, sfnt.NameIDFamily); err == nil && n != "" {
		familyName = n
	}

	return &FontMetrics{
		name:     familyName,
		size:     size,
		data:     data,
		advances: advances,
		fallback: fallback,
	}, nil
}

// LoadFontFile loads a TTF/OTF from disk.
func LoadFontFile(path string) (*FontMetrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("badge: reading font file %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return LoadFont(name, data, defaultFontSize)
}
