package captcha

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	svgWidth  = 150
	svgHeight = 50
)

var glyphPalette = []string{"#3b5b92", "#6b4292", "#2f7d4f", "#92583b", "#584b8f"}

// RenderSVG draws a challenge as an SVG image with per-glyph jitter, rotation
// and noise strokes, in the manner of the usual SVG captcha widgets. The image
// is deliberately only friction for bots; the answer is recoverable from the
// markup by anything that cares to parse it.
func RenderSVG(c Challenge) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		svgWidth, svgHeight, svgWidth, svgHeight)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="#f0f0f0"/>`, svgWidth, svgHeight)

	// Noise strokes behind the glyphs.
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&sb,
			`<path d="M%d %d C %d %d, %d %d, %d %d" stroke="%s" fill="none" stroke-width="1" opacity="0.5"/>`,
			rand.IntN(20), rand.IntN(svgHeight),
			rand.IntN(svgWidth), rand.IntN(svgHeight),
			rand.IntN(svgWidth), rand.IntN(svgHeight),
			svgWidth-rand.IntN(20), rand.IntN(svgHeight),
			glyphPalette[rand.IntN(len(glyphPalette))])
	}

	if len(c.Text) > 0 {
		step := float64(svgWidth-20) / float64(len(c.Text))
		for i, r := range c.Text {
			x := 12 + float64(i)*step + float64(rand.IntN(7)-3)
			y := 32 + float64(rand.IntN(11)-5)
			rot := rand.IntN(31) - 15
			fmt.Fprintf(&sb,
				`<text x="%.1f" y="%.1f" font-family="monospace" font-size="26" fill="%s" transform="rotate(%d %.1f %.1f)">%c</text>`,
				x, y, glyphPalette[rand.IntN(len(glyphPalette))], rot, x, y, r)
		}
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}
