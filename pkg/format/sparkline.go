package format

import (
	"math"
	"strings"
)

// Sparks are ordered lowest to highest. The full block is left out because
// Slack renders it wider than the others.
var Sparks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇'}

// Sparkline renders values as block glyphs scaled against the largest value.
// Halves round to even. When the largest value is 0 every glyph is the
// lowest one.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	upper := values[0]
	for _, v := range values[1:] {
		if v > upper {
			upper = v
		}
	}

	top := len(Sparks) - 1
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if upper > 0 {
			idx = int(math.RoundToEven(v / upper * float64(top)))
		}
		idx = max(0, min(idx, top))
		b.WriteRune(Sparks[idx])
	}
	return b.String()
}
