package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderShare renders a share-of-total bar like [████░░░░]  45%.
func RenderShare(part, total float64, width int) string {
	pct := 0.0
	if total > 0 {
		pct = part / total
	}
	pct = min(max(pct, 0), 1)
	width = max(width, 2)

	filled := min(int(pct*float64(width)+0.5), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return fmt.Sprintf("[%s] %3.0f%%", StylePurple.Render(bar), pct*100)
}
