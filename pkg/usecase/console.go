package usecase

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// console writes human-readable status lines for interactive use
type console struct {
	w io.Writer
}

func newConsole(w io.Writer) *console {
	if w == nil {
		w = io.Discard
	}
	return &console{w: w}
}

func (c *console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.w, format, args...)
}

func (c *console) success(format string, args ...any) {
	_, _ = color.New(color.FgGreen).Fprintf(c.w, "✓ "+format+"\n", args...)
}

func (c *console) failure(format string, args ...any) {
	_, _ = color.New(color.FgRed).Fprintf(c.w, "✗ "+format+"\n", args...)
}

// formatBytes renders n with thousands separators, e.g. 1234567 -> "1,234,567"
func formatBytes(n int64) string {
	if n < 0 {
		return "-" + formatBytes(-n)
	}
	s := fmt.Sprintf("%d", n)

	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}
