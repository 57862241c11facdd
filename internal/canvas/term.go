package canvas

import (
	"os"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	terminalWidthBackup  = 80
	terminalHeightBackup = 24
)

// TerminalSize returns the size of stdout, or 80×24 when it is not a terminal.
func TerminalSize() (cols, rows int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return terminalWidthBackup, terminalHeightBackup
	}
	return width, height
}

// Fit returns the largest square-looking grid that fits in cols×rows
// cells. Braille cells hold 2×4 dots, so a square surface needs twice as
// many columns as rows.
func Fit(cols, rows int) (int, int) {
	if cols < 2 || rows < 1 {
		return 2, 1
	}
	gridRows := rows
	if gridRows*2 > cols {
		gridRows = cols / 2
	}
	if gridRows < 1 {
		gridRows = 1
	}
	return gridRows * 2, gridRows
}

// StatusLine truncates or pads text to exactly width display columns.
func StatusLine(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "…")
	}
	return runewidth.FillRight(text, width)
}
