package formatter

import (
	"unicode"
)

// MaxNameWidth is the display width of the NAME column
const MaxNameWidth = 30

// RuneWidth returns the display width of a rune
// ASCII characters have width 1, CJK characters have width 2
func RuneWidth(r rune) int {
	if r < 128 {
		return 1
	}

	// CJK characters (한글, 한자, 일본어 등) are width 2
	if unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hangul, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) {
		return 2
	}

	return 1
}

// StringWidth returns the display width of a string
func StringWidth(s string) int {
	width := 0
	for _, r := range s {
		width += RuneWidth(r)
	}
	return width
}

// TruncateWidth shortens s to at most width display columns, marking the cut with ".."
func TruncateWidth(s string, width int) string {
	if StringWidth(s) <= width {
		return s
	}

	truncated := []rune{}
	currentWidth := 0
	for _, r := range s {
		charWidth := RuneWidth(r)
		if currentWidth+charWidth > width-2 { // -2 for ".."
			break
		}
		truncated = append(truncated, r)
		currentWidth += charWidth
	}
	return string(truncated) + ".."
}
