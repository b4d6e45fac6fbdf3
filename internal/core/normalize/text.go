package normalize

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reWideSpace  = regexp.MustCompile(` {3,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^[ ]*[_\-=|]{3,}[ ]*$`)
)

var spaceLike = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u202f", " ", // narrow no-break space (French digit grouping)
	"\u2007", " ", // figure space
	"\f", "\n",
	"\v", "\n",
)

// Normalize cleans OCR whitespace noise. Column gaps (two or more spaces)
// survive as exactly two spaces because text captures stop at them.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = spaceLike.Replace(s)
	s = reTabs.ReplaceAllString(s, "  ")
	s = reWideSpace.ReplaceAllString(s, "  ")
	s = reBoxNoise.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
