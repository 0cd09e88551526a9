package parser

import "regexp"

// Workaround rewrites script text into a form the external decoder can
// handle. A few game files use constructs the decoder rejects; rewriting them
// before decoding is cheaper than teaching every decoder the quirk.
type Workaround struct {
	// Name identifies the workaround in logs.
	Name string

	pattern     *regexp.Regexp
	replacement string
}

// NewWorkaround compiles a regex rewrite. It panics on an invalid pattern,
// so workarounds are declared as package variables.
func NewWorkaround(name, pattern, replacement string) Workaround {
	return Workaround{
		Name:        name,
		pattern:     regexp.MustCompile(pattern),
		replacement: replacement,
	}
}

// Apply rewrites all matches in the script text.
func (w Workaround) Apply(text []byte) []byte {
	return w.pattern.ReplaceAll(text, []byte(w.replacement))
}

var (
	// UnmarkedList wraps statements like
	//	pattern = list "christian_emblems_list"
	// into
	//	pattern = { list "christian_emblems_list" }
	UnmarkedList = NewWorkaround("unmarked-list", `(=\s*)(list\s+[^#{}=\n]+)`, `$1{ $2 }`)

	// QuestionmarkEquals rewrites `x ?= y` into `x = y`.
	QuestionmarkEquals = NewWorkaround("questionmark-equals", ` \?= `, ` = `)
)
