package entity

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

var (
	rules = inflect.NewDefaultRuleset()

	columnRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	// Tables may be schema qualified.
	tableRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)
)

// Snake converts a Go identifier to snake_case, keeping acronyms together.
//
//	Snake("UserID")   // user_id
//	Snake("HTTPCode") // http_code
func Snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not a start or end of a word, current letter is uppercase,
		// and previous is lowercase (cases like: "UserInfo"), or next letter is also
		// a lowercase and previous letter is not "_".
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// TableOf returns the default table name of an entity type name.
func TableOf(typeName string) string {
	return Snake(rules.Pluralize(typeName))
}

// ValidColumn reports whether s is a valid column identifier.
func ValidColumn(s string) bool {
	return len(s) <= 128 && columnRe.MatchString(s)
}

// ValidTable reports whether s is a valid, optionally schema qualified,
// table identifier.
func ValidTable(s string) bool {
	return len(s) <= 128 && tableRe.MatchString(s)
}
