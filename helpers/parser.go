package helpers

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ToArgv splits a command string into arguments, quoted sections stay
// together and keep their quotes
func ToArgv(text string) (args []string, err error) {
	lastQuote := rune(0)
	f := func(c rune) bool {
		switch {
		case c == lastQuote:
			lastQuote = rune(0)
			return false
		case lastQuote != rune(0):
			return false
		case unicode.In(c, unicode.Quotation_Mark):
			lastQuote = c
			return false
		default:
			return unicode.IsSpace(c)
		}
	}

	args = strings.FieldsFunc(text, f)
	if lastQuote != rune(0) {
		return nil, errors.New("unclosed quote in arguments")
	}

	return args, nil
}
