package core

import (
	"strings"
	"unicode/utf8"
)

// DeriveUserName returns the lowercase initials of every space-separated
// word of owner. Empty words (repeated, leading or trailing spaces)
// contribute nothing.
//
// Examples:
//
//	DeriveUserName("Jonas Schmedtmann")       -> "js"
//	DeriveUserName("Steven Thomas Williams")  -> "stw"
func DeriveUserName(owner string) string {
	var b strings.Builder
	for _, word := range strings.Split(strings.ToLower(owner), " ") {
		if word == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
	}
	return b.String()
}
