package app

import "strings"

// Matches reports whether filename selects for pattern. Both sides are
// compared lower-cased; an empty pattern matches nothing.
//
// In exact mode the pattern has to stand as its own segment: an alphanumeric
// pattern edge must sit at the start/end of the name or next to a separator,
// which is any byte outside [a-z0-9] except the hyphen. Hyphens join words,
// so "selfie" does not match "my-selfie.jpg" but does match "my_selfie.jpg".
// A pattern edge that is itself punctuation needs no boundary, so "-selfie"
// matches "my-selfie.jpg".
func Matches(filename, pattern string, exact bool) bool {
	if pattern == "" {
		return false
	}
	name := strings.ToLower(filename)
	p := strings.ToLower(pattern)
	if !exact {
		return strings.Contains(name, p)
	}

	needLeft := isAlnum(p[0])
	needRight := isAlnum(p[len(p)-1])
	for offset := 0; offset+len(p) <= len(name); {
		idx := strings.Index(name[offset:], p)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(p)
		leftOK := !needLeft || start == 0 || isSeparator(name[start-1])
		rightOK := !needRight || end == len(name) || isSeparator(name[end])
		if leftOK && rightOK {
			return true
		}
		offset = start + 1
	}
	return false
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func isSeparator(b byte) bool {
	return !isAlnum(b) && b != '-'
}
