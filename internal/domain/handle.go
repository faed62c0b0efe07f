package domain

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// defaultHandle is used when a display name contains no usable characters.
const defaultHandle = "reader"

// SlugifyHandle converts a display name into a handle: diacritics are
// stripped via NFKD decomposition, everything that is not a letter or
// digit is dropped, and the result is lowercased. An empty result falls
// back to "reader".
func SlugifyHandle(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range decomposed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	slug := b.String()
	if slug == "" {
		return defaultHandle
	}
	return slug
}

// DeriveUniqueHandle slugifies a display name and appends an
// incrementing numeric suffix until the handle is free. The exists
// callback reports whether a candidate handle is already taken.
func DeriveUniqueHandle(name string, exists func(string) (bool, error)) (string, error) {
	base := SlugifyHandle(name)

	candidate := base
	for i := 1; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
}
