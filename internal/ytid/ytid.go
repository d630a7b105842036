// Package ytid extracts canonical YouTube video identifiers from the
// reference forms that appear in track catalogs: a bare 11-character id,
// or a full watch/short-link/embed/shorts URL.
package ytid

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalid is returned when no video id can be extracted from a reference.
var ErrInvalid = errors.New("invalid video id")

// A canonical id is exactly 11 characters from the YouTube id alphabet.
var bareID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// URL forms, tried in order. Each capture group is the id.
var urlForms = []*regexp.Regexp{
	regexp.MustCompile(`(?:\?|&)v=([A-Za-z0-9_-]{11})(?:[&#]|$)`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})(?:[?&#]|$)`),
	regexp.MustCompile(`/embed/([A-Za-z0-9_-]{11})(?:[?&#]|$)`),
	regexp.MustCompile(`/shorts/([A-Za-z0-9_-]{11})(?:[?&#]|$)`),
}

// Normalize returns the canonical 11-character video id for ref.
// Normalizing an already-canonical id returns it unchanged.
func Normalize(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalid
	}
	if bareID.MatchString(ref) {
		return ref, nil
	}
	for _, re := range urlForms {
		if m := re.FindStringSubmatch(ref); m != nil {
			return m[1], nil
		}
	}
	return "", ErrInvalid
}

// Equal reports whether two references name the same video once
// normalized. Unparseable references compare equal to nothing.
func Equal(a, b string) bool {
	na, err := Normalize(a)
	if err != nil {
		return false
	}
	nb, err := Normalize(b)
	if err != nil {
		return false
	}
	return na == nb
}
