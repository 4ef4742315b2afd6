// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package ocr

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FoundConfidence is reported when an ISBN was extracted.
const FoundConfidence = 0.8

// maxRawTextRunes bounds the recognised text echoed back to callers.
const maxRawTextRunes = 500

// isbnPatterns are tried in order; the first match wins. RE2's \s and \d
// are ASCII only, so digits use \p{Nd} and separators also accept Unicode
// spaces such as NBSP or thin space, which OCR engines emit.
var isbnPatterns = []*regexp.Regexp{
	// ISBN-13 with prefix, optional separators
	regexp.MustCompile(`(?i)ISBN[-:\s\p{Z}\x{85}]*(97[89][-\s\p{Z}\x{85}]?\p{Nd}{1,5}[-\s\p{Z}\x{85}]?\p{Nd}{1,7}[-\s\p{Z}\x{85}]?\p{Nd}{1,7}[-\s\p{Z}\x{85}]?\p{Nd})`),
	// ISBN-10 with prefix
	regexp.MustCompile(`(?i)ISBN[-:\s\p{Z}\x{85}]*(\p{Nd}{1,5}[-\s\p{Z}\x{85}]?\p{Nd}{1,7}[-\s\p{Z}\x{85}]?\p{Nd}{1,7}[-\s\p{Z}\x{85}]?[\p{Nd}X])`),
	// bare ISBN-13
	regexp.MustCompile(`(97[89]\p{Nd}{10})`),
	// bare ISBN-10
	regexp.MustCompile(`(?i)(\p{Nd}{9}[\p{Nd}X])`),
}

var isbnFormat = regexp.MustCompile(`^(\d{9}[\dXx]|\d{13})$`)

// ISBNResult is the outcome of scanning text for an ISBN.
type ISBNResult struct {
	ISBN       *string `json:"isbn"`
	Confidence float64 `json:"confidence"`
	RawText    string  `json:"raw_text"`
}

// Found reports whether an ISBN was extracted.
func (r *ISBNResult) Found() bool {
	return r.ISBN != nil
}

// ExtractISBN finds the first ISBN in text. Hyphens and spaces are removed
// from the match.
func ExtractISBN(text string) *ISBNResult {
	res := &ISBNResult{RawText: truncateRunes(text, maxRawTextRunes)}
	for _, p := range isbnPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		isbn := NormalizeISBN(m[1])
		res.ISBN = &isbn
		res.Confidence = FoundConfidence
		break
	}
	return res
}

// NormalizeISBN strips hyphens and whitespace and folds non-ASCII decimal
// digits to ASCII.
func NormalizeISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '-' || unicode.IsSpace(r) || unicode.Is(unicode.Zs, r):
			return -1
		case r > unicode.MaxASCII && unicode.IsDigit(r):
			return asciiDigit(r)
		}
		return r
	}, isbn)
}

// asciiDigit maps a decimal digit to '0'..'9'. Decimal digits are assigned
// in contiguous runs of ten starting at zero, so the value is the offset
// from the start of the run modulo ten.
func asciiDigit(r rune) rune {
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return '0' + (r-start)%10
}

// ValidISBNFormat reports whether a normalised ISBN has the shape of an
// ISBN-10 or ISBN-13. Check digits are not verified.
func ValidISBNFormat(isbn string) bool {
	return isbnFormat.MatchString(isbn)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
