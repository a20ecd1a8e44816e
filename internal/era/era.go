// Package era buckets timeline events into coarse historical periods and
// maps each period to an illustrative image.
package era

import (
	"strings"
	"unicode"
)

// Era is a coarse historical period used to pick imagery.
type Era string

const (
	Ancient      Era = "ancient"
	Medieval     Era = "medieval"
	Renaissance  Era = "renaissance"
	Industrial   Era = "industrial"
	Modern       Era = "modern"
	Contemporary Era = "contemporary"
	Futuristic   Era = "futuristic"
	Default      Era = "default"
)

// Eras lists every key of the image table, default last.
var Eras = []Era{Ancient, Medieval, Renaissance, Industrial, Modern, Contemporary, Futuristic, Default}

// band maps years strictly below upTo to era. The last band is open-ended.
type band struct {
	upTo int
	era  Era
}

var bands = []band{
	{500, Ancient},
	{1400, Medieval},
	{1750, Renaissance},
	{1950, Industrial},
	{2000, Modern},
	{2050, Contemporary},
}

// override replaces the band-derived era when the event text mentions any
// keyword as whole words; a trailing plural "s" or "es" still matches.
type override struct {
	keywords []string
	era      Era
}

// Evaluated top to bottom; first match wins.
var overrides = []override{
	{[]string{"internet", "computer", "digital", "software", "smartphone", "artificial intelligence", "robot", "online"}, Contemporary},
	{[]string{"radio", "television", "broadcast", "telephone", "telegraph", "satellite"}, Modern},
	{[]string{"printing", "book", "manuscript", "university", "school", "education", "literacy"}, Renaissance},
	{[]string{"ancient", "antiquity", "roman", "pharaoh", "gladiator", "caesar", "pyramid", "greek"}, Ancient},
}

// ForYear returns the era whose numeric band contains year.
func ForYear(year int) Era {
	for _, b := range bands {
		if year < b.upTo {
			return b.era
		}
	}
	return Futuristic
}

// Classify returns the era for an event, letting content keywords win over
// the year band.
func Classify(text string, year int) Era {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, o := range overrides {
		for _, kw := range o.keywords {
			if mentions(words, strings.Fields(kw)) {
				return o.era
			}
		}
	}
	return ForYear(year)
}

// mentions reports whether phrase occurs as consecutive words.
func mentions(words, phrase []string) bool {
	n := len(phrase)
	for i := 0; i+n <= len(words); i++ {
		match := true
		for j, p := range phrase {
			if !sameWord(words[i+j], p, j == n-1) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func sameWord(word, kw string, last bool) bool {
	if word == kw {
		return true
	}
	if !last {
		return false
	}
	return word == kw+"s" || word == kw+"es"
}
