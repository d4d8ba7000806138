package project

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/aretw0/marytreat/pkg/core"
)

// transliterate strips accents: "Résumé" becomes "Resume".
func transliterate(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCIIWordRune(r rune) bool {
	return r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// underscore replaces every non-word rune with '_' and collapses runs.
func underscore(s string) string {
	var b strings.Builder
	prev := false
	for _, r := range s {
		if !isWordRune(r) {
			r = '_'
		}
		if r == '_' && prev {
			continue
		}
		prev = r == '_'
		b.WriteRune(r)
	}
	return b.String()
}

func keepASCIIWord(s string) string {
	return strings.Map(func(r rune) rune {
		if isASCIIWordRune(r) {
			return r
		}
		return -1
	}, s)
}

// topicFileName builds the style-guide file name (without extension) for a
// topic titled title. The rep-th topic with the same title gets a "_rep"
// suffix. When the title yields no usable name, current is returned.
func topicFileName(title string, class core.OutputClass, rep int, current string) string {
	name := underscore(transliterate(title))
	name = strings.ReplaceAll(name, "_the_", "_")
	name = keepASCIIWord(name)
	if name == "Rev" || len(name) < 2 {
		return current
	}
	name = strings.TrimSuffix(name, "_")
	if len(name) > 1 && name[1] == '_' {
		name = name[2:]
	}
	if info, ok := class.Info(); ok {
		name = info.Prefix + name
	}
	if rep > 1 {
		name += "_" + strconv.Itoa(rep)
	}
	return name
}

// imageFileName builds img_<prefix>_<name><ext>. Titled images are named
// after their title, the others after their current base name unless it
// already carries the prefix.
func imageFileName(img *Image, prefix string) string {
	stem := "img_" + prefix + "_"
	if img.tempTitle != "" {
		return stem + keepASCIIWord(transliterate(strings.ReplaceAll(img.tempTitle, " ", "_"))) + img.Ext
	}
	base := img.Href[strings.LastIndex(img.Href, "/")+1:]
	if strings.HasPrefix(base, stem) {
		return base
	}
	return stem + keepASCIIWord(transliterate(strings.TrimSuffix(base, img.Ext))) + img.Ext
}
