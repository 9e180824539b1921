// Copyright 2015 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package yang

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Rewrites a YANG pattern, written in the W3C XML-Schema regex dialect,
// into a source string Go's regexp package (RE2) can compile, then
// wraps the compiled result in a refcounted handle.
//
// invertMarker flags a pattern as an exclusion: a pattern whose raw text
// begins with this byte matches when the rewritten regex does NOT
// match.
const invertMarker = 0x15

// A CompiledPattern is a refcounted, immutable compiled regular
// expression plus the YANG-level metadata that rides along with it.
type CompiledPattern struct {
	mu           sync.Mutex
	refs         int32
	Source       string // original YANG pattern text (without invert marker)
	Rewritten    string // the RE2-compatible source actually compiled
	Re           *regexp.Regexp
	Inverted     bool
	ErrorAppTag  string
	ErrorMessage string
}

func newCompiledPattern(source, rewritten string, re *regexp.Regexp, inverted bool) *CompiledPattern {
	return &CompiledPattern{refs: 1, Source: source, Rewritten: rewritten, Re: re, Inverted: inverted}
}

// acquire increments the refcount and returns p, so callers can write
// `shared = base.acquire()` to share a pattern across typedef
// derivations without recompiling it.
func (p *CompiledPattern) acquire() *CompiledPattern {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	p.refs++
	p.mu.Unlock()
	return p
}

// release decrements the refcount. The compiled regexp itself is left to
// the garbage collector once the last reference is dropped; refs exists
// for API parity with the spec's "refcounted shared immutable structure"
// model and so tests can observe sharing.
func (p *CompiledPattern) release() {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.refs--
	p.mu.Unlock()
}

func (p *CompiledPattern) refcount() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refs
}

// Match reports whether s satisfies the pattern, honoring Inverted.
func (p *CompiledPattern) Match(s string) bool {
	m := p.Re.MatchString(s)
	if p.Inverted {
		return !m
	}
	return m
}

// CompilePattern rewrites a YANG pattern string (XML-Schema dialect) into
// an RE2-compatible source and compiles it, returning a *CompiledPattern
// or a syntax Diagnostic.
func CompilePattern(raw string) (*CompiledPattern, *Diagnostic) {
	source := raw
	inverted := false
	if len(source) > 0 && source[0] == invertMarker {
		inverted = true
		source = source[1:]
	}

	rewritten, err := rewritePattern(source)
	if err != nil {
		return nil, &Diagnostic{Code: Syntax, Message: fmt.Sprintf("bad pattern %q: %v", source, err)}
	}

	// RE2 has no equivalent of PCRE's ANCHORED compile option, so the
	// left anchor is added here rather than in the rewritten source,
	// which stays in the form the rewrite rules alone produce.
	re, err := regexp.Compile(`\A(?:` + rewritten + `)`)
	if err != nil {
		return nil, &Diagnostic{Code: Syntax, Message: fmt.Sprintf("bad pattern %q (rewritten %q): %v", source, rewritten, err)}
	}
	return newCompiledPattern(source, rewritten, re, inverted), nil
}

// rewritePattern performs three textual rewrite steps, in order:
// dollar/caret escaping, Unicode block expansion, then anchoring.
func rewritePattern(p string) (string, error) {
	p = escapeDollarCaret(p)

	p, err := expandUnicodeBlocks(p)
	if err != nil {
		return "", err
	}

	return anchor(p), nil
}

// escapeDollarCaret prefixes every raw $ and ^ with a backslash: the
// XML-Schema dialect treats them as ordinary literals, but RE2 (like
// PCRE) treats them as anchors unless escaped.
func escapeDollarCaret(p string) string {
	var b strings.Builder
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '\\' && i+1 < len(p) {
			b.WriteByte(c)
			b.WriteByte(p[i+1])
			i++
			continue
		}
		if c == '$' || c == '^' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// anchor wraps p in a non-capturing group and appends "$" so the pattern
// must match the whole input, unless p already ends in ".*".
func anchor(p string) string {
	if strings.HasSuffix(p, ".*") {
		return p
	}
	return "(?:" + p + ")$"
}

// expandUnicodeBlocks replaces every \p{IsBlock} occurrence with the
// character range for that Unicode block. The table stores bare ranges
// (no enclosing brackets), so an occurrence already inside an open,
// unescaped character class is spliced in directly —
// "[\p{IsBasicLatin}a-z]" becomes "[\x{0000}-\x{007F}a-z]" rather than
// nesting classes — while anywhere else the range is wrapped in its own
// brackets.
func expandUnicodeBlocks(p string) (string, error) {
	const prefix = `\p{Is`
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(p[i:], prefix)
		if idx < 0 {
			b.WriteString(p[i:])
			break
		}
		idx += i
		b.WriteString(p[i:idx])

		end := strings.IndexByte(p[idx:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated \\p{Is...} at offset %d", idx)
		}
		end += idx

		blockName := p[idx+len(prefix) : end]
		rng, ok := unicodeBlocks[blockName]
		if !ok {
			return "", fmt.Errorf("unknown unicode block: %s", blockName)
		}

		if insideUnescapedClass(b.String()) {
			b.WriteString(rng)
		} else {
			b.WriteString("[" + rng + "]")
		}
		i = end + 1
	}
	return b.String(), nil
}

// insideUnescapedClass reports whether s ends while inside an open,
// unescaped "[...]" character class.
func insideUnescapedClass(s string) bool {
	open := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			open = true
		case ']':
			open = false
		}
	}
	return open
}

// unicodeBlocks maps XML Schema Unicode block names to the character
// range they denote, per the block list of W3C XML Schema Part 2
// Appendix B. Unrecognized names are a syntax error rather than
// silently ignored.
var unicodeBlocks = map[string]string{
	"BasicLatin":                         `\x{0000}-\x{007F}`,
	"Latin-1Supplement":                  `\x{0080}-\x{00FF}`,
	"LatinExtended-A":                    `\x{0100}-\x{017F}`,
	"LatinExtended-B":                    `\x{0180}-\x{024F}`,
	"IPAExtensions":                      `\x{0250}-\x{02AF}`,
	"SpacingModifierLetters":             `\x{02B0}-\x{02FF}`,
	"CombiningDiacriticalMarks":          `\x{0300}-\x{036F}`,
	"Greek":                              `\x{0370}-\x{03FF}`,
	"Cyrillic":                           `\x{0400}-\x{04FF}`,
	"Armenian":                           `\x{0530}-\x{058F}`,
	"Hebrew":                             `\x{0590}-\x{05FF}`,
	"Arabic":                             `\x{0600}-\x{06FF}`,
	"Syriac":                             `\x{0700}-\x{074F}`,
	"Thaana":                             `\x{0780}-\x{07BF}`,
	"Devanagari":                         `\x{0900}-\x{097F}`,
	"Bengali":                            `\x{0980}-\x{09FF}`,
	"Gurmukhi":                           `\x{0A00}-\x{0A7F}`,
	"Gujarati":                           `\x{0A80}-\x{0AFF}`,
	"Oriya":                              `\x{0B00}-\x{0B7F}`,
	"Tamil":                              `\x{0B80}-\x{0BFF}`,
	"Telugu":                             `\x{0C00}-\x{0C7F}`,
	"Kannada":                            `\x{0C80}-\x{0CFF}`,
	"Malayalam":                          `\x{0D00}-\x{0D7F}`,
	"Sinhala":                            `\x{0D80}-\x{0DFF}`,
	"Thai":                               `\x{0E00}-\x{0E7F}`,
	"Lao":                                `\x{0E80}-\x{0EFF}`,
	"Tibetan":                            `\x{0F00}-\x{0FFF}`,
	"Myanmar":                            `\x{1000}-\x{109F}`,
	"Georgian":                           `\x{10A0}-\x{10FF}`,
	"HangulJamo":                         `\x{1100}-\x{11FF}`,
	"Ethiopic":                           `\x{1200}-\x{137F}`,
	"Cherokee":                           `\x{13A0}-\x{13FF}`,
	"UnifiedCanadianAboriginalSyllabics": `\x{1400}-\x{167F}`,
	"Ogham":                              `\x{1680}-\x{169F}`,
	"Runic":                              `\x{16A0}-\x{16FF}`,
	"Khmer":                              `\x{1780}-\x{17FF}`,
	"Mongolian":                          `\x{1800}-\x{18AF}`,
	"LatinExtendedAdditional":            `\x{1E00}-\x{1EFF}`,
	"GreekExtended":                      `\x{1F00}-\x{1FFF}`,
	"GeneralPunctuation":                 `\x{2000}-\x{206F}`,
	"SuperscriptsandSubscripts":          `\x{2070}-\x{209F}`,
	"CurrencySymbols":                    `\x{20A0}-\x{20CF}`,
	"CombiningMarksforSymbols":           `\x{20D0}-\x{20FF}`,
	"LetterlikeSymbols":                  `\x{2100}-\x{214F}`,
	"NumberForms":                        `\x{2150}-\x{218F}`,
	"Arrows":                             `\x{2190}-\x{21FF}`,
	"MathematicalOperators":              `\x{2200}-\x{22FF}`,
	"MiscellaneousTechnical":             `\x{2300}-\x{23FF}`,
	"ControlPictures":                    `\x{2400}-\x{243F}`,
	"OpticalCharacterRecognition":        `\x{2440}-\x{245F}`,
	"EnclosedAlphanumerics":              `\x{2460}-\x{24FF}`,
	"BoxDrawing":                         `\x{2500}-\x{257F}`,
	"BlockElements":                      `\x{2580}-\x{259F}`,
	"GeometricShapes":                    `\x{25A0}-\x{25FF}`,
	"MiscellaneousSymbols":               `\x{2600}-\x{26FF}`,
	"Dingbats":                           `\x{2700}-\x{27BF}`,
	"BraillePatterns":                    `\x{2800}-\x{28FF}`,
	"CJKRadicalsSupplement":              `\x{2E80}-\x{2EFF}`,
	"KangxiRadicals":                     `\x{2F00}-\x{2FDF}`,
	"IdeographicDescriptionCharacters":   `\x{2FF0}-\x{2FFF}`,
	"CJKSymbolsandPunctuation":           `\x{3000}-\x{303F}`,
	"Hiragana":                           `\x{3040}-\x{309F}`,
	"Katakana":                           `\x{30A0}-\x{30FF}`,
	"Bopomofo":                           `\x{3100}-\x{312F}`,
	"HangulCompatibilityJamo":            `\x{3130}-\x{318F}`,
	"Kanbun":                             `\x{3190}-\x{319F}`,
	"BopomofoExtended":                   `\x{31A0}-\x{31BF}`,
	"EnclosedCJKLettersandMonths":        `\x{3200}-\x{32FF}`,
	"CJKCompatibility":                   `\x{3300}-\x{33FF}`,
	"CJKUnifiedIdeographsExtensionA":     `\x{3400}-\x{4DB5}`,
	"CJKUnifiedIdeographs":               `\x{4E00}-\x{9FFF}`,
	"YiSyllables":                        `\x{A000}-\x{A48F}`,
	"YiRadicals":                         `\x{A490}-\x{A4CF}`,
	"HangulSyllables":                    `\x{AC00}-\x{D7A3}`,
	"PrivateUse":                         `\x{E000}-\x{F8FF}`,
	"CJKCompatibilityIdeographs":         `\x{F900}-\x{FAFF}`,
	"AlphabeticPresentationForms":        `\x{FB00}-\x{FB4F}`,
	"ArabicPresentationForms-A":          `\x{FB50}-\x{FDFF}`,
	"CombiningHalfMarks":                 `\x{FE20}-\x{FE2F}`,
	"CJKCompatibilityForms":              `\x{FE30}-\x{FE4F}`,
	"SmallFormVariants":                  `\x{FE50}-\x{FE6F}`,
	"ArabicPresentationForms-B":          `\x{FE70}-\x{FEFE}`,
	"HalfwidthandFullwidthForms":         `\x{FF00}-\x{FFEF}`,
	"Specials":                           `\x{FFF0}-\x{FFFD}`,
}
