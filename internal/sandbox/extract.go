package sandbox

import (
	"regexp"
	"sync"
)

// Extractor finds fenced code blocks tagged with a language. Compiled
// patterns are cached per language.
type Extractor struct {
	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

func NewExtractor() *Extractor {
	return &Extractor{patterns: make(map[string]*regexp.Regexp)}
}

var defaultExtractor = NewExtractor()

// Extract returns the bodies of all blocks fenced as ```<language> in source
// order. Untagged blocks, blocks tagged otherwise and unterminated fences are
// ignored.
func Extract(text, language string) []string {
	return defaultExtractor.Extract(text, language)
}

func (e *Extractor) Extract(text, language string) []string {
	matches := e.pattern(language).FindAllStringSubmatch(text, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, m[1])
	}
	return blocks
}

func (e *Extractor) pattern(language string) *regexp.Regexp {
	e.mu.Lock()
	defer e.mu.Unlock()

	if re, ok := e.patterns[language]; ok {
		return re
	}
	re := regexp.MustCompile("(?s)```" + regexp.QuoteMeta(language) + "\n(.*?)\n```")
	e.patterns[language] = re
	return re
}
