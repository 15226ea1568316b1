// Package reference loads the glossary documents stages may consult.
package reference

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

const (
	// GlossaryKey is the references entry the glossary is stored under.
	GlossaryKey = "logistics_glossary"
	// DefaultMaxChars caps the concatenated glossary text.
	DefaultMaxChars = 8000
)

var extensions = map[string]bool{".txt": true, ".md": true}

const (
	placeholderEN = "No logistics/distribution reference glossary was found. Add .txt or .md files to the references directory."
	placeholderKO = "참고용 물류/유통 용어 사전이 발견되지 않았습니다. 참고 자료 디렉터리에 .txt 또는 .md 파일을 추가해 주세요."
)

// LoadGlossary concatenates every .txt and .md file in dir, in name
// order, joined by newlines and capped at maxChars runes. A missing
// directory yields "".
func LoadGlossary(dir string, maxChars int) (string, error) {
	if dir == "" {
		return "", nil
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read references dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !extensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var texts []string
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		if t := strings.TrimSpace(string(b)); t != "" {
			texts = append(texts, t)
		}
	}

	combined := strings.TrimSpace(strings.Join(texts, "\n"))
	if r := []rune(combined); len(r) > maxChars {
		combined = string(r[:maxChars])
	}
	return combined, nil
}

// Placeholder is the glossary text used when no documents exist.
func Placeholder(lang string) string {
	if tag, err := language.Parse(lang); err == nil {
		if base, _ := tag.Base(); base.String() == "ko" {
			return placeholderKO
		}
	}
	return placeholderEN
}

// Apply returns a copy of existing with the glossary set. An empty
// glossary only fills the placeholder when no glossary is present.
func Apply(existing map[string]string, glossary, lang string) map[string]string {
	out := make(map[string]string, len(existing)+1)
	for k, v := range existing {
		out[k] = v
	}
	if glossary != "" {
		out[GlossaryKey] = glossary
	} else if _, ok := out[GlossaryKey]; !ok {
		out[GlossaryKey] = Placeholder(lang)
	}
	return out
}
