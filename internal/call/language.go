package call

import "strings"

// LanguageMap maps detected-language codes to supported synthesis codes.
// Unmapped or unknown codes fall back to the baseline language.
type LanguageMap struct {
	supported map[string]string
	fallback  string
}

func NewLanguageMap(supported map[string]string, fallback string) LanguageMap {
	m := make(map[string]string, len(supported))
	for k, v := range supported {
		m[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return LanguageMap{supported: m, fallback: fallback}
}

// Resolve returns the synthesis language for a detected code.
func (lm LanguageMap) Resolve(code string) string {
	if v, ok := lm.supported[strings.ToLower(strings.TrimSpace(code))]; ok {
		return v
	}
	return lm.fallback
}

// Fallback returns the baseline synthesis language.
func (lm LanguageMap) Fallback() string { return lm.fallback }
