package sources

import (
	"regexp"
	"strings"
)

var hashtagRe = regexp.MustCompile(`#\w+`)

// ExtractHashtags scans free text for #tags. Duplicates are folded
// case-insensitively with the first-seen casing preserved, in order of
// appearance.
func ExtractHashtags(text string) []string {
	matches := hashtagRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var tags []string
	for _, m := range matches {
		tag := strings.TrimPrefix(m, "#")
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags
}
