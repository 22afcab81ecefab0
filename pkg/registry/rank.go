package registry

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// excludedTags are floating or unstable tag names. Only whole tag names are
// compared; "3.0.0-rc1" is not excluded by "rc".
var excludedTags = map[string]struct{}{
	"latest":   {},
	"edge":     {},
	"nightly":  {},
	"dev":      {},
	"develop":  {},
	"master":   {},
	"main":     {},
	"unstable": {},
	"beta":     {},
	"alpha":    {},
	"rc":       {},
	"test":     {},
	"testing":  {},
}

// releaseTagPattern: optional "v", one to three numeric groups, optional
// "-word" suffix. Independent of excludedTags.
var releaseTagPattern = regexp.MustCompile(`^v?\d+(\.\d+)?(\.\d+)?(-\w+)?$`)

var versionSeparators = regexp.MustCompile(`[-.]`)

// IsExcludedTag reports whether tag, case-insensitively, is a floating tag name
func IsExcludedTag(tag string) bool {
	_, ok := excludedTags[cases.Lower(language.Und).String(tag)]
	return ok
}

// IsReleaseTag reports whether tag has a release-version shape
func IsReleaseTag(tag string) bool {
	return releaseTagPattern.MatchString(tag)
}

// BestTag picks the highest release tag from tags. With no tags it returns
// "latest"; with no release-shaped tags it returns the first tag unchanged.
func BestTag(tags []string) string {
	if len(tags) == 0 {
		return DefaultTag
	}

	caser := cases.Lower(language.Und)
	candidates := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, excluded := excludedTags[caser.String(t)]; excluded {
			continue
		}
		if !releaseTagPattern.MatchString(t) {
			continue
		}
		candidates = append(candidates, t)
	}

	if len(candidates) == 0 {
		return tags[0]
	}

	// Stable, so equal keys keep their backend order
	sort.SliceStable(candidates, func(i, j int) bool {
		return compareVersionKeys(versionKey(candidates[i]), versionKey(candidates[j])) > 0
	})
	return candidates[0]
}

// versionKey turns "v1.10.2-alpine" into [1 10 2 0]: leading "v" stripped,
// split on "." and "-", first four parts, non-numeric parts count as 0.
func versionKey(tag string) [4]int {
	var key [4]int
	parts := versionSeparators.Split(strings.TrimLeft(tag, "v"), -1)
	for i := 0; i < len(parts) && i < len(key); i++ {
		// Atoi saturates on overflow, which keeps huge numbers ordered
		n, err := strconv.Atoi(parts[i])
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			n = 0
		}
		key[i] = n
	}
	return key
}

func compareVersionKeys(a, b [4]int) int {
	for i := range a {
		switch {
		case a[i] > b[i]:
			return 1
		case a[i] < b[i]:
			return -1
		}
	}
	return 0
}
