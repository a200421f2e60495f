package meta

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// DuplicateGroup is a set of scores that resolve to the same key.
type DuplicateGroup struct {
	Key    string
	Scores []Score
}

// DuplicateKey creates the comparison key for duplicate detection.
// Key format: composer_norm|title_norm
//
// Different engravings of the same piece share a key; the edition
// suffix handling in NormalizeTitle takes care of that. Scores whose
// title normalizes away entirely fall back to the filename so
// unrelated unparseable files do not group together.
func DuplicateKey(s Score) string {
	composerNorm := NormalizeComposer(s.Composer)
	titleNorm := NormalizeTitle(s.Title)

	if titleNorm == "" {
		base := strings.TrimSuffix(s.Filename, filepath.Ext(s.Filename))
		titleNorm = NormalizeTitle(base)
		if titleNorm == "" {
			titleNorm = fmt.Sprintf("file_%s", strings.ToLower(s.Filename))
		}
	}
	if composerNorm == "" {
		composerNorm = "unknown"
	}

	return fmt.Sprintf("%s|%s", composerNorm, titleNorm)
}

// FindDuplicates groups scores that share a duplicate key. Only groups
// with at least two members are returned, ordered by key. Members keep
// their input order.
func FindDuplicates(scores []Score) []DuplicateGroup {
	grouped := make(map[string][]Score)
	for _, s := range scores {
		key := DuplicateKey(s)
		grouped[key] = append(grouped[key], s)
	}

	var groups []DuplicateGroup
	for key, members := range grouped {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{Key: key, Scores: members})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}
