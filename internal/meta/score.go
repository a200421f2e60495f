// Package meta derives score metadata from library paths. Filenames
// follow the "Composer - Title -- tag1 tag2.pdf" convention, and the
// folders between the library root and the file contribute further
// tags. The package also provides the normalized comparison keys used
// to find duplicate scores.
package meta

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/franz/score-stand/internal/pathutil"
)

// UnknownComposer is used when a filename carries no composer part.
const UnknownComposer = "Unknown"

// Score is the metadata extracted for one PDF in the library.
type Score struct {
	Path     string
	Filename string
	Composer string
	Title    string
	Tags     []string
}

// ParseFilename extracts composer, title and tags from a file name
// following the library convention:
//
//	"Composer - Title -- tag1 tag2.pdf"
//
// Both the composer and the tag block are optional. A name without
// " - " becomes a title with an unknown composer.
func ParseFilename(filename string) Score {
	s := Score{Filename: filename, Composer: UnknownComposer}

	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	if idx := strings.Index(base, " -- "); idx >= 0 {
		s.Tags = splitTags(base[idx+4:])
		base = base[:idx]
	}

	if parts := strings.SplitN(base, " - ", 2); len(parts) == 2 {
		s.Composer = CleanString(parts[0])
		s.Title = CleanString(parts[1])
	} else {
		s.Title = CleanString(base)
	}

	if s.Composer == "" {
		s.Composer = UnknownComposer
	}
	if s.Title == "" {
		s.Title = CleanString(base)
	}

	return s
}

// ParseScore parses a file that lives under the library root, merging
// filename tags with one tag per folder between the root and the file.
func ParseScore(root, path string) Score {
	s := ParseFilename(filepath.Base(path))
	s.Path = pathutil.ToPortable(path)
	s.Tags = MergeTags(FolderTags(root, filepath.Dir(path)), s.Tags)
	return s
}

// FolderTags derives tags from the directory components between the
// library root and dir. Files directly in the root get none.
func FolderTags(root, dir string) []string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}

	var tags []string
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// MergeTags combines tag lists into a deduplicated set, sorted
// case-insensitively. Tags keep the case of their first occurrence;
// deduplication is case-sensitive so "Brass" and "brass" both survive.
func MergeTags(lists ...[]string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, list := range lists {
		for _, tag := range list {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			merged = append(merged, tag)
		}
	}
	sort.Slice(merged, func(i, j int) bool {
		a, b := strings.ToLower(merged[i]), strings.ToLower(merged[j])
		if a != b {
			return a < b
		}
		return merged[i] < merged[j]
	})
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// HasTags reports whether the score carries every tag in want.
// Matching is case-insensitive.
func (s Score) HasTags(want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := make(map[string]bool, len(s.Tags))
	for _, tag := range s.Tags {
		have[strings.ToLower(tag)] = true
	}
	for _, tag := range want {
		if !have[strings.ToLower(tag)] {
			return false
		}
	}
	return true
}

func splitTags(block string) []string {
	return MergeTags(strings.Fields(block))
}

// SortScores orders scores for display. The default order is composer
// then title; byTitle flips the two. Both compare case-insensitively.
func SortScores(scores []Score, byTitle bool) {
	sort.SliceStable(scores, func(i, j int) bool {
		a, b := sortKey(scores[i], byTitle), sortKey(scores[j], byTitle)
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return a[1] < b[1]
	})
}

func sortKey(s Score, byTitle bool) [2]string {
	composer := strings.ToLower(s.Composer)
	title := strings.ToLower(s.Title)
	if byTitle {
		return [2]string{title, composer}
	}
	return [2]string{composer, title}
}
