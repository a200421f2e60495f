package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

const scoreColumns = `id, path, file_key, filename, composer, title, tags,
       COALESCE(size_bytes, 0), COALESCE(mtime_unix, 0),
       first_seen_at, last_update_at`

const upsertScoreSQL = `
	INSERT INTO scores (path, file_key, filename, composer, title, tags, size_bytes, mtime_unix)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		file_key = excluded.file_key,
		filename = excluded.filename,
		composer = excluded.composer,
		title = excluded.title,
		tags = excluded.tags,
		size_bytes = excluded.size_bytes,
		mtime_unix = excluded.mtime_unix,
		last_update_at = CURRENT_TIMESTAMP
`

// UpsertScore inserts or updates a catalog row, keyed on path
func (s *Store) UpsertScore(sc *Score) error {
	tags, err := encodeTags(sc.Tags)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(upsertScoreSQL,
		sc.Path, sc.FileKey, sc.Filename, sc.Composer, sc.Title, tags, sc.SizeBytes, sc.MtimeUnix)

	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}

	// Get the inserted ID if this was a new insert
	if sc.ID == 0 {
		id, err := result.LastInsertId()
		if err == nil && id != 0 {
			sc.ID = id
		} else {
			// On conflict update, fetch the existing ID
			err = s.db.QueryRow("SELECT id FROM scores WHERE path = ?", sc.Path).Scan(&sc.ID)
			if err != nil {
				return fmt.Errorf("failed to get score ID: %w", err)
			}
		}
	}

	return nil
}

// UpsertScoreBatch writes a batch of catalog rows in one transaction
func (s *Store) UpsertScoreBatch(batch []*Score) error {
	return s.Transaction(func(tx *sql.Tx) error {
		for _, sc := range batch {
			tags, err := encodeTags(sc.Tags)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(upsertScoreSQL,
				sc.Path, sc.FileKey, sc.Filename, sc.Composer, sc.Title, tags, sc.SizeBytes, sc.MtimeUnix); err != nil {
				return fmt.Errorf("failed to upsert score: %w", err)
			}
		}
		return nil
	})
}

// FileKeyIndex returns path -> file_key for every catalogued score. The
// scanner uses it to skip unchanged files without per-file queries.
func (s *Store) FileKeyIndex() (map[string]string, error) {
	rows, err := s.db.Query("SELECT path, file_key FROM scores")
	if err != nil {
		return nil, fmt.Errorf("failed to query file keys: %w", err)
	}
	defer rows.Close()

	index := make(map[string]string)
	for rows.Next() {
		var path, key string
		if err := rows.Scan(&path, &key); err != nil {
			return nil, fmt.Errorf("failed to scan file key: %w", err)
		}
		index[path] = key
	}

	return index, rows.Err()
}

// GetScoreByPath retrieves a score by its portable path
func (s *Store) GetScoreByPath(path string) (*Score, error) {
	row := s.db.QueryRow(`
		SELECT `+scoreColumns+`
		FROM scores WHERE path = ?
	`, path)

	sc, err := scanScore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score: %w", err)
	}

	return sc, nil
}

// AllScores retrieves the whole catalog ordered by composer then title
func (s *Store) AllScores() ([]*Score, error) {
	return s.SearchScores(SearchOptions{})
}

// SearchScores retrieves catalog rows matching the given filters. Title
// and composer narrow the query; tags are checked per row since they
// are stored as JSON.
func (s *Store) SearchScores(opts SearchOptions) ([]*Score, error) {
	query := "SELECT " + scoreColumns + " FROM scores"

	var where []string
	var args []any
	if opts.Title != "" {
		where = append(where, "title LIKE ? COLLATE NOCASE")
		args = append(args, "%"+opts.Title+"%")
	}
	if opts.Composer != "" {
		where = append(where, "composer = ? COLLATE NOCASE")
		args = append(args, opts.Composer)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	if opts.ByTitle {
		query += " ORDER BY title COLLATE NOCASE, composer COLLATE NOCASE"
	} else {
		query += " ORDER BY composer COLLATE NOCASE, title COLLATE NOCASE"
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var scores []*Score
	for rows.Next() {
		sc, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		if !hasAllTags(sc.Tags, opts.Tags) {
			continue
		}
		scores = append(scores, sc)
	}

	return scores, rows.Err()
}

// CountScores returns the number of catalogued scores
func (s *Store) CountScores() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM scores").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scores: %w", err)
	}
	return count, nil
}

// AllPaths returns every catalogued portable path
func (s *Store) AllPaths() ([]string, error) {
	rows, err := s.db.Query("SELECT path FROM scores ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("failed to query paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, p)
	}

	return paths, rows.Err()
}

// DeleteScore removes a catalog row. Deleting an absent path is not an
// error.
func (s *Store) DeleteScore(path string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("failed to delete score: %w", err)
	}
	return nil
}

// DeleteScoresUnder removes every catalog row below the given portable
// directory prefix and returns how many were removed. The watcher uses
// it when a directory disappears, since its files get no events of
// their own.
func (s *Store) DeleteScoresUnder(prefix string) (int, error) {
	pattern := escapeLike(strings.TrimSuffix(prefix, "/")) + "/%"
	res, err := s.db.Exec(`DELETE FROM scores WHERE path LIKE ? ESCAPE '\'`, pattern)
	if err != nil {
		return 0, fmt.Errorf("failed to delete scores under %s: %w", prefix, err)
	}

	n, _ := res.RowsAffected()
	return int(n), nil
}

// escapeLike escapes LIKE wildcards in a literal path fragment.
// Underscores are common in filenames and must not match arbitrary
// characters.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// PruneExcept deletes catalog rows whose path is not in keep and
// returns how many were removed.
func (s *Store) PruneExcept(keep []string) (int, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, p := range keep {
		keepSet[p] = true
	}

	paths, err := s.AllPaths()
	if err != nil {
		return 0, err
	}

	var pruned int
	err = s.Transaction(func(tx *sql.Tx) error {
		for _, p := range paths {
			if keepSet[p] {
				continue
			}
			if _, err := tx.Exec("DELETE FROM scores WHERE path = ?", p); err != nil {
				return fmt.Errorf("failed to delete score: %w", err)
			}
			pruned++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return pruned, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScore(row rowScanner) (*Score, error) {
	sc := &Score{}
	var tags string
	err := row.Scan(
		&sc.ID, &sc.Path, &sc.FileKey, &sc.Filename, &sc.Composer, &sc.Title, &tags,
		&sc.SizeBytes, &sc.MtimeUnix,
		&sc.FirstSeen, &sc.LastUpdate,
	)
	if err != nil {
		return nil, err
	}

	sc.Tags, err = decodeTags(tags)
	if err != nil {
		return nil, err
	}

	return sc, nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}

func decodeTags(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(data), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

func hasAllTags(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]bool, len(have))
	for _, tag := range have {
		set[strings.ToLower(tag)] = true
	}
	for _, tag := range want {
		if !set[strings.ToLower(tag)] {
			return false
		}
	}
	return true
}
