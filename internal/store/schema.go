package store

// Schema v1 - Initial catalog schema
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Scores discovered in the library
CREATE TABLE IF NOT EXISTS scores (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  path TEXT UNIQUE NOT NULL,
  file_key TEXT NOT NULL,
  filename TEXT NOT NULL,
  composer TEXT NOT NULL DEFAULT 'Unknown',
  title TEXT NOT NULL,
  size_bytes INTEGER,
  mtime_unix INTEGER,
  first_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  last_update_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scores_file_key ON scores(file_key);
CREATE INDEX IF NOT EXISTS idx_scores_composer ON scores(composer);
CREATE INDEX IF NOT EXISTS idx_scores_title ON scores(title);
`

// Schema v2 - Tags column plus the composer/title browse index
const schemaV2 = `
ALTER TABLE scores ADD COLUMN tags TEXT NOT NULL DEFAULT '[]';

CREATE INDEX IF NOT EXISTS idx_scores_composer_title ON scores(composer, title);
`
