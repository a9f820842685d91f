package domain

import (
	"database/sql"
	"strings"
)

// SourceType tells the sync process how to fetch a source.
type SourceType string

const (
	SourceLocal SourceType = "local"
	SourceGit   SourceType = "git"
)

// Source is a place deck files are synced from, either a local path or a Git URL.
type Source struct {
	ID          int64        `db:"id" json:"id"`
	Path        string       `db:"path" json:"path"`
	Type        SourceType   `db:"type" json:"type"`
	OwnerID     string       `db:"owner_id" json:"owner_id"`
	LastScanned sql.NullTime `db:"last_scanned" json:"-"`
}

// DetectSourceType guesses whether path is a git remote or a local directory.
func DetectSourceType(path string) SourceType {
	if strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "git@") ||
		strings.HasSuffix(path, ".git") {
		return SourceGit
	}
	return SourceLocal
}
