package storage

var schemas = map[string]string{
	DriverSQLite:   sqliteSchema,
	DriverPostgres: postgresSchema,
}

const sqliteSchema = `
-- The 'sources' table tracks where synced decks come from, either a local directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    owner_id TEXT NOT NULL DEFAULT '',
    last_scanned DATETIME
);

CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    source_id INTEGER,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,

    FOREIGN KEY(source_id) REFERENCES sources(id) ON DELETE SET NULL
);

-- 'position' keeps creation order stable.
CREATE TABLE IF NOT EXISTS review_cards (
    id TEXT PRIMARY KEY,
    deck_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,

    FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS flashcards (
    id TEXT PRIMARY KEY,
    review_card_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    front_content TEXT NOT NULL DEFAULT '',
    front_image_url TEXT NOT NULL DEFAULT '',
    back_content TEXT NOT NULL DEFAULT '',
    back_image_url TEXT NOT NULL DEFAULT '',
    feedback TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,

    FOREIGN KEY(review_card_id) REFERENCES review_cards(id) ON DELETE CASCADE
);

-- One row per (user, deck, review card, flashcard, content type).
-- flashcard_id is '' for review card progress so the key stays unique.
CREATE TABLE IF NOT EXISTS user_study_progress (
    user_id TEXT NOT NULL,
    deck_id TEXT NOT NULL,
    review_card_id TEXT NOT NULL,
    flashcard_id TEXT NOT NULL DEFAULT '',
    content_type TEXT NOT NULL CHECK (content_type IN ('review_card', 'flashcard')),
    seen_at DATETIME,
    last_reviewed_at DATETIME,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,

    PRIMARY KEY (user_id, deck_id, review_card_id, flashcard_id, content_type),
    FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sources (
    id BIGSERIAL PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    owner_id TEXT NOT NULL DEFAULT '',
    last_scanned TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    source_id BIGINT REFERENCES sources(id) ON DELETE SET NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS review_cards (
    id TEXT PRIMARY KEY,
    deck_id TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS flashcards (
    id TEXT PRIMARY KEY,
    review_card_id TEXT NOT NULL REFERENCES review_cards(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    front_content TEXT NOT NULL DEFAULT '',
    front_image_url TEXT NOT NULL DEFAULT '',
    back_content TEXT NOT NULL DEFAULT '',
    back_image_url TEXT NOT NULL DEFAULT '',
    feedback TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS user_study_progress (
    user_id TEXT NOT NULL,
    deck_id TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
    review_card_id TEXT NOT NULL,
    flashcard_id TEXT NOT NULL DEFAULT '',
    content_type TEXT NOT NULL CHECK (content_type IN ('review_card', 'flashcard')),
    seen_at TIMESTAMPTZ,
    last_reviewed_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,

    PRIMARY KEY (user_id, deck_id, review_card_id, flashcard_id, content_type)
);
`
