package database

import (
	"context"
	"fmt"
)

// Bootstrap DDL. Mirrors the two-table layout the service owns; the partial
// unique index backs the "at most one active record per book" invariant at
// the store level as well. The cascade lets a book with only returned
// records be deleted, taking its history with it; active records block the
// delete in the service guard before the cascade can fire.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id            BIGSERIAL PRIMARY KEY,
		isbn          VARCHAR(20)  UNIQUE NOT NULL,
		title         VARCHAR(200) NOT NULL,
		author        VARCHAR(100) NOT NULL,
		publisher     VARCHAR(100),
		publish_date  DATE,
		category      VARCHAR(50),
		status        VARCHAR(20)  NOT NULL DEFAULT 'available',
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS borrow_records (
		id             BIGSERIAL PRIMARY KEY,
		book_id        BIGINT NOT NULL REFERENCES books (id) ON DELETE CASCADE,
		borrower_name  VARCHAR(50) NOT NULL,
		borrower_phone VARCHAR(20) NOT NULL,
		borrow_date    DATE NOT NULL DEFAULT CURRENT_DATE,
		return_date    DATE,
		status         VARCHAR(20) NOT NULL DEFAULT 'borrowing',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS borrow_records_one_active_per_book
		ON borrow_records (book_id)
		WHERE status = 'borrowing'`,
	`CREATE INDEX IF NOT EXISTS borrow_records_created_desc
		ON borrow_records (created_at DESC)`,
}

func (d *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := d.SQL.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Seed inserts a few sample books for local development. Re-runs are no-ops.
func (d *DB) Seed(ctx context.Context) error {
	const q = `
INSERT INTO books (isbn, title, author, publisher, publish_date, category)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (isbn) DO NOTHING`

	samples := [][]any{
		{"9787115428028", "Professional JavaScript for Web Developers", "Nicholas C. Zakas", "Posts & Telecom Press", "2017-09-01", "Programming"},
		{"9787121362217", "Node.js in Action", "Mike Cantelon", "Publishing House of Electronics Industry", "2019-05-01", "Programming"},
		{"9787115485588", "Node.js: Up and Running", "Pu Ling", "Posts & Telecom Press", "2018-12-01", "Programming"},
	}
	for _, s := range samples {
		if _, err := d.SQL.ExecContext(ctx, q, s...); err != nil {
			return fmt.Errorf("seed books: %w", err)
		}
	}
	return nil
}
