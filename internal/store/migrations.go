package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Captures table - one row per saved measurement
		`CREATE TABLE IF NOT EXISTS captures (
			id TEXT PRIMARY KEY,
			width_in REAL NOT NULL,
			height_in REAL NOT NULL,
			size_category INTEGER NOT NULL,
			trigger TEXT NOT NULL CHECK(trigger IN ('auto', 'manual')),
			image_path TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_captures_created_at ON captures(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
