// Package migration applies versioned SQL migrations to a SQLite database.
//
// Migration files are read from an fs.FS (normally an embed.FS compiled into
// the binary) and must be named {version}_{description}.sql, for example
// "001_initial_schema.sql". Applied versions are tracked in the
// schema_migrations table together with the checksum of the file that was run,
// so an edited migration is detected on the next start.
//
//	manager := migration.NewManager(migration.NewFileScanner(files, "."), migration.NewSQLiteExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
