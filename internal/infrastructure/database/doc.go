// Package database provides the SQLite store used for sleep summaries.
//
// It manages the connection (WAL mode, busy timeout, single writer) and
// applies embedded SQL migrations in version order, each in its own
// transaction. Migrations are forward-only and named
// YYYYMMDD_HHMMSS_description.up.sql.
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
