package export

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"tigerfetch/core"
)

const iocSchema = `
CREATE TABLE IF NOT EXISTS iocs (
	export_id     TEXT NOT NULL,
	exported_at   TEXT NOT NULL,
	analysis_guid TEXT NOT NULL,
	title         TEXT,
	analysed_at   TEXT,
	source_name   TEXT,
	ioc_type      TEXT,
	ioc_value     TEXT,
	confidence    TEXT,
	context       TEXT
);
CREATE INDEX IF NOT EXISTS idx_iocs_value ON iocs(ioc_value);
CREATE INDEX IF NOT EXISTS idx_iocs_type ON iocs(ioc_type);
`

// WriteSQLite appends normalized IOC records to a local SQLite database,
// creating the schema on first use. Each call is one export batch, stamped
// with a shared export id and timestamp so repeated pulls can be told
// apart when hunting offline. Returns the batch id.
func WriteSQLite(ctx context.Context, path string, iocs []core.IOCRecord, logger *zap.SugaredLogger) (string, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return "", fmt.Errorf("failed to open SQLite database %s: %w", path, err)
	}
	defer db.Close()

	// WAL keeps a concurrent reader from blocking the export; the busy
	// timeout avoids immediate SQLITE_BUSY on a locked file.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return "", fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return "", fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.ExecContext(ctx, iocSchema); err != nil {
		return "", fmt.Errorf("failed to create IOC schema: %w", err)
	}

	exportID := uuid.New().String()
	exportedAt := time.Now().UTC().Format(time.RFC3339)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO iocs
		(export_id, exported_at, analysis_guid, title, analysed_at, source_name, ioc_type, ioc_value, confidence, context)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ioc := range iocs {
		_, err := stmt.ExecContext(ctx,
			exportID, exportedAt,
			ioc.AnalysisGUID, ioc.Title, ioc.AnalysedAt, ioc.SourceName,
			nullable(ioc.IOCType), nullable(ioc.IOCValue),
			confidenceText(ioc.Confidence), nullable(ioc.Context))
		if err != nil {
			return "", fmt.Errorf("failed to insert IOC record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit export: %w", err)
	}

	logger.Debugw("wrote SQLite export",
		"path", path,
		"export_id", exportID,
		"records", len(iocs))

	return exportID, nil
}

// nullable maps a missing field to SQL NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// confidenceText stores the verbatim confidence value as text. The upstream
// payload does not guarantee a numeric type, so no numeric column is
// assumed.
func confidenceText(v any) any {
	if v == nil {
		return nil
	}
	return CellString(v)
}
