package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pdfwatch/pdfwatch/internal/service"
)

// Record appends one processing outcome to the audit trail.
func (s *SQLiteStorage) Record(ctx context.Context, rec service.ProcessRecord) error {
	if rec.OriginalPath == "" {
		return fmt.Errorf("original path cannot be empty")
	}
	if rec.Outcome == "" {
		return fmt.Errorf("outcome cannot be empty")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO process_history (processed_at, original_path, final_path, label, folder_path, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ProcessedAt, rec.OriginalPath, rec.FinalPath, rec.Label, rec.FolderPath, rec.Outcome, rec.Detail)
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (s *SQLiteStorage) Recent(ctx context.Context, limit int) ([]service.ProcessRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT processed_at, original_path, final_path, label, folder_path, outcome, detail
		FROM process_history
		ORDER BY processed_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = closeErr
		}
	}()

	var records []service.ProcessRecord
	for rows.Next() {
		var rec service.ProcessRecord
		var finalPath, label, detail sql.NullString
		if scanErr := rows.Scan(&rec.ProcessedAt, &rec.OriginalPath, &finalPath, &label, &rec.FolderPath, &rec.Outcome, &detail); scanErr != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", scanErr)
		}
		rec.FinalPath = finalPath.String
		rec.Label = label.String
		rec.Detail = detail.String
		records = append(records, rec)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", rowsErr)
	}

	return records, nil
}
