package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/roach88/iconfont/internal/icon"
)

// Build statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Build is one recorded build run.
type Build struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	PackageName    string    `json:"package_name"`
	PackageVersion string    `json:"package_version"`
	ToolVersion    string    `json:"tool_version"`
	Icons          int       `json:"icons"`
	Status         string    `json:"status"`
	Message        string    `json:"message,omitempty"`
}

// Output is one file written by a build, path relative to the dist folder.
type Output struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// NewOutput hashes data for the ledger.
func NewOutput(path string, data []byte) Output {
	sum := sha256.Sum256(data)
	return Output{Path: path, Size: int64(len(data)), SHA256: hex.EncodeToString(sum[:])}
}

// RecordBuild inserts a build and its outputs in one transaction.
func (s *Store) RecordBuild(ctx context.Context, b Build, outputs []Output) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record build: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO builds
		(id, started_at, finished_at, package_name, package_version, tool_version, icon_count, status, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID,
		formatTime(b.StartedAt),
		formatTime(b.FinishedAt),
		b.PackageName,
		b.PackageVersion,
		b.ToolVersion,
		b.Icons,
		b.Status,
		b.Message,
	)
	if err != nil {
		return fmt.Errorf("record build: %w", err)
	}

	for _, o := range outputs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO build_outputs (build_id, path, size, sha256)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(build_id, path) DO UPDATE SET size = excluded.size, sha256 = excluded.sha256
		`, b.ID, o.Path, o.Size, o.SHA256)
		if err != nil {
			return fmt.Errorf("record build output %q: %w", o.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record build: commit: %w", err)
	}
	return nil
}

// RecordAllocations stores the codepoint of every icon that has one.
// Codepoints already recorded keep their first owner. Returns the number of
// new rows.
func (s *Store) RecordAllocations(ctx context.Context, buildID string, at time.Time, icons []icon.Icon) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("record allocations: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	inserted := 0
	for _, ic := range icons {
		if ic.Codepoint == "" {
			continue
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO allocations (codepoint, name, version, build_id, allocated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(codepoint) DO NOTHING
		`, ic.Codepoint, ic.Name, ic.Version, buildID, formatTime(at))
		if err != nil {
			return 0, fmt.Errorf("record allocation %s: %w", ic.Codepoint, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("record allocation %s: %w", ic.Codepoint, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("record allocations: commit: %w", err)
	}
	return inserted, nil
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
