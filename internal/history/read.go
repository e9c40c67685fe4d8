package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/iconfont/internal/icon"
)

// ErrNotFound is returned when a build ID is unknown.
var ErrNotFound = errors.New("build not found")

// Allocation is one ledger entry.
type Allocation struct {
	Codepoint   string    `json:"codepoint"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	BuildID     string    `json:"build_id"`
	AllocatedAt time.Time `json:"allocated_at"`
}

// Allocations returns every recorded codepoint, ordered by codepoint.
func (s *Store) Allocations(ctx context.Context) ([]Allocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT codepoint, name, version, build_id, allocated_at
		FROM allocations
		ORDER BY codepoint COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query allocations: %w", err)
	}
	defer rows.Close()

	allocations := []Allocation{}
	for rows.Next() {
		var a Allocation
		var at string
		if err := rows.Scan(&a.Codepoint, &a.Name, &a.Version, &a.BuildID, &at); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		if a.AllocatedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		allocations = append(allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allocations: %w", err)
	}
	return allocations, nil
}

// Reserved returns the recorded allocations as icon records, for the
// reconciler's allocator.
func (s *Store) Reserved(ctx context.Context) ([]icon.Icon, error) {
	allocations, err := s.Allocations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]icon.Icon, len(allocations))
	for i, a := range allocations {
		out[i] = icon.Icon{Name: a.Name, Codepoint: a.Codepoint, Version: a.Version}
	}
	return out, nil
}

// Builds returns the most recent builds first. limit <= 0 returns all.
func (s *Store) Builds(ctx context.Context, limit int) ([]Build, error) {
	query := `
		SELECT id, started_at, finished_at, package_name, package_version, tool_version, icon_count, status, message
		FROM builds
		ORDER BY started_at DESC, id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

// Build returns one build by ID.
func (s *Store) Build(ctx context.Context, id string) (Build, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, package_name, package_version, tool_version, icon_count, status, message
		FROM builds
		WHERE id = ?
	`, id)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return b, err
}

// Outputs returns the files a build wrote, ordered by path.
func (s *Store) Outputs(ctx context.Context, buildID string) ([]Output, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, size, sha256
		FROM build_outputs
		WHERE build_id = ?
		ORDER BY path COLLATE BINARY ASC
	`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()

	outputs := []Output{}
	for rows.Next() {
		var o Output
		if err := rows.Scan(&o.Path, &o.Size, &o.SHA256); err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		outputs = append(outputs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outputs: %w", err)
	}
	return outputs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (Build, error) {
	var b Build
	var started, finished string
	err := row.Scan(&b.ID, &started, &finished, &b.PackageName, &b.PackageVersion,
		&b.ToolVersion, &b.Icons, &b.Status, &b.Message)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Build{}, err
		}
		return Build{}, fmt.Errorf("scan build: %w", err)
	}
	if b.StartedAt, err = parseTime(started); err != nil {
		return Build{}, err
	}
	if b.FinishedAt, err = parseTime(finished); err != nil {
		return Build{}, err
	}
	return b, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
