// Package reconcile matches SVG glyph files against the manifest.
//
// Reconciliation normalizes every glyph to u<codepoint>-<name>.svg,
// allocates codepoints for records and files that lack one, and appends
// records for newly discovered files. It is idempotent: a rerun after a
// crash skips files that were already renamed.
//
// The reconciler is the single owner of codepoint allocation for a run.
// Allocation is sequential; never run two reconcilers on one manifest.
package reconcile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/iconfont/internal/icon"
)

// Reconciler reconciles one SVG directory.
type Reconciler struct {
	// Dir is the SVG folder.
	Dir string

	// Version is assigned to new records and to records without one.
	Version string

	// Reserved are records whose codepoints must never be handed out
	// again, e.g. every allocation recorded in build history. They take
	// part in allocation only and are never added to the manifest.
	Reserved []icon.Icon

	// DryRun computes the result without renaming or deleting files.
	DryRun bool
}

// Result summarizes a reconciliation.
type Result struct {
	// Renamed counts plain files moved to their canonical name.
	Renamed int

	// Allocated lists records (existing or new) that received a codepoint.
	Allocated []icon.Icon

	// Added lists records created for newly discovered files.
	Added []icon.Icon

	// Orphans are canonical files no record names.
	Orphans []string

	// Dirty is true when the manifest was modified.
	Dirty bool

	// Errors holds the recoverable per-icon errors.
	Errors *ErrorList
}

// Reconcile mutates m in place and renames files in r.Dir. Per-icon
// problems are collected in Result.Errors; filesystem failures are returned
// as an error.
func (r *Reconciler) Reconcile(m *icon.Manifest) (*Result, error) {
	if m == nil {
		return nil, errors.New("reconcile: nil manifest")
	}
	res := &Result{Errors: &ErrorList{}}

	// 1. Codepoints for records that lack one.
	for i := range *m {
		rec := &(*m)[i]
		if rec.Version == "" && r.Version != "" {
			rec.Version = r.Version
			res.Dirty = true
		}
		if rec.Codepoint != "" {
			continue
		}
		cp, err := r.allocate(*m)
		if err != nil {
			return nil, err
		}
		rec.Codepoint = cp
		res.Allocated = append(res.Allocated, *rec)
		res.Dirty = true
	}

	// 2. Normalize file names of every known record.
	for _, rec := range *m {
		if err := r.place(rec, res); err != nil {
			return nil, err
		}
	}

	// 3. Plain files the manifest does not know about yet.
	files, err := r.listSVGs()
	if err != nil {
		return nil, err
	}
	known := m.Names()
	for _, name := range files {
		if !icon.IsPlainSVG(name) {
			continue
		}
		iconName := icon.NameFromFile(name)
		if known[iconName] {
			continue
		}
		if !icon.ValidName(iconName) {
			res.Errors.Add(fmt.Sprintf("Invalid icon name at %q", name))
			continue
		}
		cp, err := r.allocate(*m)
		if err != nil {
			return nil, err
		}
		rec := icon.Icon{Name: iconName, Codepoint: cp, Version: r.Version}
		// Rename from the listed spelling, which may be NFD on disk.
		if err := r.renameFile(name, rec.FileName(), res); err != nil {
			return nil, err
		}
		*m = append(*m, rec)
		known[iconName] = true
		res.Added = append(res.Added, rec)
		res.Allocated = append(res.Allocated, rec)
		res.Dirty = true
	}

	// Canonical files that no record claims are reported, never touched.
	expected := make(map[string]bool, len(*m))
	for _, rec := range *m {
		expected[rec.FileName()] = true
	}
	for _, name := range files {
		if icon.IsCanonicalFileName(name) && !expected[name] {
			res.Orphans = append(res.Orphans, name)
		}
	}

	return res, nil
}

// allocate returns the next codepoint over the manifest plus reserved
// records.
func (r *Reconciler) allocate(m icon.Manifest) (string, error) {
	pool := m
	if len(r.Reserved) > 0 {
		pool = make(icon.Manifest, 0, len(m)+len(r.Reserved))
		pool = append(pool, m...)
		pool = append(pool, r.Reserved...)
	}
	cp, err := icon.NextCodepoint(pool)
	if err != nil {
		return "", fmt.Errorf("allocate codepoint: %w", err)
	}
	return cp, nil
}

// place moves <name>.svg to its canonical name. A missing source with an
// existing destination is already reconciled; a missing pair is an icon
// error.
func (r *Reconciler) place(rec icon.Icon, res *Result) error {
	plain := rec.PlainFileName()
	srcExists, err := r.exists(plain)
	if err != nil {
		return err
	}
	if srcExists {
		return r.renameFile(plain, rec.FileName(), res)
	}

	dstExists, err := r.exists(rec.FileName())
	if err != nil {
		return err
	}
	if !dstExists {
		res.Errors.Add(fmt.Sprintf("Invalid icon at %q", plain))
	}
	return nil
}

// renameFile renames src to dst inside Dir, deleting an existing dst first.
func (r *Reconciler) renameFile(src, dst string, res *Result) error {
	res.Renamed++
	if r.DryRun {
		return nil
	}

	dstPath := filepath.Join(r.Dir, dst)
	dstExists, err := r.exists(dst)
	if err != nil {
		return err
	}
	if dstExists {
		if err := os.Remove(dstPath); err != nil {
			return fmt.Errorf("remove %s: %w", dstPath, err)
		}
	}
	if err := os.Rename(filepath.Join(r.Dir, src), dstPath); err != nil {
		return fmt.Errorf("rename %s: %w", src, err)
	}
	return nil
}

// exists reports whether name is present in Dir.
func (r *Reconciler) exists(name string) (bool, error) {
	_, err := os.Stat(filepath.Join(r.Dir, name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", name, err)
}

// listSVGs returns the regular files in Dir, sorted by name.
func (r *Reconciler) listSVGs() ([]string, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return nil, fmt.Errorf("read svg folder: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() || e.Type()&fs.ModeSymlink != 0 {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
