// Package metastore persists the per-target digests and the compiler
// identity of the previous run.
//
// The store lives in a single cache directory and consists of three HCL
// files: compiler.hcl, timestamps.hcl and project.hcl. It is read once at the
// start of a run and rewritten once at the end, and only when the run was
// dirty. A crash in between leaves the previous files untouched.
package metastore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/modgen/internal/ctxlog"
	"github.com/specialistvlad/modgen/internal/hclfile"
	"github.com/specialistvlad/modgen/internal/runstate"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"
)

const (
	CompilerFile   = "compiler.hcl"
	TimestampsFile = "timestamps.hcl"
	ProjectFile    = "project.hcl"
)

type compilerFile struct {
	CompilerVersion string `hcl:"compiler_version"`
	CompilerName    string `hcl:"compiler_name"`
}

type timestampsFile struct {
	Entries hcl.Expression `hcl:"entries"`
}

type projectFile struct {
	Digest string `hcl:"digest"`
}

// Store reads and writes the meta files of one cache directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// unusable reports whether err means the file should be treated as absent.
func unusable(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, hclfile.ErrMalformed)
}

// Load reads the previous run's record and sets the cold-start flags on state.
//
// A missing or malformed compiler file is a cold start: meta_missing,
// is_dirty, full_regenerate and delete_builds are set and the timestamps are
// not read. A missing or malformed timestamps file alone sets every flag
// except delete_builds. Only genuine I/O failures are returned as errors.
func (s *Store) Load(ctx context.Context, state *runstate.State) (*Record, error) {
	logger := ctxlog.FromContext(ctx).With("cache_dir", s.dir)
	rec := NewRecord()

	var cf compilerFile
	if err := hclfile.Decode(filepath.Join(s.dir, CompilerFile), &cf); err != nil {
		if !unusable(err) {
			return nil, fmt.Errorf("failed to read compiler info: %w", err)
		}
		if errors.Is(err, hclfile.ErrMalformed) {
			logger.Warn("Compiler info file is malformed, treating it as missing.", "error", err)
		}
		logger.Warn("Compiler info file was missing, forcing a full rebuild.")
		state.MarkMetaMissing()
		state.MarkDirty()
		state.MarkFullRegenerate()
		state.MarkDeleteBuilds()
		return rec, nil
	}
	rec.Compiler = CompilerIdentity{Name: cf.CompilerName, Version: cf.CompilerVersion}
	logger.Debug("Compiler info loaded.", "compiler_name", cf.CompilerName, "compiler_version", cf.CompilerVersion)

	if err := s.loadTimestamps(rec); err != nil {
		if !unusable(err) {
			return nil, fmt.Errorf("failed to read timestamps: %w", err)
		}
		logger.Warn("Timestamps file was missing or malformed, regenerating every module.", "error", err)
		rec.Timestamps = NewTimestamps()
		state.MarkMetaMissing()
		state.MarkDirty()
		state.MarkFullRegenerate()
	} else {
		logger.Debug("Timestamps loaded.", "count", rec.Timestamps.Len())
	}

	var pf projectFile
	if err := hclfile.Decode(filepath.Join(s.dir, ProjectFile), &pf); err != nil {
		if !unusable(err) {
			return nil, fmt.Errorf("failed to read project digest: %w", err)
		}
		logger.Debug("Project digest unavailable.", "error", err)
	} else {
		rec.ProjectDigest = pf.Digest
	}

	return rec, nil
}

func (s *Store) loadTimestamps(rec *Record) error {
	path := filepath.Join(s.dir, TimestampsFile)
	var tf timestampsFile
	if err := hclfile.Decode(path, &tf); err != nil {
		return err
	}
	entries, diags := hclfile.OrderedObject(tf.Entries)
	if diags.HasErrors() {
		return fmt.Errorf("%w: failed to read entries of %s: %w", hclfile.ErrMalformed, path, diags)
	}
	for _, e := range entries {
		rec.Timestamps.Set(e.Key, e.Value)
	}
	return nil
}

// Persist rewrites every meta file from rec when the run is dirty. It reports
// whether anything was written.
func (s *Store) Persist(ctx context.Context, rec *Record, state *runstate.State) (bool, error) {
	logger := ctxlog.FromContext(ctx).With("cache_dir", s.dir)
	if !state.IsDirty() {
		logger.Debug("Run is clean, meta store left untouched.")
		return false, nil
	}

	compiler := hclwrite.NewEmptyFile()
	compiler.Body().SetAttributeValue("compiler_version", cty.StringVal(rec.Compiler.Version))
	compiler.Body().SetAttributeValue("compiler_name", cty.StringVal(rec.Compiler.Name))

	entries := make([]hclfile.KeyValue, 0, rec.Timestamps.Len())
	for _, name := range rec.Timestamps.Names() {
		digest, _ := rec.Timestamps.Get(name)
		entries = append(entries, hclfile.KeyValue{Key: name, Value: digest})
	}
	timestamps := hclwrite.NewEmptyFile()
	timestamps.Body().SetAttributeRaw("entries", hclfile.TokensForOrderedObject(entries))

	project := hclwrite.NewEmptyFile()
	project.Body().SetAttributeValue("digest", cty.StringVal(rec.ProjectDigest))

	// The compiler file is written last; an interrupted write is then read
	// back as a cold start.
	var err error
	err = multierr.Append(err, hclfile.Write(filepath.Join(s.dir, TimestampsFile), timestamps))
	err = multierr.Append(err, hclfile.Write(filepath.Join(s.dir, ProjectFile), project))
	err = multierr.Append(err, hclfile.Write(filepath.Join(s.dir, CompilerFile), compiler))
	if err != nil {
		return false, fmt.Errorf("failed to persist meta store: %w", err)
	}

	logger.Debug("Meta store persisted.", "targets", len(entries))
	return true, nil
}
