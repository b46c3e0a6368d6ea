package emitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/modgen/internal/ctxlog"
	"github.com/specialistvlad/modgen/internal/hclfile"
	"github.com/specialistvlad/modgen/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// FetchRequest describes one fetch block that needs to be acquired and built.
type FetchRequest struct {
	Target string
	Fetch  model.Fetch
	// SourceDir is the module directory the fetch belongs to.
	SourceDir string
}

// Fetcher acquires and builds external content. Implementations must be safe
// for concurrent use when the processor runs with more than one worker.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) error
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req FetchRequest) error

// Fetch calls f(ctx, req).
func (f FetcherFunc) Fetch(ctx context.Context, req FetchRequest) error {
	return f(ctx, req)
}

// LogFetcher only logs the requests it receives. It is the default when no
// fetcher is configured, which leaves acquisition to the downstream build.
type LogFetcher struct{}

// Fetch logs the request.
func (LogFetcher) Fetch(ctx context.Context, req FetchRequest) error {
	ctxlog.FromContext(ctx).Info("Fetch requested.",
		"fetch", req.Fetch.Name, "repo", req.Fetch.Repo, "commit", req.Fetch.Commit)
	return nil
}

type fetchMeta struct {
	Digest string `hcl:"digest"`
	Repo   string `hcl:"repo,optional"`
	Commit string `hcl:"commit,optional"`
}

// FetchDigest identifies the inputs of a fetch block. fragments are the
// module's CMake fragments that end up in the fetch build. Every field is
// length prefixed so no two input sets share an encoding.
func FetchDigest(f model.Fetch, fragments ...[]byte) string {
	var buf bytes.Buffer
	field := func(b []byte) {
		fmt.Fprintf(&buf, "%d:", len(b))
		buf.Write(b)
	}
	field([]byte(f.Repo))
	field([]byte(f.Commit))
	fmt.Fprintf(&buf, "%d#", len(f.Args))
	for _, a := range f.Args {
		field([]byte(a))
	}
	for _, frag := range fragments {
		field(frag)
	}
	return model.Digest(buf.Bytes())
}

// fetchFragments reads the Prepare and Finalize fragments of a module. A
// missing fragment contributes an empty field.
func fetchFragments(dir string) ([][]byte, error) {
	var out [][]byte
	for _, name := range []string{PrepareFile, FinalizeFile} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", filepath.Join(dir, name), err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (e *FileEmitter) fetchMetaPath(target string, f model.Fetch) string {
	return filepath.Join(e.fetchDir, filepath.FromSlash(target), f.Name+".hcl")
}

// fetchChanged reports whether the recorded digest differs from want. A
// missing or malformed meta file counts as changed.
func (e *FileEmitter) fetchChanged(path, want string) (bool, error) {
	var meta fetchMeta
	if err := hclfile.Decode(path, &meta); err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, hclfile.ErrMalformed) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read fetch meta %s: %w", path, err)
	}
	return meta.Digest != want, nil
}

func writeFetchMeta(path, digest string, f model.Fetch) error {
	file := hclwrite.NewEmptyFile()
	body := file.Body()
	body.SetAttributeValue("digest", cty.StringVal(digest))
	body.SetAttributeValue("repo", cty.StringVal(f.Repo))
	body.SetAttributeValue("commit", cty.StringVal(f.Commit))
	return hclfile.Write(path, file)
}

// syncFetches rebuilds every fetch block whose inputs changed since the last
// recorded build and reports whether any rebuild happened.
func (e *FileEmitter) syncFetches(ctx context.Context, target string, mod *model.Module) (bool, error) {
	logger := ctxlog.FromContext(ctx)
	fragments, err := fetchFragments(mod.Path)
	if err != nil {
		return false, err
	}
	rebuilt := false
	for _, f := range mod.Fetches {
		path := e.fetchMetaPath(target, f)
		digest := FetchDigest(f, fragments...)
		changed, err := e.fetchChanged(path, digest)
		if err != nil {
			return false, err
		}
		if !changed && !f.ForceBuild {
			continue
		}

		if e.skipFetchBuilds {
			logger.Debug("Fetch build skipped, recording state only.", "fetch", f.Name)
		} else {
			if err := e.fetcher.Fetch(ctx, FetchRequest{Target: target, Fetch: f, SourceDir: mod.Path}); err != nil {
				return false, fmt.Errorf("fetch %s failed: %w", f.Name, err)
			}
			rebuilt = true
		}
		if err := writeFetchMeta(path, digest, f); err != nil {
			return false, fmt.Errorf("failed to record fetch %s: %w", f.Name, err)
		}
	}
	return rebuilt, nil
}
