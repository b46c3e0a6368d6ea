// Package hclfile contains small helpers for reading and writing the HCL files
// the orchestrator persists between runs.
package hclfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// ErrMalformed marks a file that exists but cannot be parsed or decoded.
var ErrMalformed = errors.New("malformed hcl file")

// Decode parses the file at path and decodes its body into target, which must
// be a pointer to a gohcl-tagged struct. A missing file yields an error
// satisfying errors.Is(err, fs.ErrNotExist); a syntax or schema problem yields
// ErrMalformed.
func Decode(path string, target any) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return DecodeBytes(src, path, target)
}

// DecodeBytes is like Decode for content already in memory.
func DecodeBytes(src []byte, filename string, target any) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("%w: failed to parse %s: %w", ErrMalformed, filename, diags)
	}
	diags = gohcl.DecodeBody(file.Body, nil, target)
	if diags.HasErrors() {
		return fmt.Errorf("%w: failed to decode %s: %w", ErrMalformed, filename, diags)
	}
	return nil
}

// Write formats f and replaces path with it. The content is written to a
// temporary sibling first so readers never observe a half-written file.
func Write(path string, f *hclwrite.File) error {
	return WriteBytes(path, hclwrite.Format(f.Bytes()))
}

// WriteBytes atomically replaces path with content.
func WriteBytes(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// KeyValue is one entry of an ordered string object.
type KeyValue struct {
	Key   string
	Value string
}

// OrderedObject reads an object constructor expression whose keys and values
// are strings, keeping the order in which the entries appear in the source.
func OrderedObject(expr hcl.Expression) ([]KeyValue, hcl.Diagnostics) {
	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		return nil, diags
	}
	out := make([]KeyValue, 0, len(pairs))
	for _, pair := range pairs {
		k, kDiags := pair.Key.Value(nil)
		diags = append(diags, kDiags...)
		v, vDiags := pair.Value.Value(nil)
		diags = append(diags, vDiags...)
		if kDiags.HasErrors() || vDiags.HasErrors() {
			continue
		}
		if k.Type() != cty.String || v.Type() != cty.String || k.IsNull() || v.IsNull() {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid entry",
				Detail:   "Every key and value of this object must be a string.",
				Subject:  pair.Key.Range().Ptr(),
			})
			continue
		}
		out = append(out, KeyValue{Key: k.AsString(), Value: v.AsString()})
	}
	return out, diags
}

// TokensForOrderedObject renders entries as a multi-line object constructor
// using `key : "value"` items, preserving the given order.
func TokensForOrderedObject(entries []KeyValue) hclwrite.Tokens {
	toks := hclwrite.Tokens{
		{Type: hclsyntax.TokenOBrace, Bytes: []byte("{")},
		{Type: hclsyntax.TokenNewline, Bytes: []byte("\n")},
	}
	for _, e := range entries {
		toks = append(toks, hclwrite.TokensForValue(cty.StringVal(e.Key))...)
		toks = append(toks, &hclwrite.Token{Type: hclsyntax.TokenColon, Bytes: []byte(":"), SpacesBefore: 1})
		toks = append(toks, hclwrite.TokensForValue(cty.StringVal(e.Value))...)
		toks = append(toks, &hclwrite.Token{Type: hclsyntax.TokenNewline, Bytes: []byte("\n")})
	}
	toks = append(toks, &hclwrite.Token{Type: hclsyntax.TokenCBrace, Bytes: []byte("}")})
	return toks
}
