package metastore

// CompilerIdentity names the toolchain the previous description was
// generated for.
type CompilerIdentity struct {
	Name    string
	Version string
}

// Timestamps is an insertion-ordered map from target name to digest. Order
// is preserved so that rewriting the file produces minimal diffs.
type Timestamps struct {
	names  []string
	values map[string]string
}

// NewTimestamps returns an empty collection.
func NewTimestamps() *Timestamps {
	return &Timestamps{values: make(map[string]string)}
}

// Get returns the digest recorded for name.
func (t *Timestamps) Get(name string) (string, bool) {
	d, ok := t.values[name]
	return d, ok
}

// Set updates name in place, or appends it when unknown.
func (t *Timestamps) Set(name, digest string) {
	if _, ok := t.values[name]; !ok {
		t.names = append(t.names, name)
	}
	t.values[name] = digest
}

// Len returns the number of recorded targets.
func (t *Timestamps) Len() int {
	return len(t.names)
}

// Names returns the recorded target names in insertion order.
func (t *Timestamps) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Retain drops every entry whose name keep rejects and reports how many were
// removed. Relative order of the survivors is unchanged.
func (t *Timestamps) Retain(keep func(name string) bool) int {
	kept := t.names[:0]
	removed := 0
	for _, n := range t.names {
		if keep(n) {
			kept = append(kept, n)
			continue
		}
		delete(t.values, n)
		removed++
	}
	t.names = kept
	return removed
}

// Record is the state persisted between runs.
type Record struct {
	Compiler   CompilerIdentity
	Timestamps *Timestamps
	// ProjectDigest is the digest of the top-level project descriptor.
	ProjectDigest string
}

// NewRecord returns an empty record, as seen on a cold start.
func NewRecord() *Record {
	return &Record{Timestamps: NewTimestamps()}
}
