package eline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/cwbudde/algo-sed/internal/datafile"
)

var (
	// ErrNoTable is returned when a line table is needed but none was loaded.
	ErrNoTable = errors.New("eline: no line table loaded")
	// ErrTableMismatch is returned when the table and the source disagree on
	// the number of lines.
	ErrTableMismatch = errors.New("eline: line table length does not match source lines")
	// ErrParse is returned for malformed line table records.
	ErrParse = errors.New("eline: malformed line table")
)

// Table maps emission-line names to rest-frame wavelengths (Å). Row i
// describes the i-th line reported by the synthesis source.
type Table struct {
	Names    []string
	Waves    []float64
	Checksum uint64
}

// Len returns the number of lines.
func (t *Table) Len() int { return len(t.Names) }

// Wave returns the rest wavelength of the named line.
func (t *Table) Wave(name string) (float64, bool) {
	for i, n := range t.Names {
		if n == name {
			return t.Waves[i], true
		}
	}
	return 0, false
}

// Select returns a per-row flag marking the rows whose name is in names.
// Unknown names are ignored.
func (t *Table) Select(names []string) []bool {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	out := make([]bool, len(t.Names))
	for i, n := range t.Names {
		_, out[i] = want[n]
	}
	return out
}

// ParseTable reads "wave,name" records. Blank lines and lines starting with
// '#' are skipped; surrounding whitespace in names is trimmed.
func ParseTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	t := &Table{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: wavelength %q", ErrParse, rec[0])
		}
		t.Waves = append(t.Waves, w)
		t.Names = append(t.Names, strings.TrimSpace(rec[1]))
	}
	if len(t.Names) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrParse)
	}
	return t, nil
}

// LoadTable reads a line table from path, decompressing by extension.
func LoadTable(path string) (*Table, error) {
	raw, err := datafile.ReadAll(path)
	if err != nil {
		return nil, fmt.Errorf("eline: load %s: %w", path, err)
	}
	t, err := ParseTable(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("eline: load %s: %w", path, err)
	}
	t.Checksum = datafile.Fingerprint(raw)
	return t, nil
}

// Registry caches line tables by path. Tables are loaded at most once and
// never modified afterwards, so they may be shared between models.
type Registry struct {
	mu     sync.Mutex
	tables map[string]*Table
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Load returns the table for path, reading it on first use.
func (r *Registry) Load(path string) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tables[path]; ok {
		return t, nil
	}
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	r.tables[path] = t
	return t, nil
}

var (
	shared = NewRegistry()

	defaultMu    sync.RWMutex
	defaultTable *Table
)

// Init loads the process-wide default table from path.
func Init(path string) error {
	t, err := shared.Load(path)
	if err != nil {
		return err
	}
	defaultMu.Lock()
	defaultTable = t
	defaultMu.Unlock()
	return nil
}

// Default returns the table installed by Init.
func Default() (*Table, error) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultTable == nil {
		return nil, ErrNoTable
	}
	return defaultTable, nil
}

// Shared returns the process-wide registry used by Init.
func Shared() *Registry { return shared }
