package params

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Param describes one named parameter of a model template.
type Param struct {
	N         int    `yaml:"N"`
	IsFree    bool   `yaml:"isfree"`
	Init      any    `yaml:"init"`
	Units     string `yaml:"units,omitempty"`
	DependsOn string `yaml:"depends_on,omitempty"`
}

// Template maps parameter names to their descriptions.
type Template map[string]Param

// DecodeTemplate reads a YAML document of the form
//
//	zred:  {N: 1, isfree: false, init: 0.1}
//	mass:  {N: 1, isfree: true,  init: 1.0e10}
func DecodeTemplate(r io.Reader) (Template, error) {
	var t Template
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("params: decode template: %w", err)
	}
	for name, p := range t {
		if p.N == 0 {
			p.N = 1
			t[name] = p
		}
	}
	return t, nil
}

// FreeNames returns the names of the free parameters in sorted order; this is
// the order in which Bind consumes a parameter vector.
func (t Template) FreeNames() []string {
	out := make([]string, 0, len(t))
	for name, p := range t {
		if p.IsFree {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// NDim returns the length of the free parameter vector.
func (t Template) NDim() int {
	n := 0
	for _, p := range t {
		if p.IsFree {
			n += max(p.N, 1)
		}
	}
	return n
}

// Initial returns a Set holding every parameter's initial value.
func (t Template) Initial() Set {
	out := make(Set, len(t))
	for name, p := range t {
		out[name] = p.Init
	}
	return out.Clone()
}

// Bind returns the initial values with the free parameters replaced by the
// consecutive slices of theta.
func (t Template) Bind(theta []float64) (Set, error) {
	if len(theta) != t.NDim() {
		return nil, fmt.Errorf("%w: theta has %d elements, template wants %d", ErrDimension, len(theta), t.NDim())
	}
	out := t.Initial()
	pos := 0
	for _, name := range t.FreeNames() {
		n := max(t[name].N, 1)
		if n == 1 {
			out[name] = theta[pos]
		} else {
			out[name] = append([]float64(nil), theta[pos:pos+n]...)
		}
		pos += n
	}
	return out, nil
}
