// Package filter integrates spectra through photometric bandpasses.
//
// A Filter carries a transmission curve and its AB zero-point counts, the
// photon-counting integral of a flat 3631 Jy source through the curve.
// Magnitudes follow the photon-counting convention
//
//	m = -2.5 log10( ∫ λ f_λ T dλ / ∫ λ f_λ^AB T dλ )
package filter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/integrate"

	"github.com/cwbudde/algo-sed/dsp/interp"
	"github.com/cwbudde/algo-sed/internal/datafile"
	"github.com/cwbudde/algo-sed/sed/units"
)

var (
	ErrLengthMismatch = errors.New("filter: wavelength and transmission length mismatch")
	ErrTooShort       = errors.New("filter: need at least two transmission samples")
	ErrNotIncreasing  = errors.New("filter: wavelength must be increasing")
	ErrParse          = errors.New("filter: malformed transmission file")
)

// Filter is a bandpass transmission curve.
type Filter struct {
	Name         string
	Wavelength   []float64 // Å, increasing
	Transmission []float64
	ABZeroCounts float64
	Checksum     uint64 // xxhash of the source file, zero for in-memory filters
}

// New builds a filter from a transmission curve and computes its AB zero
// counts. Negative transmission is clipped to zero.
func New(name string, wave, trans []float64) (*Filter, error) {
	if len(wave) != len(trans) {
		return nil, ErrLengthMismatch
	}
	if len(wave) < 2 {
		return nil, ErrTooShort
	}
	for i := 1; i < len(wave); i++ {
		if wave[i] <= wave[i-1] {
			return nil, fmt.Errorf("%w: %s at index %d", ErrNotIncreasing, name, i)
		}
	}

	f := &Filter{
		Name:         name,
		Wavelength:   append([]float64(nil), wave...),
		Transmission: make([]float64, len(trans)),
	}
	for i, t := range trans {
		f.Transmission[i] = math.Max(t, 0)
	}

	integrand := make([]float64, len(wave))
	for i, w := range f.Wavelength {
		abFlambda := units.MaggieCGS * units.Lightspeed / (w * w)
		integrand[i] = w * f.Transmission[i] * abFlambda
	}
	f.ABZeroCounts = integrate.Trapezoidal(f.Wavelength, integrand)
	return f, nil
}

// Load reads a two-column (wavelength, transmission) text file. Blank lines
// and lines starting with '#' are skipped; compressed files are decoded by
// extension. The filter is named after the file.
func Load(path string) (*Filter, error) {
	raw, err := datafile.ReadAll(path)
	if err != nil {
		return nil, err
	}
	wave, trans, err := parseColumns(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	name := filepath.Base(path)
	for ext := filepath.Ext(name); ext != ""; ext = filepath.Ext(name) {
		name = strings.TrimSuffix(name, ext)
	}
	f, err := New(name, wave, trans)
	if err != nil {
		return nil, err
	}
	f.Checksum = datafile.Fingerprint(raw)
	return f, nil
}

func parseColumns(raw []byte) ([]float64, []float64, error) {
	var wave, trans []float64
	sc := bufio.NewScanner(bytes.NewReader(raw))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("line %d: want 2 columns, got %d", line, len(fields))
		}
		w, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		wave = append(wave, w)
		trans = append(trans, t)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return wave, trans, nil
}

// TransmissionAt returns the transmission at λ, zero outside the curve.
func (f *Filter) TransmissionAt(wave float64) float64 {
	return interp.LinearAt(wave, f.Wavelength, f.Transmission, 0, 0)
}

// ObjCounts returns ∫ λ f_λ T dλ of the source spectrum, integrated on the
// source grid. NaN is returned when the filter does not overlap the source.
func (f *Filter) ObjCounts(wave, flambda []float64) float64 {
	trans, err := interp.Linear(wave, f.Wavelength, f.Transmission, 0, 0)
	if err != nil {
		return math.NaN()
	}

	first, last := -1, -1
	for i, t := range trans {
		if t > 0 {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return math.NaN()
	}

	// Keep one zero-transmission neighbour on each side so the trapezoid
	// reaches the curve edges.
	lo := max(first-1, 0)
	hi := min(last+2, len(wave))
	if hi-lo < 2 {
		return 0
	}
	integrand := make([]float64, hi-lo)
	for i := lo; i < hi; i++ {
		integrand[i-lo] = wave[i] * trans[i] * flambda[i]
	}
	return integrate.Trapezoidal(wave[lo:hi], integrand)
}

// ABMag returns the AB magnitude of a spectrum in erg/s/cm²/Å.
func (f *Filter) ABMag(wave, flambda []float64) float64 {
	return -2.5 * math.Log10(f.ObjCounts(wave, flambda)/f.ABZeroCounts)
}

// GetSED returns one AB magnitude per filter.
func GetSED(wave, flambda []float64, filters []*Filter) ([]float64, error) {
	if len(wave) != len(flambda) {
		return nil, ErrLengthMismatch
	}
	if len(wave) < 2 {
		return nil, ErrTooShort
	}
	out := make([]float64, len(filters))
	for i, f := range filters {
		out[i] = f.ABMag(wave, flambda)
	}
	return out, nil
}
