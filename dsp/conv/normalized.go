package conv

// SameNormalized convolves signal with kernel in ModeSame and divides by the
// equally convolved weights:
//
//	out[i] = Σ_j k[j]·w[i-j]·s[i-j] / Σ_j k[j]·w[i-j]
//
// A nil weights slice means unit weight everywhere. Output samples where the
// kernel covers no weight are set to zero.
func SameNormalized(signal, weights, kernel []float64, method Method) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	if weights == nil {
		weights = make([]float64, len(signal))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(signal) {
		return nil, ErrLengthMismatch
	}

	ws := make([]float64, len(signal))
	for i, s := range signal {
		ws[i] = s * weights[i]
	}

	num, err := ConvolveMode(ws, kernel, ModeSame, method)
	if err != nil {
		return nil, err
	}
	den, err := ConvolveMode(weights, kernel, ModeSame, method)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(signal))
	for i := range out {
		if den[i] != 0 {
			out[i] = num[i] / den[i]
		}
	}
	return out, nil
}
