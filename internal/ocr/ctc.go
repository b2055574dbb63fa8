package ocr

import "math"

// decoded holds one CTC-decoded sequence: the collapsed class indices and
// their per-character probabilities.
type decoded struct {
	classes []int
	probs   []float64
}

func argmax(v []float32) (int, float32) {
	if len(v) == 0 {
		return -1, 0
	}
	idx := 0
	best := v[0]
	for i := 1; i < len(v); i++ {
		if v[i] > best {
			best = v[i]
			idx = i
		}
	}
	return idx, best
}

// softmaxProb returns the softmax probability of v[idx]. Outputs that
// already look like probabilities are passed through.
func softmaxProb(v []float32, idx int) float64 {
	if len(v) == 0 || idx < 0 || idx >= len(v) {
		return 0
	}
	var sum float64
	minV, maxV := v[0], v[0]
	for _, x := range v {
		sum += float64(x)
		minV = min(minV, x)
		maxV = max(maxV, x)
	}
	if sum > 0.99 && sum < 1.01 && minV >= 0 && maxV <= 1 {
		return float64(v[idx])
	}

	m := maxV
	var denom float64
	for _, x := range v {
		denom += math.Exp(float64(x - m))
	}
	if denom == 0 {
		return 0
	}
	return math.Exp(float64(v[idx]-m)) / denom
}

// ctcCollapse removes blanks and repeated consecutive indices.
func ctcCollapse(indices []int, probs []float64, blank int) ([]int, []float64) {
	outIdx := make([]int, 0, len(indices))
	outProb := make([]float64, 0, len(indices))
	prev := -1
	for i, idx := range indices {
		if idx == blank {
			prev = idx
			continue
		}
		if idx == prev {
			continue
		}
		outIdx = append(outIdx, idx)
		outProb = append(outProb, probs[i])
		prev = idx
	}
	return outIdx, outProb
}

// decodeCTCGreedy decodes [N, T, C] logits with greedy CTC decoding.
func decodeCTCGreedy(logits []float32, shape []int64, blank int) []decoded {
	dims := shape
	for len(dims) > 3 && dims[len(dims)-1] == 1 {
		dims = dims[:len(dims)-1]
	}
	if len(dims) != 3 {
		return nil
	}
	n, tDim, cDim := int(dims[0]), int(dims[1]), int(dims[2])
	if n <= 0 || tDim <= 0 || cDim <= 0 || len(logits) < n*tDim*cDim {
		return nil
	}

	out := make([]decoded, n)
	for b := 0; b < n; b++ {
		start := b * tDim * cDim
		indices := make([]int, tDim)
		probs := make([]float64, tDim)
		for t := 0; t < tDim; t++ {
			off := start + t*cDim
			cls := logits[off : off+cDim]
			idx, _ := argmax(cls)
			indices[t] = idx
			probs[t] = softmaxProb(cls, idx)
		}
		classes, classProbs := ctcCollapse(indices, probs, blank)
		out[b] = decoded{classes: classes, probs: classProbs}
	}
	return out
}

// meanConfidence averages per-character probabilities; 0 when empty.
func meanConfidence(probs []float64) float64 {
	if len(probs) == 0 {
		return 0
	}
	var sum float64
	for _, p := range probs {
		sum += p
	}
	return sum / float64(len(probs))
}
