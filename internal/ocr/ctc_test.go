package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCTCCollapse(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		want    []int
	}{
		{"blanks dropped", []int{0, 1, 0, 2, 0}, []int{1, 2}},
		{"repeats collapsed", []int{1, 1, 2, 2, 2, 3}, []int{1, 2, 3}},
		{"repeat after blank kept", []int{1, 0, 1}, []int{1, 1}},
		{"all blank", []int{0, 0, 0}, nil},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probs := make([]float64, len(tt.indices))
			for i := range probs {
				probs[i] = 0.9
			}
			got, gotProbs := ctcCollapse(tt.indices, probs, 0)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
			assert.Len(t, gotProbs, len(got))
		})
	}
}

func TestDecodeCTCGreedy(t *testing.T) {
	// One batch, 4 timesteps, 3 classes: argmax path 1, 1, 0, 2.
	logits := []float32{
		0.1, 0.8, 0.1,
		0.1, 0.7, 0.2,
		0.9, 0.05, 0.05,
		0.1, 0.2, 0.7,
	}
	sequences := decodeCTCGreedy(logits, []int64{1, 4, 3}, 0)
	require.Len(t, sequences, 1)
	assert.Equal(t, []int{1, 2}, sequences[0].classes)
	require.Len(t, sequences[0].probs, 2)
	assert.InDelta(t, 0.8, sequences[0].probs[0], 1e-6)
	assert.InDelta(t, 0.7, sequences[0].probs[1], 1e-6)
}

func TestDecodeCTCGreedy_TrailingUnitDims(t *testing.T) {
	logits := []float32{0.2, 0.8, 0.8, 0.2}
	sequences := decodeCTCGreedy(logits, []int64{1, 2, 2, 1}, 0)
	require.Len(t, sequences, 1)
	assert.Equal(t, []int{1}, sequences[0].classes)
}

func TestDecodeCTCGreedy_BadShapes(t *testing.T) {
	assert.Nil(t, decodeCTCGreedy([]float32{1}, []int64{1, 1}, 0))
	assert.Nil(t, decodeCTCGreedy([]float32{1}, []int64{1, 2, 3}, 0))
	assert.Nil(t, decodeCTCGreedy(nil, []int64{0, 0, 0}, 0))
}

func TestSoftmaxProb_Logits(t *testing.T) {
	// Softmax over logits must favor the max and stay in (0, 1).
	p := softmaxProb([]float32{2, 4, 1}, 1)
	assert.Greater(t, p, 0.5)
	assert.Less(t, p, 1.0)
}

func TestSoftmaxProb_AlreadyProbabilities(t *testing.T) {
	p := softmaxProb([]float32{0.1, 0.6, 0.3}, 1)
	assert.InDelta(t, 0.6, p, 1e-6)
}

func TestMeanConfidence(t *testing.T) {
	assert.Zero(t, meanConfidence(nil))
	assert.InDelta(t, 0.5, meanConfidence([]float64{0.25, 0.75}), 1e-9)
}
