package nmt

import (
	"math"
	"testing"

	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec/anyvec64"
)

func TestStepPadMasking(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	model := NewSeq2Seq(c, &RNNConfig{EmbedSize: 4, HiddenSize: 6, Layers: 1}, 8, 8)
	trainer := &Trainer{
		Model:  model,
		Params: model.Parameters(),
		Rater:  anysgd.ConstRater(0),
	}

	batch := &Batch{
		Source:     [][]int{{4, 5, 6}, {4, 7, 0}},
		Target:     [][]int{{5, 6, 2}, {7, 2, 0}},
		SourceLens: []int{3, 2},
		TargetLens: []int{3, 2},
		Index:      1,
		Total:      1,
	}
	// The same batch with an extra row whose target is
	// all padding; its loss contribution must be zero.
	padded := &Batch{
		Source:     [][]int{{4, 5, 6}, {4, 7, 0}, {4, 0, 0}},
		Target:     [][]int{{5, 6, 2}, {7, 2, 0}, {0, 0, 0}},
		SourceLens: []int{3, 2, 1},
		TargetLens: []int{3, 2, 0},
		Index:      1,
		Total:      1,
	}

	loss := trainer.Step(batch, 0)
	paddedLoss := trainer.Step(padded, 0)
	if math.Abs(loss-paddedLoss) > 1e-9 {
		t.Errorf("all-pad row changed the loss: %f vs %f", loss, paddedLoss)
	}
	if loss <= 0 {
		t.Errorf("expected positive loss but got %f", loss)
	}
}

func TestStepUpdatesParameters(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	model := NewSeq2Seq(c, &RNNConfig{EmbedSize: 4, HiddenSize: 6, Layers: 1}, 8, 8)
	trainer := &Trainer{
		Model:  model,
		Params: model.Parameters(),
		Rater:  anysgd.ConstRater(0.1),
	}

	before := make([][]float64, len(trainer.Params))
	for i, p := range trainer.Params {
		before[i] = append([]float64{}, p.Vector.Data().([]float64)...)
	}

	batch := &Batch{
		Source:     [][]int{{4, 5}, {6, 0}},
		Target:     [][]int{{5, 2}, {7, 0}},
		SourceLens: []int{2, 1},
		TargetLens: []int{2, 1},
		Index:      1,
		Total:      1,
	}
	trainer.Step(batch, 0)

	var changed bool
	for i, p := range trainer.Params {
		after := p.Vector.Data().([]float64)
		for j, x := range after {
			if x != before[i][j] {
				changed = true
			}
		}
	}
	if !changed {
		t.Error("no parameter changed after a step")
	}
}

func TestEpochLoop(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	model := NewSeq2Seq(c, &RNNConfig{EmbedSize: 4, HiddenSize: 6, Layers: 1}, 10, 10)
	trainer := &Trainer{
		Model:  model,
		Params: model.Parameters(),
		Rater:  anysgd.ConstRater(0.01),
	}

	corpus := Corpus{
		{Source: []int{4, 5, 2}, Target: []int{4, 2}},
		{Source: []int{6, 2}, Target: []int{5, 6, 2}},
		{Source: []int{7, 2}, Target: []int{7, 2}},
	}
	cfg := &TrainConfig{BatchSize: 2, Epochs: 2, Pad: 0}

	avg := trainer.Epoch(corpus, cfg, 1, &Progress{})
	if avg <= 0 || math.IsNaN(avg) || math.IsInf(avg, 0) {
		t.Errorf("bad average loss: %f", avg)
	}
}
