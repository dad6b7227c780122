package nmt

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/serializer"
)

// A Model is a trainable translation model.
//
// Forward consumes one padded source batch and produces
// exactly targetLen timesteps, each a fully-present batch
// of per-row log-probability vectors over the target
// vocabulary.
// The rows must be ordered by source length, longest
// first, the way Batches produces them.
type Model interface {
	serializer.Serializer

	// Name identifies the architecture family.
	Name() string

	// Parameters returns the variables adjusted by the
	// optimizer.
	Parameters() []*anydiff.Var

	Forward(source [][]int, sourceLens []int, targetLen int) anyseq.Seq
}

// RNNConfig holds the hyperparameters of the recurrent
// encoder-decoder family.
type RNNConfig struct {
	EmbedSize  int
	HiddenSize int
	Layers     int

	// Score records the attention score function the
	// model was configured with.
	Score string
}

// TransformerConfig holds the hyperparameters of the
// attention family.
type TransformerConfig struct {
	ModelDim int

	// MaxTarget bounds the target lengths the model can
	// produce; one positional query is learned per slot.
	MaxTarget int
}

// A ModelConfig selects an architecture family and
// carries its hyperparameters.
// Exactly one payload field should be set, matching Type.
type ModelConfig struct {
	Type string

	RNN         *RNNConfig         `json:",omitempty"`
	Transformer *TransformerConfig `json:",omitempty"`
}

// NewModel builds a fresh model for the configured
// family.
//
// The vocabulary sizes are captured by the model and
// serialized with it, so a checkpoint can be reloaded
// without the original configuration.
func NewModel(c anyvec.Creator, conf *ModelConfig, sourceVocab,
	targetVocab int) (Model, error) {
	switch conf.Type {
	case "rnn":
		if conf.RNN == nil {
			return nil, fmt.Errorf("new model: missing rnn config")
		}
		return NewSeq2Seq(c, conf.RNN, sourceVocab, targetVocab), nil
	case "transformer":
		if conf.Transformer == nil {
			return nil, fmt.Errorf("new model: missing transformer config")
		}
		return NewTransformer(c, conf.Transformer, sourceVocab, targetVocab), nil
	default:
		return nil, fmt.Errorf("new model: unknown type %q", conf.Type)
	}
}

// sourceSeq turns padded id rows into a batched sequence
// of one-hot vectors, using the true row lengths so that
// padded positions are simply absent.
func sourceSeq(c anyvec.Creator, rows [][]int, lens []int,
	width int) anyseq.Seq {
	seqs := make([][]anyvec.Vector, len(rows))
	for i, row := range rows {
		seq := make([]anyvec.Vector, lens[i])
		for t := range seq {
			seq[t] = oneHot(c, width, row[t])
		}
		seqs[i] = seq
	}
	return anyseq.ConstSeqList(c, seqs)
}

func oneHot(c anyvec.Creator, width, id int) anyvec.Vector {
	if id < 0 || id >= width {
		panic("id out of range")
	}
	data := make([]float64, width)
	data[id] = 1
	return c.MakeVectorData(c.MakeNumericList(data))
}

// allTrue is the present map of a fully-packed batch.
func allTrue(n int) []bool {
	res := make([]bool, n)
	for i := range res {
		res[i] = true
	}
	return res
}
