package nmt

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
)

// TrainConfig carries the settings shared by the batch
// pipeline and the optimization loop.
//
// Pad is the padding id used both for batch padding and
// for masking loss positions; it is threaded explicitly
// rather than read from a global.
type TrainConfig struct {
	BatchSize int
	Epochs    int
	Pad       int

	// Shuffle permutes the corpus in place before each
	// epoch, using Rand if it is non-nil.
	Shuffle bool
	Rand    *rand.Rand

	// ReportEvery throttles progress output.
	// Zero means DefaultReportInterval.
	ReportEvery time.Duration
}

// A Trainer owns one training run: it drives a Model
// through forward/backward passes and applies parameter
// updates.
//
// Updates follow the anysgd convention: the gradient is
// optionally passed through a Transformer (e.g.
// anysgd.Adam), scaled by the negated learning rate, and
// added to the variables.
type Trainer struct {
	Model  Model
	Params []*anydiff.Var
	Rater  anysgd.Rater

	// Transformer, if non-nil, post-processes gradients.
	Transformer anysgd.Transformer

	// Pad is the target id excluded from the loss.
	Pad int
}

// Step runs one training step on a batch and returns the
// summed loss divided by the padded target length.
//
// The returned value is for reporting only; it has no
// effect on training.
// Step panics if the batch is empty, which Batches rules
// out at construction time.
func (t *Trainer) Step(b *Batch, epoch float64) float64 {
	if b.Rows() == 0 || b.TargetWidth() == 0 {
		panic("empty batch")
	}
	targetLen := b.TargetWidth()

	out := t.Model.Forward(b.Source, b.SourceLens, targetLen)
	c := out.Creator()
	width := out.Output()[0].Packed.Len() / b.Rows()

	desired := desiredSeq(c, b.Target, width, t.Pad)
	costs := anyseq.MapN(func(n int, reses ...anydiff.Res) anydiff.Res {
		return anynet.DotCost{}.Cost(reses[1], reses[0], n)
	}, out, desired)
	total := anyseq.Sum(costs)

	loss := floatFromVec(total.Output())

	grad := anydiff.NewGrad(t.Params...)
	upstream := c.MakeVectorData(c.MakeNumericList([]float64{1}))
	total.Propagate(upstream, grad)

	if t.Transformer != nil {
		grad = t.Transformer.Transform(grad)
	}
	grad.Scale(c.MakeNumeric(-t.Rater.Rate(epoch)))
	grad.AddToVars()

	return loss / float64(targetLen)
}

// Epoch runs exactly one pass over the corpus, reporting
// progress through prog, and returns the average
// per-step loss.
//
// A failure inside a step propagates as a panic from the
// underlying runtime; no recovery is attempted.
func (t *Trainer) Epoch(corpus Corpus, cfg *TrainConfig, epoch int,
	prog *Progress) float64 {
	batches, _ := Batches(corpus, cfg)
	prog.Start()
	for b := range batches {
		frac := float64(epoch-1) + float64(b.Index)/float64(b.Total)
		loss := t.Step(b, frac)
		prog.Step(loss, b.Index, b.Total)
	}
	prog.Finish()
	return prog.Average()
}

// Train runs cfg.Epochs sequential epochs, printing a
// header line before each.
//
// No state other than the model parameters and the
// gradient transformer's internal state carries across
// epochs.
func (t *Trainer) Train(corpus Corpus, cfg *TrainConfig, out io.Writer) {
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		fmt.Fprintf(out, "epoch: %d/%d\n", epoch, cfg.Epochs)
		prog := &Progress{Interval: cfg.ReportEvery, Out: out}
		t.Epoch(corpus, cfg, epoch, prog)
	}
}

// desiredSeq builds the one-hot target sequence used by
// the cost function.
// Positions holding the padding id get an all-zero row,
// so they contribute no loss and no gradient.
func desiredSeq(c anyvec.Creator, rows [][]int, width, pad int) anyseq.Seq {
	seqs := make([][]anyvec.Vector, len(rows))
	for i, row := range rows {
		seq := make([]anyvec.Vector, len(row))
		for pos, id := range row {
			if id == pad {
				seq[pos] = c.MakeVector(width)
			} else {
				seq[pos] = oneHot(c, width, id)
			}
		}
		seqs[i] = seq
	}
	return anyseq.ConstSeqList(c, seqs)
}

func floatFromVec(v anyvec.Vector) float64 {
	switch data := v.Data().(type) {
	case []float64:
		return data[0]
	case []float32:
		return float64(data[0])
	}
	panic("unsupported numeric type")
}
