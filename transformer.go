package nmt

import (
	"encoding/json"
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var t Transformer
	serializer.RegisterTypedDeserializer(t.SerializerType(), DeserializeTransformer)
}

// Transformer is the attention family.
//
// Source tokens are embedded and encoded position-wise;
// a learned query per target position attends over the
// encoded source (scaled dot-product attention), and an
// output layer maps each attention context to target
// log-probabilities.
// Unlike the recurrent family, target positions are
// produced independently of one another.
type Transformer struct {
	Config   TransformerConfig
	InCount  int
	OutCount int

	Embed   *anynet.FC
	Encode  anynet.Net
	Keys    *anynet.FC
	Values  *anynet.FC
	Queries *anydiff.Var
	Out     anynet.Net
}

// NewTransformer creates a randomly-initialized attention
// model for the given vocabulary sizes.
func NewTransformer(c anyvec.Creator, conf *TransformerConfig, sourceVocab,
	targetVocab int) *Transformer {
	dim := conf.ModelDim
	queries := c.MakeVector(conf.MaxTarget * dim)
	anyvec.Rand(queries, anyvec.Normal, nil)
	queries.Scale(c.MakeNumeric(1 / math.Sqrt(float64(dim))))

	return &Transformer{
		Config:   *conf,
		InCount:  sourceVocab,
		OutCount: targetVocab,

		Embed: anynet.NewFC(c, sourceVocab, dim),
		Encode: anynet.Net{
			anynet.NewFC(c, dim, dim),
			anynet.Tanh,
		},
		Keys:    anynet.NewFC(c, dim, dim),
		Values:  anynet.NewFC(c, dim, dim),
		Queries: anydiff.NewVar(queries),
		Out: anynet.Net{
			anynet.NewFC(c, dim, targetVocab),
			anynet.LogSoftmax,
		},
	}
}

// DeserializeTransformer deserializes a Transformer.
func DeserializeTransformer(d []byte) (*Transformer, error) {
	var meta serializer.Bytes
	var queries *anyvecsave.S
	var res Transformer
	err := serializer.DeserializeAny(d, &meta, &res.Embed, &res.Encode,
		&res.Keys, &res.Values, &queries, &res.Out)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Transformer", err)
	}
	var m transformerMeta
	if err := json.Unmarshal(meta, &m); err != nil {
		return nil, essentials.AddCtx("deserialize Transformer", err)
	}
	res.Config = m.Config
	res.InCount = m.InCount
	res.OutCount = m.OutCount
	res.Queries = anydiff.NewVar(queries.Vector)
	return &res, nil
}

// Name returns "transformer".
func (t *Transformer) Name() string {
	return "transformer"
}

// Parameters returns all trainable variables.
func (t *Transformer) Parameters() []*anydiff.Var {
	res := anynet.AllParameters(t.Embed, t.Encode, t.Keys, t.Values, t.Out)
	return append(res, t.Queries)
}

// Forward runs the model over one batch.
//
// It panics if targetLen exceeds the configured maximum
// target length.
func (t *Transformer) Forward(source [][]int, sourceLens []int,
	targetLen int) anyseq.Seq {
	if targetLen <= 0 {
		panic("non-positive target length")
	}
	if targetLen > t.Config.MaxTarget {
		panic("target length exceeds maximum")
	}
	c := t.creator()
	dim := t.Config.ModelDim

	queries := &anydiff.Matrix{
		Data: anydiff.Slice(t.Queries, 0, targetLen*dim),
		Rows: targetLen,
		Cols: dim,
	}
	invSqrt := c.MakeNumeric(1 / math.Sqrt(float64(dim)))

	rowOuts := make([]anydiff.Res, len(source))
	for i, row := range source {
		n := sourceLens[i]
		packed := make([]anyvec.Vector, n)
		for s := 0; s < n; s++ {
			packed[s] = oneHot(c, t.InCount, row[s])
		}
		in := anydiff.NewConst(c.Concat(packed...))

		encoded := t.Encode.Apply(t.Embed.Apply(in, n), n)
		keys := &anydiff.Matrix{Data: t.Keys.Apply(encoded, n), Rows: n, Cols: dim}
		values := &anydiff.Matrix{Data: t.Values.Apply(encoded, n), Rows: n, Cols: dim}

		scores := anydiff.Scale(anydiff.MatMul(false, true, queries, keys).Data,
			invSqrt)
		attn := &anydiff.Matrix{
			Data: anydiff.Exp(anydiff.LogSoftmax(scores, n)),
			Rows: targetLen,
			Cols: n,
		}
		context := anydiff.MatMul(false, false, attn, values).Data
		rowOuts[i] = t.Out.Apply(context, targetLen)
	}

	present := allTrue(len(source))
	batches := make([]*anyseq.ResBatch, targetLen)
	for pos := range batches {
		parts := make([]anydiff.Res, len(rowOuts))
		for i, out := range rowOuts {
			parts[i] = anydiff.Slice(out, pos*t.OutCount, (pos+1)*t.OutCount)
		}
		batches[pos] = &anyseq.ResBatch{
			Packed:  anydiff.Concat(parts...),
			Present: present,
		}
	}
	return anyseq.ResSeq(c, batches)
}

// SerializerType returns the unique ID used to serialize
// a Transformer with the serializer package.
func (t *Transformer) SerializerType() string {
	return "github.com/yuohan/nmt.Transformer"
}

// Serialize serializes the Transformer.
func (t *Transformer) Serialize() ([]byte, error) {
	meta, err := json.Marshal(&transformerMeta{
		Config:   t.Config,
		InCount:  t.InCount,
		OutCount: t.OutCount,
	})
	if err != nil {
		return nil, essentials.AddCtx("serialize Transformer", err)
	}
	return serializer.SerializeAny(serializer.Bytes(meta), t.Embed, t.Encode,
		t.Keys, t.Values, &anyvecsave.S{Vector: t.Queries.Vector}, t.Out)
}

func (t *Transformer) creator() anyvec.Creator {
	return t.Queries.Vector.Creator()
}

type transformerMeta struct {
	Config   TransformerConfig
	InCount  int
	OutCount int
}
