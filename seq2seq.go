package nmt

import (
	"encoding/json"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var s Seq2Seq
	serializer.RegisterTypedDeserializer(s.SerializerType(), DeserializeSeq2Seq)
}

// Seq2Seq is the recurrent encoder-decoder family.
//
// The encoder embeds one-hot tokens and runs them through
// a stack of LSTMs; the final timestep of each row is the
// context vector.
// The decoder is another LSTM stack fed the context at
// every step, followed by a log-softmax output layer.
type Seq2Seq struct {
	Config   RNNConfig
	InCount  int
	OutCount int

	Encoder anyrnn.Stack
	Decoder anyrnn.Stack
}

// NewSeq2Seq creates a randomly-initialized recurrent
// model for the given vocabulary sizes.
func NewSeq2Seq(c anyvec.Creator, conf *RNNConfig, sourceVocab,
	targetVocab int) *Seq2Seq {
	layers := conf.Layers
	if layers < 1 {
		layers = 1
	}

	encoder := anyrnn.Stack{
		&anyrnn.LayerBlock{
			Layer: anynet.NewFC(c, sourceVocab, conf.EmbedSize),
		},
	}
	inSize := conf.EmbedSize
	for i := 0; i < layers; i++ {
		encoder = append(encoder, anyrnn.NewLSTM(c, inSize, conf.HiddenSize))
		inSize = conf.HiddenSize
	}

	decoder := anyrnn.Stack{}
	inSize = conf.HiddenSize
	for i := 0; i < layers; i++ {
		decoder = append(decoder, anyrnn.NewLSTM(c, inSize, conf.HiddenSize))
		inSize = conf.HiddenSize
	}
	decoder = append(decoder, &anyrnn.LayerBlock{
		Layer: anynet.Net{
			anynet.NewFC(c, conf.HiddenSize, targetVocab),
			anynet.LogSoftmax,
		},
	})

	return &Seq2Seq{
		Config:   *conf,
		InCount:  sourceVocab,
		OutCount: targetVocab,
		Encoder:  encoder,
		Decoder:  decoder,
	}
}

// DeserializeSeq2Seq deserializes a Seq2Seq.
func DeserializeSeq2Seq(d []byte) (*Seq2Seq, error) {
	var meta serializer.Bytes
	var res Seq2Seq
	if err := serializer.DeserializeAny(d, &meta, &res.Encoder,
		&res.Decoder); err != nil {
		return nil, essentials.AddCtx("deserialize Seq2Seq", err)
	}
	var m seq2seqMeta
	if err := json.Unmarshal(meta, &m); err != nil {
		return nil, essentials.AddCtx("deserialize Seq2Seq", err)
	}
	res.Config = m.Config
	res.InCount = m.InCount
	res.OutCount = m.OutCount
	return &res, nil
}

// Name returns "rnn".
func (s *Seq2Seq) Name() string {
	return "rnn"
}

// Parameters returns the parameters of the encoder and
// the decoder.
func (s *Seq2Seq) Parameters() []*anydiff.Var {
	return anynet.AllParameters(s.Encoder, s.Decoder)
}

// Forward runs the model over one batch.
func (s *Seq2Seq) Forward(source [][]int, sourceLens []int,
	targetLen int) anyseq.Seq {
	if targetLen <= 0 {
		panic("non-positive target length")
	}
	c := s.creator()

	encoded := anyrnn.Map(sourceSeq(c, source, sourceLens, s.InCount), s.Encoder)
	context := anyseq.Tail(encoded)

	present := allTrue(len(source))
	decIn := make([]*anyseq.ResBatch, targetLen)
	for t := range decIn {
		decIn[t] = &anyseq.ResBatch{Packed: context, Present: present}
	}
	return anyrnn.Map(anyseq.ResSeq(c, decIn), s.Decoder)
}

// SerializerType returns the unique ID used to serialize
// a Seq2Seq with the serializer package.
func (s *Seq2Seq) SerializerType() string {
	return "github.com/yuohan/nmt.Seq2Seq"
}

// Serialize serializes the Seq2Seq.
func (s *Seq2Seq) Serialize() ([]byte, error) {
	meta, err := json.Marshal(&seq2seqMeta{
		Config:   s.Config,
		InCount:  s.InCount,
		OutCount: s.OutCount,
	})
	if err != nil {
		return nil, essentials.AddCtx("serialize Seq2Seq", err)
	}
	return serializer.SerializeAny(serializer.Bytes(meta), s.Encoder, s.Decoder)
}

func (s *Seq2Seq) creator() anyvec.Creator {
	return s.Parameters()[0].Vector.Creator()
}

type seq2seqMeta struct {
	Config   RNNConfig
	InCount  int
	OutCount int
}
