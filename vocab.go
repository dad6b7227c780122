package nmt

import (
	"encoding/json"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var v Vocab
	serializer.RegisterTypedDeserializer(v.SerializerType(), DeserializeVocab)
}

// Reserved vocabulary entries.
// Every Vocab assigns these tokens the lowest ids, so the
// padding id can never collide with a real word.
const (
	padToken     = "<pad>"
	startToken   = "<s>"
	endToken     = "</s>"
	unknownToken = "<unk>"
)

// A Vocab maps tokens to integer ids and back.
//
// Ids are assigned densely in insertion order, starting
// after the reserved pad/start/end/unknown entries.
type Vocab struct {
	Name  string
	Words []string

	ids map[string]int
}

// NewVocab creates an empty vocabulary containing only
// the reserved tokens.
func NewVocab(name string) *Vocab {
	v := &Vocab{Name: name, ids: map[string]int{}}
	for _, w := range []string{padToken, startToken, endToken, unknownToken} {
		v.Add(w)
	}
	return v
}

// DeserializeVocab deserializes a Vocab.
func DeserializeVocab(d []byte) (*Vocab, error) {
	var v Vocab
	if err := json.Unmarshal(d, &v); err != nil {
		return nil, essentials.AddCtx("deserialize Vocab", err)
	}
	v.ids = map[string]int{}
	for i, w := range v.Words {
		v.ids[w] = i
	}
	return &v, nil
}

// Pad returns the reserved padding id.
func (v *Vocab) Pad() int {
	return v.ids[padToken]
}

// Start returns the reserved start-of-sequence id.
func (v *Vocab) Start() int {
	return v.ids[startToken]
}

// End returns the reserved end-of-sequence id.
func (v *Vocab) End() int {
	return v.ids[endToken]
}

// Unknown returns the reserved unknown-token id.
func (v *Vocab) Unknown() int {
	return v.ids[unknownToken]
}

// Size returns the number of distinct ids.
func (v *Vocab) Size() int {
	return len(v.Words)
}

// Add inserts a token if it is not already present and
// returns its id.
func (v *Vocab) Add(token string) int {
	if id, ok := v.ids[token]; ok {
		return id
	}
	id := len(v.Words)
	v.Words = append(v.Words, token)
	v.ids[token] = id
	return id
}

// ID looks up a token, returning the unknown id for
// tokens outside the vocabulary.
func (v *Vocab) ID(token string) int {
	if id, ok := v.ids[token]; ok {
		return id
	}
	return v.Unknown()
}

// Word returns the token for an id.
//
// It panics if the id is out of range.
func (v *Vocab) Word(id int) string {
	if id < 0 || id >= len(v.Words) {
		panic("id out of range")
	}
	return v.Words[id]
}

// Encode maps tokens to ids, growing the vocabulary as
// needed, and appends the end-of-sequence id.
func (v *Vocab) Encode(tokens []string) []int {
	res := make([]int, 0, len(tokens)+1)
	for _, tok := range tokens {
		res = append(res, v.Add(tok))
	}
	return append(res, v.End())
}

// SerializerType returns the unique ID used to serialize
// a Vocab with the serializer package.
func (v *Vocab) SerializerType() string {
	return "github.com/yuohan/nmt.Vocab"
}

// Serialize serializes the Vocab.
func (v *Vocab) Serialize() ([]byte, error) {
	return json.Marshal(v)
}
