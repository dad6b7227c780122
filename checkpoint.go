package nmt

import (
	"fmt"
	"os"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// SaveCheckpoint writes the model together with both
// vocabularies to a single bundle file.
//
// The model's hyperparameters travel inside its own
// serialized form, so the bundle is self-describing.
func SaveCheckpoint(path string, m Model, source, target *Vocab) (err error) {
	defer essentials.AddCtxTo("save checkpoint", &err)

	data, err := serializer.SerializeSlice([]serializer.Serializer{
		m, source, target,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCheckpoint reads back a bundle written by
// SaveCheckpoint.
func LoadCheckpoint(path string) (m Model, source, target *Vocab, err error) {
	defer essentials.AddCtxTo("load checkpoint", &err)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	objs, err := serializer.DeserializeSlice(data)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(objs) != 3 {
		return nil, nil, nil, fmt.Errorf("expected 3 objects but got %d",
			len(objs))
	}
	m, ok := objs[0].(Model)
	if !ok {
		return nil, nil, nil, fmt.Errorf("not a model: %T", objs[0])
	}
	source, ok = objs[1].(*Vocab)
	if !ok {
		return nil, nil, nil, fmt.Errorf("not a vocabulary: %T", objs[1])
	}
	target, ok = objs[2].(*Vocab)
	if !ok {
		return nil, nil, nil, fmt.Errorf("not a vocabulary: %T", objs[2])
	}
	return m, source, target, nil
}
