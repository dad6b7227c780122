package nmt

import (
	"math/rand"
	"sort"
)

// A Batch is a rectangular chunk of the corpus.
//
// Rows are sorted by true source length, longest first,
// and each side is right-padded to its own widest row
// with the padding id.
// Index is 1-based; the final batch of an epoch may have
// fewer rows than the configured batch size.
type Batch struct {
	Source [][]int
	Target [][]int

	// True (unpadded) lengths, row for row.
	SourceLens []int
	TargetLens []int

	Index int
	Total int
}

// SourceWidth returns the padded source row length.
func (b *Batch) SourceWidth() int {
	if len(b.Source) == 0 {
		return 0
	}
	return len(b.Source[0])
}

// TargetWidth returns the padded target row length.
func (b *Batch) TargetWidth() int {
	if len(b.Target) == 0 {
		return 0
	}
	return len(b.Target[0])
}

// Rows returns the number of pairs in the batch.
func (b *Batch) Rows() int {
	return len(b.Source)
}

// Batches lazily cuts the corpus into padded batches
// covering it exactly once.
//
// If cfg.Shuffle is set, the corpus is permuted in place
// first, using cfg.Rand when it is non-nil.
// The second return value is the total number of batches,
// ceil(len(corpus) / cfg.BatchSize).
//
// Every pair must have a non-empty source and target;
// Batches panics otherwise, since a zero-length target
// would make the training step meaningless.
func Batches(corpus Corpus, cfg *TrainConfig) (<-chan *Batch, int) {
	if cfg.BatchSize <= 0 {
		panic("batch size must be positive")
	}
	for _, p := range corpus {
		if len(p.Source) == 0 || len(p.Target) == 0 {
			panic("empty sequence in corpus")
		}
	}
	if cfg.Shuffle {
		if cfg.Rand != nil {
			cfg.Rand.Shuffle(corpus.Len(), corpus.Swap)
		} else {
			rand.Shuffle(corpus.Len(), corpus.Swap)
		}
	}

	total := (len(corpus) + cfg.BatchSize - 1) / cfg.BatchSize
	res := make(chan *Batch, 1)
	go func() {
		defer close(res)
		for i := 0; i < total; i++ {
			start := i * cfg.BatchSize
			end := start + cfg.BatchSize
			if end > len(corpus) {
				end = len(corpus)
			}
			res <- makeBatch(corpus[start:end], cfg.Pad, i+1, total)
		}
	}()
	return res, total
}

func makeBatch(chunk Corpus, pad, index, total int) *Batch {
	rows := make(Corpus, len(chunk))
	copy(rows, chunk)
	sort.SliceStable(rows, func(i, j int) bool {
		return len(rows[i].Source) > len(rows[j].Source)
	})

	b := &Batch{
		SourceLens: make([]int, len(rows)),
		TargetLens: make([]int, len(rows)),
		Index:      index,
		Total:      total,
	}
	var sourceWidth, targetWidth int
	for i, p := range rows {
		b.SourceLens[i] = len(p.Source)
		b.TargetLens[i] = len(p.Target)
		if len(p.Source) > sourceWidth {
			sourceWidth = len(p.Source)
		}
		if len(p.Target) > targetWidth {
			targetWidth = len(p.Target)
		}
	}
	for _, p := range rows {
		b.Source = append(b.Source, padRow(p.Source, sourceWidth, pad))
		b.Target = append(b.Target, padRow(p.Target, targetWidth, pad))
	}
	return b
}

func padRow(seq []int, width, pad int) []int {
	res := make([]int, width)
	copy(res, seq)
	for i := len(seq); i < width; i++ {
		res[i] = pad
	}
	return res
}
