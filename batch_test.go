package nmt

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestBatchesPairScenario(t *testing.T) {
	corpus := Corpus{
		{Source: []int{7}, Target: []int{9}},
		{Source: []int{5, 6}, Target: []int{8, 9}},
	}
	cfg := &TrainConfig{BatchSize: 2}

	batches, total := Batches(corpus, cfg)
	if total != 1 {
		t.Fatalf("expected 1 batch but got %d", total)
	}
	b := <-batches
	if _, ok := <-batches; ok {
		t.Fatal("too many batches")
	}

	if b.Rows() != 2 || b.SourceWidth() != 2 || b.TargetWidth() != 2 {
		t.Fatalf("bad shape: %dx%d / %dx%d", b.Rows(), b.SourceWidth(),
			b.Rows(), b.TargetWidth())
	}
	// Longer source first.
	if !reflect.DeepEqual(b.Source[0], []int{5, 6}) {
		t.Errorf("unexpected first row: %v", b.Source[0])
	}
	if !reflect.DeepEqual(b.Source[1], []int{7, 0}) {
		t.Errorf("unexpected second row: %v", b.Source[1])
	}
	if !reflect.DeepEqual(b.Target[1], []int{9, 0}) {
		t.Errorf("unexpected second target row: %v", b.Target[1])
	}
	if !reflect.DeepEqual(b.SourceLens, []int{2, 1}) {
		t.Errorf("unexpected lens: %v", b.SourceLens)
	}
}

func TestBatchesSizes(t *testing.T) {
	corpus := testCorpus(5)
	cfg := &TrainConfig{BatchSize: 2}

	batches, total := Batches(corpus, cfg)
	if total != 3 {
		t.Fatalf("expected 3 batches but got %d", total)
	}
	sizes := []int{}
	for b := range batches {
		sizes = append(sizes, b.Rows())
		if b.Total != 3 {
			t.Errorf("batch %d has total %d", b.Index, b.Total)
		}
	}
	if !reflect.DeepEqual(sizes, []int{2, 2, 1}) {
		t.Errorf("unexpected sizes: %v", sizes)
	}
}

func TestBatchesEmptyCorpus(t *testing.T) {
	batches, total := Batches(Corpus{}, &TrainConfig{BatchSize: 4})
	if total != 0 {
		t.Errorf("expected 0 batches but got %d", total)
	}
	if _, ok := <-batches; ok {
		t.Error("unexpected batch from empty corpus")
	}
}

func TestBatchesCoverage(t *testing.T) {
	corpus := testCorpus(23)
	cfg := &TrainConfig{
		BatchSize: 4,
		Shuffle:   true,
		Rand:      rand.New(rand.NewSource(5)),
	}

	var rows [][2][]int
	batches, _ := Batches(corpus, cfg)
	for b := range batches {
		for i := range b.Source {
			source := b.Source[i][:b.SourceLens[i]]
			target := b.Target[i][:b.TargetLens[i]]
			rows = append(rows, [2][]int{source, target})

			// Padding only after true content.
			for _, id := range b.Source[i][b.SourceLens[i]:] {
				if id != cfg.Pad {
					t.Fatal("non-pad id in padded region")
				}
			}
			for _, id := range b.Target[i][b.TargetLens[i]:] {
				if id != cfg.Pad {
					t.Fatal("non-pad id in padded region")
				}
			}
		}
	}
	if len(rows) != len(corpus) {
		t.Fatalf("expected %d rows but got %d", len(corpus), len(rows))
	}

	// Ignoring order, the rows reproduce the corpus exactly.
	key := func(row [2][]int) int { return row[0][0] }
	sort.Slice(rows, func(i, j int) bool { return key(rows[i]) < key(rows[j]) })
	expected := append(Corpus{}, corpus...)
	sort.Slice(expected, func(i, j int) bool {
		return expected[i].Source[0] < expected[j].Source[0]
	})
	for i, row := range rows {
		if !reflect.DeepEqual(row[0], expected[i].Source) ||
			!reflect.DeepEqual(row[1], expected[i].Target) {
			t.Fatalf("row %d does not match the corpus", i)
		}
	}
}

func TestBatchesOrdering(t *testing.T) {
	corpus := Corpus{
		{Source: []int{4, 5}, Target: []int{10}},
		{Source: []int{6, 7, 8}, Target: []int{11}},
		{Source: []int{9, 10}, Target: []int{12}},
	}
	batches, _ := Batches(corpus, &TrainConfig{BatchSize: 3})
	b := <-batches

	for i := 1; i < b.Rows(); i++ {
		if b.SourceLens[i] > b.SourceLens[i-1] {
			t.Fatal("rows not sorted by descending source length")
		}
	}
	// Stable tie-break: the two length-2 rows keep their
	// original relative order.
	if b.Target[1][0] != 10 || b.Target[2][0] != 12 {
		t.Error("tie-break not stable")
	}
}

func TestBatchesEmptyTarget(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty target")
		}
	}()
	corpus := Corpus{{Source: []int{4}, Target: nil}}
	Batches(corpus, &TrainConfig{BatchSize: 1})
}

// testCorpus builds pairs with unique leading source ids
// and varying lengths.
func testCorpus(n int) Corpus {
	res := make(Corpus, n)
	for i := range res {
		source := []int{100 + i}
		for j := 0; j < i%4; j++ {
			source = append(source, 4+j)
		}
		target := []int{200 + i%7}
		for j := 0; j < (i+2)%3; j++ {
			target = append(target, 5+j)
		}
		res[i] = &Pair{Source: source, Target: target}
	}
	return res
}
