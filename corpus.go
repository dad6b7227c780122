package nmt

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/essentials"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// A Pair is one tokenized sentence pair.
// The two sides have independent lengths.
type Pair struct {
	Source []int
	Target []int
}

// A Corpus is a list of sentence pairs.
//
// It implements anysgd.SampleList so that generic SGD
// tooling can shuffle and slice it.
type Corpus []*Pair

// Len returns the number of pairs.
func (c Corpus) Len() int {
	return len(c)
}

// Swap swaps two pairs.
func (c Corpus) Swap(i, j int) {
	c[i], c[j] = c[j], c[i]
}

// Slice copies a sub-range of the corpus.
func (c Corpus) Slice(i, j int) anysgd.SampleList {
	return append(Corpus{}, c[i:j]...)
}

// Copy copies the corpus.
// The pairs themselves are not copied.
func (c Corpus) Copy() anysgd.SampleList {
	return append(Corpus{}, c...)
}

// LoadCorpus reads two line-aligned files, dir/sourceName
// and dir/targetName, and produces a vocabulary for each
// side along with the encoded sentence pairs.
//
// Lines are normalized before tokenization.
// Pairs where either side normalizes to nothing are
// dropped, as are unpaired trailing lines.
func LoadCorpus(dir, sourceName, targetName string) (source, target *Vocab,
	pairs Corpus, err error) {
	defer essentials.AddCtxTo("load corpus", &err)

	sourceLines, err := readLines(filepath.Join(dir, sourceName))
	if err != nil {
		return nil, nil, nil, err
	}
	targetLines, err := readLines(filepath.Join(dir, targetName))
	if err != nil {
		return nil, nil, nil, err
	}

	n := len(sourceLines)
	if len(targetLines) < n {
		n = len(targetLines)
	}

	source = NewVocab(sourceName)
	target = NewVocab(targetName)
	for i := 0; i < n; i++ {
		pair := encodePair(source, target, sourceLines[i], targetLines[i])
		if pair != nil {
			pairs = append(pairs, pair)
		}
	}
	return source, target, pairs, nil
}

// LoadPairsFile reads a single tab-separated file with
// one sentence pair per line.
//
// If sourceFirst is false, the two columns are swapped so
// that the second column becomes the source side.
// Lines without a tab are malformed and skipped.
func LoadPairsFile(path, sourceName, targetName string, sourceFirst bool) (source,
	target *Vocab, pairs Corpus, err error) {
	defer essentials.AddCtxTo("load pairs file", &err)

	lines, err := readLines(path)
	if err != nil {
		return nil, nil, nil, err
	}

	source = NewVocab(sourceName)
	target = NewVocab(targetName)
	for _, line := range lines {
		cols := strings.SplitN(line, "\t", 2)
		if len(cols) != 2 {
			continue
		}
		sourceText, targetText := cols[0], cols[1]
		if !sourceFirst {
			sourceText, targetText = targetText, sourceText
		}
		pair := encodePair(source, target, sourceText, targetText)
		if pair != nil {
			pairs = append(pairs, pair)
		}
	}
	return source, target, pairs, nil
}

func encodePair(source, target *Vocab, sourceText, targetText string) *Pair {
	sourceToks := Tokens(sourceText)
	targetToks := Tokens(targetText)
	if len(sourceToks) == 0 || len(targetToks) == 0 {
		return nil
	}
	return &Pair{
		Source: source.Encode(sourceToks),
		Target: target.Encode(targetToks),
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var res []string
	s := bufio.NewScanner(f)
	s.Buffer(nil, 1<<20)
	for s.Scan() {
		res = append(res, s.Text())
	}
	return res, s.Err()
}

// CorpusStats summarizes the length distribution of a
// corpus, which is handy for picking a batch size.
type CorpusStats struct {
	Pairs int

	SourceMean   float64
	SourceStddev float64
	SourceMax    int

	TargetMean   float64
	TargetStddev float64
	TargetMax    int
}

// Stats computes length statistics over the corpus.
func (c Corpus) Stats() *CorpusStats {
	if len(c) == 0 {
		return &CorpusStats{}
	}
	sourceLens := make([]float64, len(c))
	targetLens := make([]float64, len(c))
	for i, p := range c {
		sourceLens[i] = float64(len(p.Source))
		targetLens[i] = float64(len(p.Target))
	}
	return &CorpusStats{
		Pairs: len(c),

		SourceMean:   stat.Mean(sourceLens, nil),
		SourceStddev: stat.StdDev(sourceLens, nil),
		SourceMax:    int(floats.Max(sourceLens)),

		TargetMean:   stat.Mean(targetLens, nil),
		TargetStddev: stat.StdDev(targetLens, nil),
		TargetMax:    int(floats.Max(targetLens)),
	}
}
