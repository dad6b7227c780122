// Command train fits a translation model to a parallel
// corpus and writes a checkpoint bundle when done.
//
// The corpus is either a pair of line-aligned files,
//
//	train -data ./data -source eng -target fra
//
// or a single tab-separated file of sentence pairs,
//
//	train -pairs ./data/eng-fra.txt -swap
//
// where -swap makes the second column the source side.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/essentials"
	"github.com/yuohan/nmt"
)

func main() {
	var dataDir string
	var pairsFile string
	var sourceName string
	var targetName string
	var swap bool

	var modelType string
	var score string
	var embedSize int
	var hiddenSize int
	var layers int
	var modelDim int
	var maxTarget int

	var epochs int
	var batchSize int
	var learningRate float64
	var adam bool
	var interval time.Duration
	var seed int64

	var savePath string

	flag.StringVar(&dataDir, "data", "", "directory with the two corpus files")
	flag.StringVar(&pairsFile, "pairs", "", "tab-separated pair file (alternative to -data)")
	flag.StringVar(&sourceName, "source", "eng", "source language file name")
	flag.StringVar(&targetName, "target", "fra", "target language file name")
	flag.BoolVar(&swap, "swap", false, "treat the second pair column as the source")

	flag.StringVar(&modelType, "model", "rnn", "architecture family (rnn or transformer)")
	flag.StringVar(&score, "score", "concat", "attention score function name")
	flag.IntVar(&embedSize, "embed", 256, "embedding size")
	flag.IntVar(&hiddenSize, "hidden", 512, "hidden layer size")
	flag.IntVar(&layers, "layers", 1, "recurrent layer count")
	flag.IntVar(&modelDim, "dim", 256, "transformer model dimension")
	flag.IntVar(&maxTarget, "maxtarget", 64, "transformer maximum target length")

	flag.IntVar(&epochs, "epochs", 20, "number of epochs")
	flag.IntVar(&batchSize, "batch", 64, "batch size")
	flag.Float64Var(&learningRate, "lr", 0.001, "learning rate")
	flag.BoolVar(&adam, "adam", false, "use Adam instead of plain SGD")
	flag.DurationVar(&interval, "interval", nmt.DefaultReportInterval,
		"minimum time between progress reports")
	flag.Int64Var(&seed, "seed", 0, "shuffle seed (0 means time-based)")

	flag.StringVar(&savePath, "save", "model_out", "checkpoint output path")

	flag.Parse()

	if (dataDir == "") == (pairsFile == "") {
		essentials.Die("must set exactly one of -data and -pairs (see -help)")
	}

	var source, target *nmt.Vocab
	var corpus nmt.Corpus
	var err error
	if dataDir != "" {
		source, target, corpus, err = nmt.LoadCorpus(dataDir, sourceName, targetName)
	} else {
		source, target, corpus, err = nmt.LoadPairsFile(pairsFile, sourceName,
			targetName, !swap)
	}
	if err != nil {
		essentials.Die(err)
	}
	if len(corpus) == 0 {
		essentials.Die("no usable sentence pairs")
	}

	stats := corpus.Stats()
	log.Printf("loaded %d pairs (source: %d words, mean len %.1f±%.1f, max %d)",
		stats.Pairs, source.Size(), stats.SourceMean, stats.SourceStddev,
		stats.SourceMax)
	log.Printf("target: %d words, mean len %.1f±%.1f, max %d", target.Size(),
		stats.TargetMean, stats.TargetStddev, stats.TargetMax)

	conf := &nmt.ModelConfig{Type: modelType}
	switch modelType {
	case "rnn":
		conf.RNN = &nmt.RNNConfig{
			EmbedSize:  embedSize,
			HiddenSize: hiddenSize,
			Layers:     layers,
			Score:      score,
		}
	case "transformer":
		if stats.TargetMax > maxTarget {
			maxTarget = stats.TargetMax
		}
		conf.Transformer = &nmt.TransformerConfig{
			ModelDim:  modelDim,
			MaxTarget: maxTarget,
		}
	}

	c := anyvec32.CurrentCreator()
	model, err := nmt.NewModel(c, conf, source.Size(), target.Size())
	if err != nil {
		essentials.Die(err)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg := &nmt.TrainConfig{
		BatchSize:   batchSize,
		Epochs:      epochs,
		Pad:         target.Pad(),
		Shuffle:     true,
		Rand:        rand.New(rand.NewSource(seed)),
		ReportEvery: interval,
	}
	trainer := &nmt.Trainer{
		Model:  model,
		Params: model.Parameters(),
		Rater:  anysgd.ConstRater(learningRate),
		Pad:    target.Pad(),
	}
	if adam {
		trainer.Transformer = &anysgd.Adam{}
	}

	log.Printf("training %s model for %d epochs", model.Name(), epochs)
	trainer.Train(corpus, cfg, os.Stdout)

	if err := nmt.SaveCheckpoint(savePath, model, source, target); err != nil {
		essentials.Die(err)
	}
	fmt.Println("saved checkpoint to", savePath)
}
