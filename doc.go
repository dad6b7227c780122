// Package nmt trains sequence-to-sequence translation
// models over parallel text corpora.
//
// The package owns the data-shaping half of training:
// normalizing raw text, building vocabularies, grouping
// sentence pairs into padded length-sorted batches, and
// driving a differentiable model through an epoch loop
// with throttled progress reporting.
// Tensor math, automatic differentiation, and the
// recurrent building blocks all come from anyvec, anydiff
// and anynet.
package nmt
