// Package batch annotates a list of phrases and appends the results to one
// sink, in input order.
package batch

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PhraseAnnotator computes and writes the readings of one phrase.
type PhraseAnnotator interface {
	Readings(ctx context.Context, phrase string) ([]string, error)
	Emit(phrase string, readings []string, sink io.Writer) error
}

type Result struct {
	Phrases int
	Lines   int
}

// Runner processes phrases one at a time unless Workers > 1. With workers,
// phrases are annotated concurrently but written strictly in input order.
type Runner struct {
	annotator PhraseAnnotator
	workers   int
	log       *logrus.Entry
}

func NewRunner(annotator PhraseAnnotator, workers int, log *logrus.Entry) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{annotator: annotator, workers: workers, log: log}
}

// Run stops at the first failing phrase. Phrases before it are written; the
// failing phrase and everything after it are not.
func (r *Runner) Run(ctx context.Context, phrases []string, sink io.Writer) (Result, error) {
	r.log.WithFields(logrus.Fields{
		"phrases": len(phrases),
		"workers": r.workers,
	}).Info("batch: start")

	var (
		res Result
		err error
	)
	if r.workers == 1 {
		res, err = r.runSerial(ctx, phrases, sink)
	} else {
		res, err = r.runParallel(ctx, phrases, sink)
	}
	if err != nil {
		r.log.WithField("error", err).Error("batch: failed")
		return res, err
	}
	r.log.WithFields(logrus.Fields{
		"phrases": res.Phrases,
		"lines":   res.Lines,
	}).Info("batch: done")
	return res, nil
}

func (r *Runner) runSerial(ctx context.Context, phrases []string, sink io.Writer) (Result, error) {
	var res Result
	for _, phrase := range phrases {
		readings, err := r.annotator.Readings(ctx, phrase)
		if err != nil {
			return res, err
		}
		if err := r.annotator.Emit(phrase, readings, sink); err != nil {
			return res, err
		}
		res.Phrases++
		res.Lines += len(readings)
	}
	return res, nil
}

func (r *Runner) runParallel(ctx context.Context, phrases []string, sink io.Writer) (Result, error) {
	readings := make([][]string, len(phrases))
	done := make([]bool, len(phrases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, phrase := range phrases {
		g.Go(func() error {
			out, err := r.annotator.Readings(gctx, phrase)
			if err != nil {
				return err
			}
			readings[i] = out
			done[i] = true
			return nil
		})
	}
	waitErr := g.Wait()

	var res Result
	for i, phrase := range phrases {
		if !done[i] {
			break
		}
		if err := r.annotator.Emit(phrase, readings[i], sink); err != nil {
			return res, err
		}
		res.Phrases++
		res.Lines += len(readings[i])
	}
	return res, waitErr
}
