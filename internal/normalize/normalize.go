// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pdiddy/matex/pkg/types"
)

// ErrEmptyExtraction signals structurally absent input: no title, no
// authors, and no abstract. This is the only fatal input condition; all
// other degradations resolve to low-confidence results plus warnings
// (prd002-normalization R1.2).
var ErrEmptyExtraction = errors.New("raw extraction has no usable content (no title, authors, or abstract)")

const defaultWorkers = 4

// Options configures one normalization run.
type Options struct {
	// Workers bounds the fan-out over tables and measurements.
	// Zero means the default (4).
	Workers int

	// GrobidVersion is recorded in result metadata ("" for unknown).
	GrobidVersion string

	// LLMModel is recorded in result metadata ("" when interpretation
	// is skipped).
	LLMModel string
}

// Normalize converts a raw extraction into the canonical model. Tables
// and measurements normalize in parallel over a bounded worker pool;
// everything else is cheap and runs inline. Output order and warning
// order are deterministic regardless of scheduling (R5.1-R5.3).
//
// Cancellation propagates to in-flight sub-tasks and discards partial
// results.
func Normalize(ctx context.Context, raw *types.RawExtraction, opts Options) (*types.NormalizedExtraction, error) {
	start := time.Now()

	if raw.IsEmpty() {
		return nil, ErrEmptyExtraction
	}

	out := &types.NormalizedExtraction{
		Keywords:        append([]string{}, raw.Keywords...),
		DOI:             raw.DOI,
		PublicationDate: raw.PublicationDate,
		Authors:         make([]types.NormalizedAuthor, len(raw.Authors)),
		References:      make([]types.NormalizedReference, len(raw.References)),
		Materials:       make([]types.NormalizedMaterial, len(raw.Materials)),
		Measurements:    make([]types.NormalizedMeasurement, len(raw.Measurements)),
		Tables:          make([]types.ExtractedTable, len(raw.Tables)),
	}
	if raw.Title != nil {
		out.Title = *raw.Title
	}
	if raw.Abstract != nil {
		out.Abstract = *raw.Abstract
	}
	out.Journal = Journal(raw.Journal, raw.Volume, raw.Issue, raw.Pages)

	for i, a := range raw.Authors {
		out.Authors[i] = Author(a)
	}
	for i, r := range raw.References {
		out.References[i] = Reference(r)
	}
	for i, m := range raw.Materials {
		out.Materials[i] = Material(m)
	}

	materialNames := make([]string, len(raw.Materials))
	for i, m := range raw.Materials {
		materialNames[i] = m.Name
	}

	measurementWarnings := make([][]string, len(raw.Measurements))
	tableWarnings := make([][]string, len(raw.Tables))

	err := runPool(ctx, workerCount(opts, len(raw.Measurements)+len(raw.Tables)), len(raw.Measurements)+len(raw.Tables), func(i int) {
		if i < len(raw.Measurements) {
			out.Measurements[i], measurementWarnings[i] = Measurement(raw.Measurements[i])
			return
		}
		j := i - len(raw.Measurements)
		out.Tables[j], tableWarnings[j] = Table(raw.Tables[j], j, materialNames)
	})
	if err != nil {
		return nil, err
	}

	var warnings []string
	for _, w := range measurementWarnings {
		warnings = append(warnings, w...)
	}
	for _, w := range tableWarnings {
		warnings = append(warnings, w...)
	}
	if warnings == nil {
		warnings = []string{}
	}

	var grobidVersion *string
	if opts.GrobidVersion != "" {
		v := opts.GrobidVersion
		grobidVersion = &v
	}

	out.Metadata = types.ExtractionMetadata{
		ExtractionTimestamp: time.Now().UTC().Format(time.RFC3339),
		GrobidVersion:       grobidVersion,
		LLMModel:            opts.LLMModel,
		ProcessingTimeMs:    time.Since(start).Milliseconds(),
		OverallConfidence:   OverallConfidence(out),
		Warnings:            warnings,
	}

	return out, nil
}

// workerCount bounds the pool: never more workers than jobs, never an
// unbounded fan-out.
func workerCount(opts Options, jobs int) int {
	n := opts.Workers
	if n <= 0 {
		n = defaultWorkers
	}
	if jobs < n {
		n = jobs
	}
	return n
}

// runPool executes fn(0..jobs-1) on a fixed pool of workers. Jobs land
// in index-addressed slots, so callers see deterministic ordering. A
// cancelled context abandons undistributed jobs and returns ctx.Err().
func runPool(ctx context.Context, workers, jobs int, fn func(i int)) error {
	if jobs == 0 {
		return ctx.Err()
	}

	ch := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				fn(i)
			}
		}()
	}

	var err error
dispatch:
	for i := 0; i < jobs; i++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		case ch <- i:
		}
	}
	close(ch)
	wg.Wait()
	return err
}

// OverallConfidence is the arithmetic mean of item confidences across
// authors, materials, measurements, and tables. Empty categories are
// excluded from the mean rather than counted as zero (R6.1).
func OverallConfidence(n *types.NormalizedExtraction) float64 {
	sum, count := 0.0, 0
	for _, a := range n.Authors {
		sum += a.Confidence
		count++
	}
	for _, m := range n.Materials {
		sum += m.Confidence
		count++
	}
	for _, m := range n.Measurements {
		sum += m.Confidence
		count++
	}
	for _, t := range n.Tables {
		sum += t.Confidence
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
