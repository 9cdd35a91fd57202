package cloner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/template-cloner/internal/geometry"
)

// SegmentLocator finds a region of the source image inside the target image.
type SegmentLocator interface {
	Locate(ctx context.Context, source image.Image, box geometry.Box, target image.Image) (geometry.Box, error)
}

// Skip records a relation that produced no output.
type Skip struct {
	Index    int          `json:"index" yaml:"index"`
	Relation geometry.Box `json:"relation" yaml:"relation"`
	Reason   string       `json:"reason" yaml:"reason"`
}

// Result is the outcome of one cloning run.
type Result struct {
	RunID   string `json:"run_id" yaml:"run_id"`
	Labels  Labels `json:"labels" yaml:"labels"`
	Skipped []Skip `json:"skipped" yaml:"skipped"`
}

// Cloner projects source labels onto target images.
type Cloner struct {
	locator SegmentLocator
	opts    Options
	logger  *slog.Logger
}

// New creates a Cloner. A nil logger uses slog.Default.
func New(locator SegmentLocator, opts Options, logger *slog.Logger) (*Cloner, error) {
	if locator == nil {
		return nil, errors.New("segment locator is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cloner{locator: locator, opts: opts, logger: logger}, nil
}

// Options returns the cloner's options.
func (c *Cloner) Options() Options {
	return c.opts
}

// CloneLabels runs a cloning pass with default options and returns only the
// merged labels.
func CloneLabels(ctx context.Context, locator SegmentLocator, source, target image.Image, labels Labels) (Labels, error) {
	c, err := New(locator, DefaultOptions(), nil)
	if err != nil {
		return Labels{}, err
	}
	res, err := c.Clone(ctx, source, target, labels)
	if err != nil {
		return Labels{}, err
	}
	return res.Labels, nil
}

type relationOutcome struct {
	labels Labels
	err    error
	done   bool
}

// Clone projects every relation of labels from source onto target.
//
// Output order follows relation order regardless of Options.Workers. On a
// fatal error the error of the lowest-index failing relation is returned.
func (c *Cloner) Clone(ctx context.Context, source, target image.Image, labels Labels) (*Result, error) {
	if source == nil || target == nil {
		return nil, errors.New("source and target images are required")
	}
	if err := labels.Validate(); err != nil {
		return nil, fmt.Errorf("invalid labels: %w", err)
	}

	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID)
	start := time.Now()
	logger.Info("cloning started", "relations", len(labels.Relations), "workers", c.opts.Workers)

	outcomes := make([]relationOutcome, len(labels.Relations))
	if c.opts.Workers <= 1 {
		for i, rel := range labels.Relations {
			out, err := c.cloneRelation(ctx, i, rel, source, target, labels, logger.With("relation", i))
			outcomes[i] = relationOutcome{labels: out, err: err, done: true}
			if err != nil && c.fatal(err) {
				break
			}
		}
	} else {
		c.cloneParallel(ctx, source, target, labels, logger, outcomes)
	}

	res := &Result{RunID: runID, Skipped: []Skip{}}
	var merged Labels
	for i, o := range outcomes {
		if !o.done {
			continue
		}
		if o.err != nil {
			if c.fatal(o.err) {
				logger.Error("cloning failed", "relation", i, "error", o.err)
				return nil, o.err
			}
			logger.Info("relation skipped", "relation", i, "reason", o.err)
			res.Skipped = append(res.Skipped, Skip{Index: i, Relation: labels.Relations[i], Reason: o.err.Error()})
			continue
		}
		merged.Append(o.labels)
	}
	res.Labels = merged.Merge(c.opts.MergeDistance)

	logger.Info("cloning finished",
		"boxes", res.Labels.Count(),
		"skipped", len(res.Skipped),
		"duration", time.Since(start))
	return res, nil
}

// cloneParallel fills outcomes using a bounded worker group. Relations after
// the lowest fatal failure seen so far are not started; everything before it
// still runs, so the reported failure matches a sequential run.
func (c *Cloner) cloneParallel(ctx context.Context, source, target image.Image, labels Labels, logger *slog.Logger, outcomes []relationOutcome) {
	var firstFatal atomic.Int64
	firstFatal.Store(math.MaxInt64)

	var g errgroup.Group
	g.SetLimit(c.opts.Workers)
	for i, rel := range labels.Relations {
		g.Go(func() error {
			if int64(i) > firstFatal.Load() {
				return nil
			}
			out, err := c.cloneRelation(ctx, i, rel, source, target, labels, logger.With("relation", i))
			outcomes[i] = relationOutcome{labels: out, err: err, done: true}
			if err != nil && c.fatal(err) {
				for {
					cur := firstFatal.Load()
					if int64(i) >= cur || firstFatal.CompareAndSwap(cur, int64(i)) {
						break
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// fatal reports whether err ends the run under the configured policy.
func (c *Cloner) fatal(err error) bool {
	if IsSkip(err) {
		return false
	}
	if IsAmbiguity(err) {
		return c.opts.OnAmbiguity != PolicySkip
	}
	return true
}
