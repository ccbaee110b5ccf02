// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcript

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	xglog "github.com/ManuGH/transcriptd/internal/log"
	"github.com/ManuGH/transcriptd/internal/metrics"
	"github.com/ManuGH/transcriptd/internal/videoid"
)

const (
	// DefaultBulkInterval spaces item starts to stay below two upstream
	// requests per second.
	DefaultBulkInterval    = 550 * time.Millisecond
	DefaultBulkConcurrency = 4

	bulkSeparator = "-------------------------------------"
	noResultsText = "No valid video URLs processed or no transcripts found."
)

// BulkOptions tune one bulk run.
type BulkOptions struct {
	Languages   []string
	Interval    time.Duration
	Concurrency int
}

// BulkItem is the outcome for one input URL.
type BulkItem struct {
	URL     string
	VideoID string
	Result  *Result
	Err     *ClassifiedError
}

// BulkReport holds the items in input order.
type BulkReport struct {
	Items []BulkItem
}

// Succeeded counts items with a result.
func (r *BulkReport) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts items with an error.
func (r *BulkReport) Failed() int { return len(r.Items) - r.Succeeded() }

// Bulk resolves every URL independently. Starts are paced by opts.Interval and
// at most opts.Concurrency items run at once. Each item gets its own
// correlation id, and therefore its own egress route. Blank URLs are skipped.
// The returned error is non-nil only when ctx ends before all items started;
// the report is complete either way.
func (s *Service) Bulk(ctx context.Context, urls []string, opts BulkOptions) (*BulkReport, error) {
	if opts.Interval <= 0 {
		opts.Interval = DefaultBulkInterval
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultBulkConcurrency
	}

	report := &BulkReport{}
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			report.Items = append(report.Items, BulkItem{URL: u})
		}
	}

	logger := xglog.WithContext(ctx, s.logger)
	logger.Info().
		Str(xglog.FieldEvent, "bulk.started").
		Int("items", len(report.Items)).
		Dur("interval", opts.Interval).
		Msg("bulk transcript fetch started")

	limiter := rate.NewLimiter(rate.Every(opts.Interval), 1)
	var g errgroup.Group
	g.SetLimit(opts.Concurrency)

	var startErr error
	for i := range report.Items {
		if err := limiter.Wait(ctx); err != nil {
			startErr = err
			for j := i; j < len(report.Items); j++ {
				report.Items[j].Err = Classify(err, "")
			}
			break
		}

		item := &report.Items[i]
		g.Go(func() error {
			s.bulkItem(ctx, item, opts.Languages)
			return nil
		})
	}
	_ = g.Wait()

	for _, it := range report.Items {
		metrics.RecordBulkItem(it.Err == nil)
	}
	logger.Info().
		Str(xglog.FieldEvent, "bulk.finished").
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Msg("bulk transcript fetch finished")

	return report, startErr
}

func (s *Service) bulkItem(ctx context.Context, item *BulkItem, languages []string) {
	id, err := videoid.Extract(item.URL)
	if err != nil {
		item.Err = NewInvalidInput("Invalid YouTube URL")
		return
	}
	item.VideoID = id

	itemCtx := xglog.ContextWithCorrelationID(ctx, uuid.NewString())
	res, err := s.ResolveAndFormat(itemCtx, id, Options{Languages: languages})
	if err != nil {
		item.Err = Classify(err, id)
		return
	}
	item.Result = res
}

// Render writes the plain-text report: a failure summary when anything
// failed, followed by the successful transcripts separated by blank lines.
func (r *BulkReport) Render() string {
	succeeded, failed := r.Succeeded(), r.Failed()
	if succeeded == 0 && failed == 0 {
		return noResultsText
	}

	var b strings.Builder
	if failed > 0 {
		b.WriteString("Bulk Transcript Fetch Summary:\n")
		fmt.Fprintf(&b, "Successfully fetched: %d transcript(s).\n", succeeded)
		fmt.Fprintf(&b, "Failed to fetch: %d transcript(s).\n\n", failed)
		b.WriteString("Details for failures:\n")
		for _, it := range r.Items {
			if it.Err == nil {
				continue
			}
			b.WriteString(bulkSeparator + "\n")
			fmt.Fprintf(&b, "URL: %s\n", it.URL)
			if it.VideoID != "" {
				fmt.Fprintf(&b, "Video ID: %s\n", it.VideoID)
			}
			fmt.Fprintf(&b, "Error: %s\n", it.Err.Message)
			if it.Err.Details != "" {
				fmt.Fprintf(&b, "Details: %s\n", it.Err.Details)
			}
		}
		b.WriteString(bulkSeparator + "\n\n")
	}

	texts := make([]string, 0, succeeded)
	for _, it := range r.Items {
		if it.Err == nil && it.Result != nil {
			texts = append(texts, it.Result.Text)
		}
	}
	b.WriteString(strings.Join(texts, paragraphSeparator))

	return strings.TrimSpace(b.String())
}
