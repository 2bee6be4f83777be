// Package pipeline drives one batch run: scan the sheet row by row, enrich
// every row that still needs analysis, and commit all output in one bulk
// write at the end.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"route-insights-go/internal/logger"
	"route-insights-go/internal/sheet"
	"route-insights-go/internal/types"
	"route-insights-go/internal/videoid"
)

// Status classifies what happened to a row.
type Status string

const (
	StatusSkipped Status = "skipped"
	StatusWritten Status = "written"
	StatusFailed  Status = "failed"
)

// Outcome is the result of processing one row. Written outcomes carry the
// update to commit and the record it was assembled from.
type Outcome struct {
	Status Status
	Reason string
	Route  types.RouteRecord
	Update sheet.RowUpdate
}

// TranscriptFetcher acquires the narration text for a video id.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// RouteExtractor turns narration into a route record; it always yields a
// well-formed record.
type RouteExtractor interface {
	Extract(ctx context.Context, transcript string) types.RouteRecord
}

type Pipeline struct {
	store       sheet.Store
	transcripts TranscriptFetcher
	routes      RouteExtractor
	layout      sheet.Layout
	log         *logrus.Entry
}

func New(store sheet.Store, transcripts TranscriptFetcher, routes RouteExtractor, layout sheet.Layout) *Pipeline {
	return &Pipeline{
		store:       store,
		transcripts: transcripts,
		routes:      routes,
		layout:      layout,
		log:         logger.New().WithField("component", "pipeline"),
	}
}

// Summary is the per-run accounting reported after the commit.
type Summary struct {
	Rows    int
	Written int
	Skipped int
	Failed  int
	Applied int
}

// Run reads all rows, processes them sequentially in sheet order, and
// commits the collected updates in a single bulk write. Row-level problems
// are logged and isolated; only read and commit faults are errors.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	rows, err := p.store.ReadAllRows(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		p.log.Info("no data rows to process")
		return Summary{}, nil
	}

	var sum Summary
	var updates []sheet.RowUpdate
	for i, row := range rows[1:] { // row 1 is the header
		sheetRow := i + 2
		rowLog := p.log.WithField("row", sheetRow)

		out := p.ProcessRow(ctx, row, sheetRow)
		sum.Rows++
		switch out.Status {
		case StatusSkipped:
			sum.Skipped++
			rowLog.WithField("reason", out.Reason).Info("row skipped")
		case StatusFailed:
			sum.Failed++
			rowLog.WithField("reason", out.Reason).Warn("row failed")
		case StatusWritten:
			sum.Written++
			updates = append(updates, out.Update)
			rowLog.WithFields(logrus.Fields{
				"start":     out.Route.Start,
				"end":       out.Route.End,
				"waypoints": len(out.Route.Waypoints),
			}).Info("row analyzed")
		}
	}

	applied, err := p.store.BatchUpdate(ctx, updates)
	if err != nil {
		return sum, fmt.Errorf("commit updates: %w", err)
	}
	sum.Applied = applied
	return sum, nil
}

// ProcessRow decides whether a row needs work and, if so, runs acquisition,
// extraction, and write assembly. It issues no writes itself.
func (p *Pipeline) ProcessRow(ctx context.Context, row []string, sheetRow int) Outcome {
	url := cellAt(row, p.layout.URLColumn)
	if url == "" {
		return Outcome{Status: StatusSkipped, Reason: "empty reference"}
	}
	// A non-empty start cell means some earlier run already wrote this row.
	if marker := cellAt(row, p.layout.MarkerColumn()); marker != "" {
		return Outcome{Status: StatusSkipped, Reason: "already analyzed"}
	}

	id, ok := videoid.Resolve(url)
	if !ok {
		return Outcome{Status: StatusFailed, Reason: "unrecognized video link format"}
	}

	transcript, err := p.transcripts.Fetch(ctx, id)
	if err != nil {
		return Outcome{Status: StatusFailed, Reason: err.Error()}
	}

	rec := p.routes.Extract(ctx, transcript)
	if rec.Start == "" {
		// The start cell doubles as the done marker, so this row will be
		// picked up again on every future run.
		p.log.WithField("row", sheetRow).Warn("extraction produced an empty start point; potential reprocessing loop")
	}

	return Outcome{
		Status: StatusWritten,
		Route:  rec,
		Update: sheet.RowUpdate{
			Range:  p.layout.RangeFor(sheetRow),
			Values: assemble(rec, p.layout.Capacity),
		},
	}
}

// assemble lays a route out into the fixed-width output block: start point,
// then exactly capacity waypoint slots (left aligned, padded with empty
// strings, overflow silently dropped), then end point.
func assemble(rec types.RouteRecord, capacity int) []string {
	values := make([]string, 0, capacity+2)
	values = append(values, rec.Start)
	for i := 0; i < capacity; i++ {
		if i < len(rec.Waypoints) {
			values = append(values, rec.Waypoints[i])
		} else {
			values = append(values, "")
		}
	}
	return append(values, rec.End)
}

// cellAt reads a cell by index, treating missing trailing cells as empty.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
