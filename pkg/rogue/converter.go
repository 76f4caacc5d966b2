package rogue

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/consts"
	"github.com/pseudomuto/roadwork/pkg/format"
	"github.com/pseudomuto/roadwork/pkg/migrator"
)

type (
	// ConversionResult is the outcome of converting one DetectedMigration.
	ConversionResult struct {
		SourcePath      string
		DestinationPath string
		Name            string
		Err             error
	}

	// Converter moves detected migrations into the canonical layout.
	Converter struct {
		Store *migrator.Store

		// Detector is used by DetectAndConvert.
		Detector *Detector
	}
)

// Success reports whether the conversion succeeded.
func (r *ConversionResult) Success() bool {
	return r.Err == nil
}

// Convert creates a canonical migration for each detected migration, using its
// SQL as up.sql and, unless the source already had a down.sql, a synthesized
// down.sql.
//
// Migrations are timestamped one second apart in the order given so their
// relative order is kept. The last one gets the current time, unless that would
// sort before an existing migration, in which case they follow the newest
// existing one. A failure converting one migration is recorded in its result
// and does not stop the others. With removeSource, the source file or
// directory of each successful conversion is deleted; failing to delete it is
// logged and does not fail the result.
func (c *Converter) Convert(detected []*DetectedMigration, removeSource bool) []*ConversionResult {
	results := make([]*ConversionResult, 0, len(detected))
	base := c.startTime(len(detected))

	for i, mig := range detected {
		res := &ConversionResult{SourcePath: mig.SourcePath, Name: mig.Name}
		results = append(results, res)

		// Pre-structured sources bring their own down.sql from the source
		// directory; it is only synthesized when that is missing or blank.
		down := mig.DownSQL
		if strings.TrimSpace(down) == "" {
			down = format.Down(mig.Operations)
		}

		created, err := c.Store.CreateAt(base.Add(time.Duration(i)*time.Second), mig.Name, mig.SQL, down)
		if err != nil {
			res.Err = errors.Wrapf(err, "failed to convert %s", mig.SourcePath)
			continue
		}

		res.DestinationPath = created.Dir
		slog.Info("Converted migration", "source", mig.SourcePath, "destination", created.Dir)

		if removeSource {
			if err := os.RemoveAll(mig.SourcePath); err != nil {
				slog.Warn("Could not remove migration source", "source", mig.SourcePath, "error", err)
			}
		}
	}

	return results
}

// startTime returns the timestamp of the first of n converted migrations.
func (c *Converter) startTime(n int) time.Time {
	now := c.Store.Now().Truncate(time.Second)
	start := now.Add(-time.Duration(max(n-1, 0)) * time.Second)

	existing, err := c.Store.List()
	if err != nil {
		slog.Warn("Could not list existing migrations", "error", err)
		return start
	}

	if len(existing) == 0 {
		return start
	}

	newest := existing[len(existing)-1]
	latest, err := time.ParseInLocation(consts.TimestampFormat, newest.Timestamp, now.Location())
	if err != nil {
		slog.Warn("Skipping migration with an invalid timestamp", "dir", newest.Dir, "error", err)
		return start
	}

	if !start.After(latest) {
		start = latest.Add(time.Second)
	}

	return start
}
