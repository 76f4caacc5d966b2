package rogue

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/format"
)

var (
	okMarker      = color.New(color.FgGreen).Sprint("[OK]")
	failMarker    = color.New(color.FgRed).Sprint("[FAIL]")
	warningMarker = color.New(color.FgYellow, color.Bold).Sprint("WARNING")
)

// Report writes a numbered summary of detected migrations and the operations
// found in each.
func Report(w io.Writer, detected []*DetectedMigration) {
	fmt.Fprintf(w, "Detected %d rogue migration(s) that need conversion:\n\n", len(detected))
	for i, mig := range detected {
		fmt.Fprintf(w, "  %d. %s (from %s)\n", i+1, mig.Name, mig.SourcePath)
		fmt.Fprintln(w, "     Operations detected:")
		for _, op := range mig.Operations {
			fmt.Fprintf(w, "       - %s\n", format.Describe(op))
		}
		fmt.Fprintln(w)
	}
}

// ReportResults writes one line per conversion result followed by a summary,
// and returns the number of successful conversions.
func ReportResults(w io.Writer, results []*ConversionResult) int {
	converted := 0
	for _, res := range results {
		if !res.Success() {
			fmt.Fprintf(w, "  %s %s: %v\n", failMarker, res.Name, res.Err)
			continue
		}

		converted++
		fmt.Fprintf(w, "  %s Converted migration '%s'\n", okMarker, res.Name)
		fmt.Fprintf(w, "       -> %s\n", res.DestinationPath)
	}

	fmt.Fprintf(w, "\nConversion complete: %d/%d migrations converted successfully.\n", converted, len(results))
	return converted
}

// Warn writes a warning listing rogue migrations, if there are any, and
// returns how many were found.
func (d *Detector) Warn(w io.Writer) (int, error) {
	detected, err := d.Detect()
	if err != nil {
		return 0, err
	}

	if len(detected) == 0 {
		return 0, nil
	}

	fmt.Fprintf(w, "\n*** %s: Detected %d SQL migration(s) in non-standard locations! ***\n", warningMarker, len(detected))
	fmt.Fprintf(w, "Migrations are expected in: %s%c\n", d.CanonicalRoot(), filepath.Separator)
	fmt.Fprintln(w, "\nDetected files:")
	for _, mig := range detected {
		fmt.Fprintf(w, "  - %s\n", mig.SourcePath)
	}
	fmt.Fprintln(w, "\nRun 'roadwork migration convert' to fix this automatically.")
	fmt.Fprintln(w)

	return len(detected), nil
}

// DetectAndConvert detects rogue migrations and reports them to w. When
// autoConvert is set they are converted (see Convert) and the number converted
// is returned; otherwise instructions for converting them are printed and 0 is
// returned.
func (c *Converter) DetectAndConvert(w io.Writer, autoConvert, removeSource bool) (int, error) {
	if c.Detector == nil {
		return 0, errors.New("converter has no detector")
	}

	detected, err := c.Detector.Detect()
	if err != nil {
		return 0, err
	}

	if len(detected) == 0 {
		return 0, nil
	}

	fmt.Fprintln(w, "\n=== Migration Converter ===")
	Report(w, detected)

	if !autoConvert {
		fmt.Fprintln(w, "To automatically convert these migrations, run:")
		fmt.Fprintln(w, "  roadwork migration convert")
		fmt.Fprintln(w, "\nOr use --auto-convert with migration commands.")
		return 0, nil
	}

	fmt.Fprintln(w, "Converting migrations...")
	fmt.Fprintln(w)

	converted := ReportResults(w, c.Convert(detected, removeSource))
	if removeSource {
		fmt.Fprintln(w, "Source files have been removed.")
	} else {
		fmt.Fprintln(w, "\nNote: Source files were NOT removed. Use --remove-source to delete them.")
	}

	return converted, nil
}
