package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tracefetch/tracefetch/internal/analysis"
)

// WriteCSV exports the raw series points, one row per receive event.
func WriteCSV(w io.Writer, series []*analysis.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"log", "elapsed_seconds", "cumulative_bytes"}); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	for _, s := range series {
		for _, sample := range s.Samples {
			row := []string{
				s.Name,
				strconv.FormatFloat(sample.Elapsed.Seconds(), 'f', 6, 64),
				strconv.FormatInt(sample.Bytes, 10),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
