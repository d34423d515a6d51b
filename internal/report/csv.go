package report

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/bayneri/burnrate/internal/sweep"
)

var csvHeader = []string{"series", "severity", "error_rate", "minutes", "duration"}

// WriteCurveCSV flattens every series into one row per point. Never values
// leave the minutes column empty.
func WriteCurveCSV(path string, curve sweep.Curve) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, series := range curve.Series {
		severity := ""
		if series.Severity != 0 {
			severity = series.Severity.String()
		}
		for _, p := range series.Points {
			minutes := ""
			if value, ok := p.Minutes.Value(); ok {
				minutes = strconv.FormatFloat(value, 'f', -1, 64)
			}
			row := []string{
				series.Name,
				severity,
				strconv.FormatFloat(p.ErrorRate, 'g', -1, 64),
				minutes,
				p.Minutes.String(),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
