package report

import (
	"encoding/json"
	"os"

	"github.com/bayneri/burnrate/internal/sweep"
)

func WriteJSON(path string, payload interface{}) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func WriteCurveJSON(path string, curve sweep.Curve) error {
	return WriteJSON(path, curve)
}

func WriteProbesJSON(path string, probes []sweep.ProbeResult) error {
	return WriteJSON(path, probes)
}
