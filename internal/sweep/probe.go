package sweep

import (
	"errors"

	"github.com/bayneri/burnrate/internal/burnrate"
)

type WindowTiming struct {
	Name      string            `json:"name"`
	Severity  burnrate.Severity `json:"severity"`
	Detection burnrate.Minutes  `json:"detection"`
}

// ProbeResult answers "what happens at this error rate" for one arbitrary point.
type ProbeResult struct {
	ErrorRate      float64          `json:"errorRate"`
	PerWindow      []WindowTiming   `json:"perWindow"`
	Detected       burnrate.Minutes `json:"detected"`
	DetectedPage   burnrate.Minutes `json:"detectedPage"`
	DetectedTicket burnrate.Minutes `json:"detectedTicket"`
	Exhausted      burnrate.Minutes `json:"exhausted"`
	ResponseTime   burnrate.Minutes `json:"responseTime"`
}

func Probe(model *burnrate.Model, errorRate float64) (ProbeResult, error) {
	if model == nil {
		return ProbeResult{}, errors.New("nil model")
	}
	timings, err := model.Evaluate(errorRate)
	if err != nil {
		return ProbeResult{}, err
	}
	result := ProbeResult{
		ErrorRate:      errorRate,
		Detected:       timings.Detected,
		DetectedPage:   model.DetectedBy(timings, burnrate.Page),
		DetectedTicket: model.DetectedBy(timings, burnrate.Ticket),
		Exhausted:      timings.Exhausted,
		ResponseTime:   timings.ResponseTime(),
	}
	for i, w := range model.Windows() {
		result.PerWindow = append(result.PerWindow, WindowTiming{
			Name:      w.Name,
			Severity:  w.Severity,
			Detection: timings.PerWindow[i],
		})
	}
	return result, nil
}
