package burnrate

// DetectionTime is the number of minutes a window of windowDuration minutes
// needs before its check trips at a sustained errorRate. errorRate must be
// positive. The result is Never unless errorRate exceeds threshold.
func DetectionTime(threshold, windowDuration, errorRate float64) Minutes {
	value := threshold * windowDuration / errorRate
	if value < windowDuration {
		return At(value)
	}
	return Never
}

// ExhaustionTime is the number of minutes until the whole error budget is
// spent at a sustained errorRate, or Never if that takes longer than one SLO
// period.
func ExhaustionTime(errorRate, errorBudget, sloPeriodDays float64) Minutes {
	periodMinutes := sloPeriodDays * minutesPerDay
	exhaustion := periodMinutes / (errorRate / errorBudget)
	if exhaustion > periodMinutes {
		return Never
	}
	return At(exhaustion)
}

// Check is the detection input of one alert window.
type Check struct {
	Threshold float64
	Duration  float64
}

// Timings is one evaluation point of the model.
type Timings struct {
	ErrorRate float64   `json:"errorRate"`
	PerWindow []Minutes `json:"perWindow"`
	Detected  Minutes   `json:"detected"`
	Exhausted Minutes   `json:"exhausted"`
}

// ResponseTime is how long responders have between detection and
// exhaustion. It is Never when either event is Never or when the budget runs
// out before any window trips.
func (t Timings) ResponseTime() Minutes {
	return Sub(t.Exhausted, t.Detected)
}

func EvaluateTimings(checks []Check, errorRate, errorBudget, sloPeriodDays float64) Timings {
	timings := Timings{
		ErrorRate: errorRate,
		PerWindow: make([]Minutes, len(checks)),
		Detected:  Never,
	}
	for i, check := range checks {
		detection := DetectionTime(check.Threshold, check.Duration, errorRate)
		timings.PerWindow[i] = detection
		timings.Detected = Min(timings.Detected, detection)
	}
	timings.Exhausted = ExhaustionTime(errorRate, errorBudget, sloPeriodDays)
	return timings
}
