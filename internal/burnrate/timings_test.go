package burnrate

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectionTimeScenario(t *testing.T) {
	got, ok := DetectionTime(0.0144, 60, 0.05).Value()
	require.True(t, ok)
	assert.InDelta(t, 17.28, got, 1e-9)
}

func TestDetectionTimeBoundary(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		errorRate float64
		occurs    bool
	}{
		{"above threshold", 0.125, 0.126, true},
		{"equal to threshold", 0.125, 0.125, false},
		{"below threshold", 0.125, 0.1, false},
		{"zero threshold", 0, 0.001, true},
		{"full outage", 0.125, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectionTime(tt.threshold, 60, tt.errorRate)
			assert.Equal(t, tt.occurs, got.Occurs())
			if value, ok := got.Value(); ok {
				assert.Less(t, value, 60.0)
				assert.GreaterOrEqual(t, value, 0.0)
			}
		})
	}
}

func TestDetectionTimeZeroThresholdTripsImmediately(t *testing.T) {
	value, ok := DetectionTime(0, 360, 0.5).Value()
	require.True(t, ok)
	assert.Equal(t, 0.0, value)
}

func TestExhaustionTimeScenario(t *testing.T) {
	got, ok := ExhaustionTime(0.05, 0.001, 30).Value()
	require.True(t, ok)
	assert.InDelta(t, 864, got, 1e-9)
}

func TestExhaustionTimeAtBudgetIsWholePeriod(t *testing.T) {
	got, ok := ExhaustionTime(0.001, 0.001, 30).Value()
	require.True(t, ok)
	assert.Equal(t, 43200.0, got)
}

func TestExhaustionTimeBelowBudgetIsNever(t *testing.T) {
	assert.False(t, ExhaustionTime(0.0005, 0.001, 30).Occurs())
}

func TestExhaustionTimeMonotonic(t *testing.T) {
	previous := math.Inf(1)
	for rate := 0.001; rate <= 1; rate *= 1.1 {
		value, ok := ExhaustionTime(rate, 0.001, 30).Value()
		require.True(t, ok, "rate %v", rate)
		assert.LessOrEqual(t, value, previous, "rate %v", rate)
		previous = value
	}
}

func TestExhaustionTimeIncreasesWithBudget(t *testing.T) {
	small, _ := ExhaustionTime(0.5, 0.001, 30).Value()
	large, _ := ExhaustionTime(0.5, 0.01, 30).Value()
	assert.Less(t, small, large)
}

func TestEvaluateTimingsDetectedIsMinimum(t *testing.T) {
	checks := []Check{
		{Threshold: 0.0144, Duration: 60},
		{Threshold: 0.006, Duration: 360},
		{Threshold: 0.001, Duration: 4320},
	}
	timings := EvaluateTimings(checks, 0.01, 0.001, 30)

	require.Len(t, timings.PerWindow, 3)
	assert.False(t, timings.PerWindow[0].Occurs())

	six, ok := timings.PerWindow[1].Value()
	require.True(t, ok)
	assert.InDelta(t, 216, six, 1e-9)

	three, ok := timings.PerWindow[2].Value()
	require.True(t, ok)
	assert.InDelta(t, 432, three, 1e-9)

	detected, ok := timings.Detected.Value()
	require.True(t, ok)
	assert.InDelta(t, 216, detected, 1e-9)

	exhausted, ok := timings.Exhausted.Value()
	require.True(t, ok)
	assert.InDelta(t, 4320, exhausted, 1e-9)

	response, ok := timings.ResponseTime().Value()
	require.True(t, ok)
	assert.InDelta(t, 4104, response, 1e-9)
}

func TestEvaluateTimingsAllNever(t *testing.T) {
	checks := []Check{{Threshold: 0.5, Duration: 60}, {Threshold: 0.2, Duration: 360}}
	timings := EvaluateTimings(checks, 0.1, 0.05, 30)
	assert.False(t, timings.Detected.Occurs())
	assert.False(t, timings.ResponseTime().Occurs())
	assert.True(t, timings.Exhausted.Occurs())
}

func TestEvaluateTimingsTieIgnoresOrder(t *testing.T) {
	checks := []Check{{Threshold: 0.01, Duration: 120}, {Threshold: 0.02, Duration: 60}}
	forward := EvaluateTimings(checks, 0.1, 0.001, 30)
	reverse := EvaluateTimings([]Check{checks[1], checks[0]}, 0.1, 0.001, 30)
	a, _ := forward.Detected.Value()
	b, _ := reverse.Detected.Value()
	assert.InDelta(t, 12, a, 1e-9)
	assert.Equal(t, a, b)
}

func TestResponseTimeNeverNegative(t *testing.T) {
	timings := Timings{Detected: At(100), Exhausted: At(30)}
	assert.False(t, timings.ResponseTime().Occurs())
}

func TestMin(t *testing.T) {
	assert.Equal(t, At(3), Min(At(3), Never))
	assert.Equal(t, At(3), Min(Never, At(3)))
	assert.Equal(t, At(1), Min(At(3), At(1)))
	assert.Equal(t, Never, Min(Never, Never))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "0d 0h 0m 0s"},
		{90, "0d 1h 30m 0s"},
		{1500.5, "1d 1h 0m 30s"},
		{17.28, "0d 0h 17m 16s"},
		{43200, "30d 0h 0m 0s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.minutes))
		})
	}
}

func TestFormatDurationRejectsNegative(t *testing.T) {
	assert.Panics(t, func() { FormatDuration(-1) })
	assert.Panics(t, func() { FormatDuration(math.NaN()) })
}

func TestMinutesString(t *testing.T) {
	assert.Equal(t, "never", Never.String())
	assert.Equal(t, "0d 1h 30m 0s", At(90).String())
}

func TestMinutesJSON(t *testing.T) {
	data, err := json.Marshal([]Minutes{At(1.5), Never})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null]`, string(data))

	var decoded []Minutes
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []Minutes{At(1.5), Never}, decoded)
}

func TestModelEvaluate(t *testing.T) {
	model, err := NewModel(Objective{TargetPercent: 99.9, PeriodDays: 30}, []Window{
		{Name: "1h", Severity: Page, BurnRate: 14.4, Duration: 60},
		{Name: "6h", Severity: Page, BurnRate: 6, Duration: 360},
		{Name: "3d", Severity: Ticket, BurnRate: 1, Duration: 4320},
	})
	require.NoError(t, err)

	thresholds := model.Thresholds()
	assert.InDelta(t, 0.0144, thresholds[0], 1e-12)

	timings, err := model.Evaluate(0.05)
	require.NoError(t, err)
	first, ok := timings.PerWindow[0].Value()
	require.True(t, ok)
	assert.InDelta(t, 17.28, first, 1e-9)

	page, ok := model.DetectedBy(timings, Page).Value()
	require.True(t, ok)
	assert.InDelta(t, 17.28, page, 1e-9)
	ticket, ok := model.DetectedBy(timings, Ticket).Value()
	require.True(t, ok)
	assert.InDelta(t, 86.4, ticket, 1e-9)

	_, err = model.Evaluate(0)
	assert.True(t, errors.Is(err, ErrInvalidErrorRate))
	_, err = model.Evaluate(1.5)
	assert.True(t, errors.Is(err, ErrInvalidErrorRate))
}

func TestNewModelRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		objective Objective
		windows   []Window
	}{
		{"objective 100", Objective{TargetPercent: 100, PeriodDays: 30}, []Window{{Name: "1h", BurnRate: 1, Duration: 60}}},
		{"zero period", Objective{TargetPercent: 99, PeriodDays: 0}, []Window{{Name: "1h", BurnRate: 1, Duration: 60}}},
		{"no windows", Objective{TargetPercent: 99, PeriodDays: 30}, nil},
		{"zero burn rate", Objective{TargetPercent: 99, PeriodDays: 30}, []Window{{Name: "1h", BurnRate: 0, Duration: 60}}},
		{"duplicate", Objective{TargetPercent: 99, PeriodDays: 30}, []Window{
			{Name: "1h", BurnRate: 1, Duration: 60},
			{Name: "1h", BurnRate: 2, Duration: 60},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel(tt.objective, tt.windows)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidModel))
		})
	}
}

func TestBudgetConsumption(t *testing.T) {
	w := Window{Name: "1h", BurnRate: 14.4, Duration: 60}
	assert.InDelta(t, 0.02, w.BudgetConsumption(30), 1e-12)
}

func TestParseErrorRate(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"0.05", 0.05, true},
		{"5%", 0.05, true},
		{" 100 % ", 1, true},
		{"1", 1, true},
		{"0", 0, false},
		{"150%", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseErrorRate(tt.input)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidErrorRate))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
