package burnrate

import (
	"encoding/json"
	"fmt"
	"math"
)

// Minutes is a duration in minutes that may not occur within the modelled
// horizon. The zero value is Never.
type Minutes struct {
	value  float64
	occurs bool
}

// Never means the event does not happen within the relevant horizon.
var Never = Minutes{}

func At(value float64) Minutes {
	return Minutes{value: value, occurs: true}
}

func (m Minutes) Value() (float64, bool) {
	return m.value, m.occurs
}

func (m Minutes) Occurs() bool {
	return m.occurs
}

func (m Minutes) String() string {
	if !m.occurs {
		return "never"
	}
	return FormatDuration(m.value)
}

func (m Minutes) MarshalJSON() ([]byte, error) {
	if !m.occurs {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

func (m *Minutes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Never
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("minutes: %w", err)
	}
	*m = At(value)
	return nil
}

// Min returns the earlier of two occurrences. Never only wins when both are Never.
func Min(a, b Minutes) Minutes {
	switch {
	case !a.occurs:
		return b
	case !b.occurs:
		return a
	case b.value < a.value:
		return b
	default:
		return a
	}
}

// Sub returns a minus b when both occur and the result is not negative.
func Sub(a, b Minutes) Minutes {
	if !a.occurs || !b.occurs {
		return Never
	}
	diff := a.value - b.value
	if diff < 0 {
		return Never
	}
	return At(diff)
}

// FormatDuration renders minutes as "{days}d {hours}h {minutes}m {seconds}s",
// truncating every component. It panics on negative, NaN or infinite input;
// use Minutes.String when the value may be Never.
func FormatDuration(minutes float64) string {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes < 0 {
		panic(fmt.Sprintf("burnrate: cannot format %v minutes", minutes))
	}
	seconds := int64(math.Floor(minutes*60)) % 60
	wholeMinutes := int64(math.Floor(minutes))
	hours := wholeMinutes / 60
	days := hours / 24
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours%24, wholeMinutes%60, seconds)
}
