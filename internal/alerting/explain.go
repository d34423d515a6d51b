package alerting

import (
	"fmt"
	"sort"
	"strings"
)

func ExplainBurnRate() string {
	return `A burn rate is how fast an SLO consumes its error budget relative to the SLO period. At 1x the budget lasts exactly one period; at 14.4x a 30 day budget is gone in a little over two days.

Each alert window watches the error rate over its own look-back and trips once the average exceeds burnRate x errorBudget.
The defaults page at 14.4x over 1h and 6x over 6h, and open a ticket at 1x over 3d.

Override burn rates only when you have evidence your service tolerates faster budget spend or requires tighter paging, and when your on-call can respond reliably to the added volume.`
}

func ExplainDetection() string {
	return `For a constant error rate r and a window with look-back W minutes and threshold t = burnRate x errorBudget:

  detection = t x W / r, only when r > t (otherwise the window never trips)
  exhaustion = periodMinutes / (r / errorBudget), only when r >= errorBudget
  detected = the earliest detection across all windows
  time to respond = exhaustion - detected

A window whose threshold sits at or above the error rate never detects it. An error rate below the budget never exhausts it within one period.`
}

var topics = map[string]func() string{
	"burn-rate": ExplainBurnRate,
	"detection": ExplainDetection,
}

func Topics() []string {
	var out []string
	for name := range topics {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func Explain(topic string) (string, error) {
	fn, ok := topics[strings.ToLower(strings.TrimSpace(topic))]
	if !ok {
		return "", fmt.Errorf("unknown topic %q (available: %s)", topic, strings.Join(Topics(), ", "))
	}
	return fn(), nil
}
