package spec

import (
	"fmt"
	"regexp"
	"strings"
)

// Cloud Monitoring user label keys.
var labelKeyRe = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,62}$`)

// ParseLabels reads "key=value,key=value" as given to --labels. Keys must be
// valid alert policy label keys and may appear once.
func ParseLabels(input string) (map[string]string, error) {
	labels := map[string]string{}
	if strings.TrimSpace(input) == "" {
		return labels, nil
	}
	for _, pair := range strings.Split(input, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid label %q", pair)
		}
		key, value := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			return nil, fmt.Errorf("invalid label %q", pair)
		}
		if !labelKeyRe.MatchString(key) {
			return nil, fmt.Errorf("label key %q must be lowercase letters, digits, _ or -", key)
		}
		if _, ok := labels[key]; ok {
			return nil, fmt.Errorf("label %q given more than once", key)
		}
		labels[key] = value
	}
	return labels, nil
}
