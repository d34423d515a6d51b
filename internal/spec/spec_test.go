package spec

import (
	"strings"
	"testing"
	"time"
)

func validSpec() Spec {
	return Spec{
		APIVersion: APIVersionV1,
		Kind:       KindBurnRateModel,
		Metadata:   Metadata{Name: "checkout-api"},
		SLO:        SLO{Objective: 99.9, Period: "30d"},
	}
}

func TestLoadTestdata(t *testing.T) {
	s, err := Load("testdata/model.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	model, err := s.Model()
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	windows := model.Windows()
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	if windows[2].Duration != 4320 {
		t.Fatalf("expected 3d window to be 4320 minutes, got %v", windows[2].Duration)
	}
	if windows[2].Severity.String() != "ticket" {
		t.Fatalf("expected ticket severity, got %s", windows[2].Severity)
	}
	if model.Objective().PeriodDays != 30 {
		t.Fatalf("expected 30 day period, got %v", model.Objective().PeriodDays)
	}
}

func TestModelDefaultsWindows(t *testing.T) {
	model, err := validSpec().Model()
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	windows := model.Windows()
	if len(windows) != 3 {
		t.Fatalf("expected default windows, got %d", len(windows))
	}
	if windows[0].Name != "1h" || windows[0].Duration != 60 || windows[0].BurnRate != 14.4 {
		t.Fatalf("unexpected first window %+v", windows[0])
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Spec)
		want   string
	}{
		{"valid", func(s *Spec) {}, ""},
		{"kind", func(s *Spec) { s.Kind = "ServiceSLO" }, "kind must be"},
		{"objective", func(s *Spec) { s.SLO.Objective = 100 }, "slo.objective"},
		{"period", func(s *Spec) { s.SLO.Period = "30 days" }, "slo.period"},
		{"window-format", func(s *Spec) {
			s.Windows = []Window{{Name: "a", Window: "1.5h", BurnRate: 2}}
		}, "windows[0].window"},
		{"window-too-long", func(s *Spec) {
			s.Windows = []Window{{Name: "a", Window: "5w", BurnRate: 2}}
		}, "exceeds slo.period"},
		{"burn-rate", func(s *Spec) {
			s.Windows = []Window{{Name: "a", Window: "1h", BurnRate: 0}}
		}, "windows[0].burnRate"},
		{"duplicate", func(s *Spec) {
			s.Windows = []Window{{Name: "a", Window: "1h", BurnRate: 2}, {Name: "a", Window: "6h", BurnRate: 1}}
		}, "duplicated"},
		{"severity", func(s *Spec) {
			s.Windows = []Window{{Name: "a", Window: "1h", BurnRate: 2, Severity: "sms"}}
		}, "severity must be"},
		{"sweep", func(s *Spec) { s.Sweep = &Sweep{Base: 2} }, "sweep: base"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSpec()
			tc.mutate(&s)
			err := s.Validate()
			if tc.want == "" {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	doc := `apiVersion: burnrate.dev/v1
kind: BurnRateModel
metadata:
  name: demo
slo:
  objective: 99.9
  period: 30d
  target: 99
`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatalf("expected schema error for unknown field")
	}
}

func TestParseRejectsMissingSLO(t *testing.T) {
	doc := `apiVersion: burnrate.dev/v1
kind: BurnRateModel
metadata:
  name: demo
`
	_, err := Parse([]byte(doc))
	if err == nil || !strings.Contains(err.Error(), "schema") {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestParseWindow(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
		ok    bool
	}{
		{"5m", 5 * time.Minute, true},
		{"1h", time.Hour, true},
		{"3d", 72 * time.Hour, true},
		{"4w", 28 * 24 * time.Hour, true},
		{"0h", 0, false},
		{"1.5h", 0, false},
		{"", 0, false},
		{"15250w", 15250 * 7 * 24 * time.Hour, true},
		{"40000w", 0, false},
		{"106752d", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseWindow(tc.input)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseWindow(%q)=%v, %v; want %v", tc.input, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseWindow(%q) expected error", tc.input)
		}
	}
}

func TestFormatWindow(t *testing.T) {
	cases := map[time.Duration]string{
		time.Hour:           "1h",
		90 * time.Minute:    "90m",
		30 * 24 * time.Hour: "30d",
		14 * 24 * time.Hour: "2w",
	}
	for input, want := range cases {
		got, err := FormatWindow(input)
		if err != nil || got != want {
			t.Fatalf("FormatWindow(%v)=%q, %v; want %q", input, got, err, want)
		}
	}
}

func TestSweepOptions(t *testing.T) {
	s := validSpec()
	if opts := s.SweepOptions(); opts.Samples != 1100 || opts.Base != 0.995 {
		t.Fatalf("unexpected defaults %+v", opts)
	}
	s.Sweep = &Sweep{Samples: 50}
	if opts := s.SweepOptions(); opts.Samples != 50 || opts.Base != 0.995 {
		t.Fatalf("unexpected override %+v", opts)
	}
}

func TestParseLabels(t *testing.T) {
	labels, err := ParseLabels("team=payments, env=prod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels["team"] != "payments" || labels["env"] != "prod" {
		t.Fatalf("unexpected labels %v", labels)
	}
	for _, input := range []string{"team", "team=", "Team=a", "team=a,team=b"} {
		if _, err := ParseLabels(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}
