package monitoring

import (
	"context"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/bayneri/burnrate/internal/planner"
)

type Client interface {
	ApplyAlert(ctx context.Context, req ApplyAlertRequest) (ApplyAction, error)
	// DeleteManagedAlerts returns the display names of the removed policies.
	DeleteManagedAlerts(ctx context.Context, req DeleteRequest) ([]string, error)
}

// ApplyAction says what ApplyAlert did to the policy.
type ApplyAction string

const (
	ActionCreated ApplyAction = "created"
	ActionUpdated ApplyAction = "updated"
)

// SLOSource is the read side used by import.
type SLOSource interface {
	GetSLO(ctx context.Context, name string) (*monitoringpb.ServiceLevelObjective, error)
	ListBurnRatePolicies(ctx context.Context, project, sloRef string) ([]*monitoringpb.AlertPolicy, error)
}

type ApplyAlertRequest struct {
	Project string
	SLORef  string
	Alert   planner.AlertPlan
}

type DeleteRequest struct {
	Project string
	Labels  map[string]string
	Keep    map[string]bool
}
