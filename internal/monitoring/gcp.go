package monitoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/fieldmaskpb"
)

var ErrSLONotFound = errors.New("slo not found")

type GCPClient struct {
	serviceClient *monitoring.ServiceMonitoringClient
	alertClient   *monitoring.AlertPolicyClient
}

func NewGCPClient(ctx context.Context) (*GCPClient, error) {
	serviceClient, err := monitoring.NewServiceMonitoringClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create service monitoring client: %w", err)
	}
	alertClient, err := monitoring.NewAlertPolicyClient(ctx)
	if err != nil {
		serviceClient.Close()
		return nil, fmt.Errorf("create alert policy client: %w", err)
	}

	return &GCPClient{
		serviceClient: serviceClient,
		alertClient:   alertClient,
	}, nil
}

func (c *GCPClient) Close() error {
	var errs []string
	if err := c.serviceClient.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.alertClient.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("close clients: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *GCPClient) GetSLO(ctx context.Context, name string) (*monitoringpb.ServiceLevelObjective, error) {
	slo, err := c.serviceClient.GetServiceLevelObjective(ctx, &monitoringpb.GetServiceLevelObjectiveRequest{Name: name})
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: %s", ErrSLONotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return slo, nil
}

// ListBurnRatePolicies returns every policy in the project with at least one
// select_slo_burn_rate condition on sloRef.
func (c *GCPClient) ListBurnRatePolicies(ctx context.Context, project, sloRef string) ([]*monitoringpb.AlertPolicy, error) {
	iter := c.alertClient.ListAlertPolicies(ctx, &monitoringpb.ListAlertPoliciesRequest{Name: fmt.Sprintf("projects/%s", project)})
	var out []*monitoringpb.AlertPolicy
	for {
		policy, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if ReferencesSLO(policy, sloRef) {
			out = append(out, policy)
		}
	}
}

func (c *GCPClient) ApplyAlert(ctx context.Context, req ApplyAlertRequest) (ApplyAction, error) {
	policy, err := BuildAlertPolicy(req.SLORef, req.Alert)
	if err != nil {
		return "", err
	}

	existing, err := c.findAlertPolicy(ctx, req.Project, req.Alert.DisplayName)
	if err != nil {
		return "", err
	}
	if existing != nil {
		policy.Name = existing.Name
		_, err = c.alertClient.UpdateAlertPolicy(ctx, &monitoringpb.UpdateAlertPolicyRequest{
			AlertPolicy: policy,
			UpdateMask: &fieldmaskpb.FieldMask{Paths: []string{
				"display_name",
				"documentation",
				"conditions",
				"combiner",
				"user_labels",
				"enabled",
				"severity",
			}},
		})
		if err != nil {
			return "", err
		}
		return ActionUpdated, nil
	}

	_, err = c.alertClient.CreateAlertPolicy(ctx, &monitoringpb.CreateAlertPolicyRequest{
		Name:        fmt.Sprintf("projects/%s", req.Project),
		AlertPolicy: policy,
	})
	if err != nil {
		return "", err
	}
	return ActionCreated, nil
}

// DeleteManagedAlerts removes policies carrying every label in req.Labels
// whose display name is not in req.Keep.
func (c *GCPClient) DeleteManagedAlerts(ctx context.Context, req DeleteRequest) ([]string, error) {
	iter := c.alertClient.ListAlertPolicies(ctx, &monitoringpb.ListAlertPoliciesRequest{Name: fmt.Sprintf("projects/%s", req.Project)})
	var deleted []string
	for {
		policy, err := iter.Next()
		if err == iterator.Done {
			return deleted, nil
		}
		if err != nil {
			return deleted, err
		}
		if !hasManagedLabel(policy.UserLabels, req.Labels) || req.Keep[policy.DisplayName] {
			continue
		}
		if err := c.alertClient.DeleteAlertPolicy(ctx, &monitoringpb.DeleteAlertPolicyRequest{Name: policy.Name}); err != nil {
			return deleted, err
		}
		deleted = append(deleted, policy.DisplayName)
	}
}

func (c *GCPClient) findAlertPolicy(ctx context.Context, project, displayName string) (*monitoringpb.AlertPolicy, error) {
	iter := c.alertClient.ListAlertPolicies(ctx, &monitoringpb.ListAlertPoliciesRequest{Name: fmt.Sprintf("projects/%s", project)})
	for {
		policy, err := iter.Next()
		if err == iterator.Done {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if policy.DisplayName == displayName {
			return policy, nil
		}
	}
}
