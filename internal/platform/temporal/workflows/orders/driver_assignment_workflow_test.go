package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	ordermemory "github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/fulfillment-api/internal/domains/orders/application/types"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/fulfillment-api/internal/platform/temporal/activities/orders"
)

var admin = domain.Actor{ID: "admin-1", Roles: domain.Roles{domain.RoleAdmin}}

type DriverAssignmentSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env     *testsuite.TestWorkflowEnvironment
	service *application.Service
	order   *ordertypes.OrderProjection
}

func TestDriverAssignmentSuite(t *testing.T) {
	suite.Run(t, new(DriverAssignmentSuite))
}

func (s *DriverAssignmentSuite) SetupTest() {
	ctx := context.Background()
	repo := ordermemory.NewRepository()
	drivers := ordermemory.NewDriverDirectory()
	s.service = application.NewService(repo, repo, drivers)

	_, err := s.service.RegisterDriver(ctx, ordertypes.RegisterDriverInput{ID: "drv-1", Name: "Somchai", Active: true, Actor: admin})
	s.Require().NoError(err)
	_, err = s.service.RegisterDriver(ctx, ordertypes.RegisterDriverInput{ID: "drv-idle", Name: "Anan", Active: false, Actor: admin})
	s.Require().NoError(err)

	s.order, err = s.service.PlaceOrder(ctx, ordertypes.PlaceOrderInput{
		CustomerID: "cust-1",
		Items:      []domain.LineItem{{Name: "Khao Soi", Quantity: 1, UnitPrice: 1400}},
		Total:      1400,
	})
	s.Require().NoError(err)

	s.env = s.NewTestWorkflowEnvironment()
	acts := orderactivities.NewActivities(s.service, drivers)
	s.env.RegisterWorkflowWithOptions(DriverAssignmentWorkflow, workflowOptions())
	s.env.RegisterActivityWithOptions(acts.VerifyDriver, activity.RegisterOptions{Name: orderactivities.VerifyDriverActivityName})
	s.env.RegisterActivityWithOptions(acts.AssignDriver, activity.RegisterOptions{Name: orderactivities.AssignDriverActivityName})
}

func (s *DriverAssignmentSuite) moveTo(status domain.Status) {
	_, err := s.service.UpdateStatus(context.Background(), ordertypes.UpdateStatusInput{
		OrderID: s.order.Entity.ID,
		Status:  string(status),
		Actor:   admin,
	})
	s.Require().NoError(err)
}

func (s *DriverAssignmentSuite) run(driverID string) {
	s.env.ExecuteWorkflow(DriverAssignmentWorkflow, DriverAssignmentWorkflowInput{
		Command: ordertypes.AssignDriverInput{OrderID: s.order.Entity.ID, DriverID: driverID, Actor: admin},
		TraceID: "trace-1",
	})
	s.Require().True(s.env.IsWorkflowCompleted())
}

func (s *DriverAssignmentSuite) errorType() string {
	err := s.env.GetWorkflowError()
	s.Require().Error(err)
	var appErr *temporal.ApplicationError
	s.Require().True(errors.As(err, &appErr))
	return appErr.Type()
}

func (s *DriverAssignmentSuite) TestDispatchesReadyOrder() {
	s.moveTo(domain.StatusPreparing)
	s.moveTo(domain.StatusReady)

	s.run("drv-1")

	s.Require().NoError(s.env.GetWorkflowError())
	var projection ordertypes.OrderProjection
	s.Require().NoError(s.env.GetWorkflowResult(&projection))
	s.Equal(domain.StatusOutForDelivery, projection.Entity.Status)
	s.Equal("drv-1", projection.Entity.DriverID)
	s.NotNil(projection.Entity.Milestones.PickedUpAt)
}

func (s *DriverAssignmentSuite) TestUnknownDriverIsNotFound() {
	s.moveTo(domain.StatusPreparing)
	s.moveTo(domain.StatusReady)

	s.run("ghost")

	s.Equal(string(application.KindNotFound), s.errorType())
}

func (s *DriverAssignmentSuite) TestInactiveDriverIsConflict() {
	s.moveTo(domain.StatusPreparing)
	s.moveTo(domain.StatusReady)

	s.run("drv-idle")

	s.Equal(string(application.KindConflict), s.errorType())
}

func (s *DriverAssignmentSuite) TestNotReadyOrderIsConflictAndUnchanged() {
	s.run("drv-1")

	s.Equal(string(application.KindConflict), s.errorType())
	details, err := s.service.GetOrder(context.Background(), ordertypes.OrderIdentifier{ID: s.order.Entity.ID})
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, details.Order.Entity.Status)
	s.Len(details.Tracking, 1)
}

func TestDriverAssignmentWorkflow_AssignAttemptedOnce(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(DriverAssignmentWorkflow, workflowOptions())

	calls := 0
	env.RegisterActivityWithOptions(func(ctx context.Context, input orderactivities.VerifyDriverInput) (*domain.Driver, error) {
		return &domain.Driver{ID: input.DriverID, Name: "Somchai", Active: true}, nil
	}, activity.RegisterOptions{Name: orderactivities.VerifyDriverActivityName})
	env.RegisterActivityWithOptions(func(ctx context.Context, input ordertypes.AssignDriverInput) (*ordertypes.OrderProjection, error) {
		calls++
		return nil, errors.New("store unavailable")
	}, activity.RegisterOptions{Name: orderactivities.AssignDriverActivityName})

	env.ExecuteWorkflow(DriverAssignmentWorkflow, DriverAssignmentWorkflowInput{
		Command: ordertypes.AssignDriverInput{OrderID: "ord-1", DriverID: "drv-1", Actor: admin},
	})

	require.True(t, env.IsWorkflowCompleted())
	assert.Error(t, env.GetWorkflowError())
	assert.Equal(t, 1, calls)
}

func workflowOptions() workflow.RegisterOptions {
	return workflow.RegisterOptions{Name: DriverAssignmentWorkflowName}
}
