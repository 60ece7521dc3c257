package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/notify"
	"github.com/phrazzld/workboard-api/internal/report"
	"github.com/phrazzld/workboard-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockLifecycleService mocks service.LifecycleService
type MockLifecycleService struct {
	mock.Mock
}

var _ service.LifecycleService = (*MockLifecycleService)(nil)

func (m *MockLifecycleService) CreateTask(
	ctx context.Context,
	in domain.NewTaskInput,
	actor string,
) (*service.TaskResult, error) {
	args := m.Called(ctx, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TaskResult), args.Error(1)
}

func (m *MockLifecycleService) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	patch domain.TaskPatch,
	actor string,
) (*service.TaskResult, error) {
	args := m.Called(ctx, id, patch, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TaskResult), args.Error(1)
}

func (m *MockLifecycleService) DeleteTask(ctx context.Context, id uuid.UUID, actor string) (*domain.AuditEntry, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditEntry), args.Error(1)
}

func (m *MockLifecycleService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockLifecycleService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockLifecycleService) History(ctx context.Context, id uuid.UUID) ([]*domain.AuditEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditEntry), args.Error(1)
}

func (m *MockLifecycleService) RunReportNow(ctx context.Context, recipients []string) (*report.Result, error) {
	args := m.Called(ctx, recipients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Result), args.Error(1)
}

func (m *MockLifecycleService) SendTestEmail(ctx context.Context, addr string) notify.Outcome {
	args := m.Called(ctx, addr)
	return args.Get(0).(notify.Outcome)
}
