package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/workboard-api/internal/audit"
	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/notify"
	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/phrazzld/workboard-api/internal/report"
	"github.com/phrazzld/workboard-api/internal/sequence"
	"github.com/phrazzld/workboard-api/internal/store"
	"github.com/phrazzld/workboard-api/internal/worker"
)

// CodeIssuer hands out task sequence codes. *sequence.Generator implements it.
type CodeIssuer interface {
	NextCode(ctx context.Context, name string) (string, error)
}

// Notifier delivers notifications. *notify.Dispatcher implements it.
type Notifier interface {
	Dispatch(ctx context.Context, kind notify.Kind, payload any, to notify.Recipient) notify.Outcome
}

// ReportRunner runs the aggregate report on demand. *report.Service implements it.
type ReportRunner interface {
	RunNow(ctx context.Context, recipients []string) (*report.Result, error)
}

// JobQueue accepts background jobs. *worker.Queue implements it.
type JobQueue interface {
	Enqueue(job worker.Job) error
}

// TaskResult is a task together with the audit entry its mutation produced.
// Entry is nil when the mutation changed no tracked field.
type TaskResult struct {
	Task  *domain.Task       `json:"task"`
	Entry *domain.AuditEntry `json:"audit_entry,omitempty"`
}

// LifecycleService exposes the task lifecycle: every mutation is persisted
// with its audit entry, and stakeholders are notified after commit.
type LifecycleService interface {
	// CreateTask issues a sequence code, stores the task and its "created"
	// entry, then notifies the assignee.
	CreateTask(ctx context.Context, in domain.NewTaskInput, actor string) (*TaskResult, error)

	// UpdateTask applies a partial update. When no tracked field changes,
	// nothing is written and the result has no entry.
	UpdateTask(ctx context.Context, id uuid.UUID, patch domain.TaskPatch, actor string) (*TaskResult, error)

	// DeleteTask removes the task and records a "deleted" entry. No
	// notification is sent for deletions.
	DeleteTask(ctx context.Context, id uuid.UUID, actor string) (*domain.AuditEntry, error)

	// GetTask returns a single task.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTasks returns every task, oldest first.
	ListTasks(ctx context.Context) ([]*domain.Task, error)

	// History returns a task's audit trail, most recent first. History
	// survives deletion of the task.
	History(ctx context.Context, id uuid.UUID) ([]*domain.AuditEntry, error)

	// RunReportNow aggregates and sends the report immediately.
	RunReportNow(ctx context.Context, recipients []string) (*report.Result, error)

	// SendTestEmail sends the test notification to addr.
	SendTestEmail(ctx context.Context, addr string) notify.Outcome
}

// LifecycleDeps are the collaborators of the lifecycle service.
type LifecycleDeps struct {
	Tasks      store.TaskStore
	Transactor store.Transactor
	Audit      *audit.Log
	Codes      CodeIssuer
	Directory  store.DirectoryStore
	Notifier   Notifier
	Reports    ReportRunner
	// Queue is optional. When set, notifications are dispatched by the
	// worker pool and the returned entry carries the not-yet-sent state.
	Queue JobQueue
}

func (d LifecycleDeps) validate() error {
	switch {
	case d.Tasks == nil:
		return fmt.Errorf("task store cannot be nil")
	case d.Transactor == nil:
		return fmt.Errorf("transactor cannot be nil")
	case d.Audit == nil:
		return fmt.Errorf("audit log cannot be nil")
	case d.Codes == nil:
		return fmt.Errorf("code issuer cannot be nil")
	case d.Directory == nil:
		return fmt.Errorf("directory store cannot be nil")
	case d.Notifier == nil:
		return fmt.Errorf("notifier cannot be nil")
	case d.Reports == nil:
		return fmt.Errorf("report runner cannot be nil")
	}
	return nil
}

type lifecycleServiceImpl struct {
	LifecycleDeps
	now    func() time.Time
	logger *slog.Logger
}

// NewLifecycleService creates a LifecycleService.
// It validates that all required dependencies are provided.
func NewLifecycleService(deps LifecycleDeps, logger *slog.Logger) (LifecycleService, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &lifecycleServiceImpl{
		LifecycleDeps: deps,
		now:           time.Now,
		logger:        logger.With(slog.String("component", "lifecycle_service")),
	}, nil
}

// CreateTask implements LifecycleService.CreateTask
func (s *lifecycleServiceImpl) CreateTask(
	ctx context.Context,
	in domain.NewTaskInput,
	actor string,
) (*TaskResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// The counter advances outside the task transaction, so a rolled back
	// create leaves a gap in the sequence rather than a reused code.
	code, err := s.Codes.NextCode(ctx, sequence.TaskCounter)
	if err != nil {
		log.Error("failed to issue task code", slog.String("error", err.Error()))
		return nil, NewServiceError("create_task", "failed to issue task code", err)
	}

	task, err := domain.NewTask(code, in)
	if err != nil {
		return nil, NewServiceError("create_task", "invalid task", err)
	}

	var entry *domain.AuditEntry
	err = s.Transactor.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		if err := repos.Tasks.Create(ctx, task); err != nil {
			return NewServiceError("create_task", "failed to save task", err)
		}
		entry, err = s.Audit.WithStore(repos.Audit).RecordCreate(ctx, task, actor)
		if err != nil {
			return NewServiceError("create_task", "failed to record audit entry", err)
		}
		return nil
	})
	if err != nil {
		log.Error("task creation rolled back",
			slog.String("error", err.Error()),
			slog.String("code", code))
		return nil, err
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("code", task.Code),
		slog.String("actor", entry.Actor))

	s.notify(ctx, notify.KindTaskCreated,
		notify.TaskPayload{Task: task, Actor: entry.Actor},
		task.Assignee, entry)
	return &TaskResult{Task: task, Entry: entry}, nil
}

// UpdateTask implements LifecycleService.UpdateTask
func (s *lifecycleServiceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	patch domain.TaskPatch,
	actor string,
) (*TaskResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	var (
		task  *domain.Task
		entry *domain.AuditEntry
	)
	err := s.Transactor.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		current, err := repos.Tasks.GetByIDForUpdate(ctx, id)
		if err != nil {
			return NewServiceError("update_task", "failed to load task", err)
		}

		changes := audit.Diff(current.Snapshot(), patch.Snapshot(), domain.TrackedFields)
		if len(changes) == 0 {
			task = current
			return nil
		}

		next := *current
		if err := next.Apply(patch); err != nil {
			return NewServiceError("update_task", "invalid update", err)
		}
		if err := repos.Tasks.Update(ctx, &next); err != nil {
			return NewServiceError("update_task", "failed to save task", err)
		}
		entry, err = s.Audit.WithStore(repos.Audit).RecordChange(ctx, next.ID, changes, actor)
		if err != nil {
			return NewServiceError("update_task", "failed to record audit entry", err)
		}
		task = &next
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrTaskNotFound) {
			log.Error("task update rolled back",
				slog.String("error", err.Error()),
				slog.String("task_id", id.String()))
		}
		return nil, err
	}

	if entry == nil {
		log.Debug("update changed no tracked field", slog.String("task_id", id.String()))
		return &TaskResult{Task: task}, nil
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("code", task.Code),
		slog.String("action", string(entry.Action)),
		slog.Any("fields", entry.Changes.Fields()))

	s.notify(ctx, notify.KindTaskUpdated,
		notify.TaskPayload{Task: task, Actor: entry.Actor, Changes: entry.Changes},
		task.Assignee, entry)
	return &TaskResult{Task: task, Entry: entry}, nil
}

// DeleteTask implements LifecycleService.DeleteTask
func (s *lifecycleServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID, actor string) (*domain.AuditEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var entry *domain.AuditEntry
	err := s.Transactor.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		if _, err := repos.Tasks.GetByIDForUpdate(ctx, id); err != nil {
			return NewServiceError("delete_task", "failed to load task", err)
		}
		if err := repos.Tasks.Delete(ctx, id); err != nil {
			return NewServiceError("delete_task", "failed to delete task", err)
		}
		var err error
		entry, err = s.Audit.WithStore(repos.Audit).RecordDelete(ctx, id, actor)
		if err != nil {
			return NewServiceError("delete_task", "failed to record audit entry", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrTaskNotFound) {
			log.Error("task deletion rolled back",
				slog.String("error", err.Error()),
				slog.String("task_id", id.String()))
		}
		return nil, err
	}

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("actor", entry.Actor))
	return entry, nil
}

// GetTask implements LifecycleService.GetTask
func (s *lifecycleServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.Tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// ListTasks implements LifecycleService.ListTasks
func (s *lifecycleServiceImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.Tasks.List(ctx)
	if err != nil {
		return nil, NewServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// History implements LifecycleService.History
// A task with no entries that does not exist is reported as not found.
func (s *lifecycleServiceImpl) History(ctx context.Context, id uuid.UUID) ([]*domain.AuditEntry, error) {
	entries, err := s.Audit.History(ctx, id)
	if err != nil {
		return nil, NewServiceError("task_history", "failed to load history", err)
	}
	if len(entries) == 0 {
		if _, err := s.Tasks.GetByID(ctx, id); err != nil {
			return nil, NewServiceError("task_history", "failed to retrieve task", err)
		}
	}
	return entries, nil
}

// RunReportNow implements LifecycleService.RunReportNow
func (s *lifecycleServiceImpl) RunReportNow(ctx context.Context, recipients []string) (*report.Result, error) {
	result, err := s.Reports.RunNow(ctx, recipients)
	if err != nil {
		return nil, NewServiceError("run_report", "failed to run report", err)
	}
	return result, nil
}

// SendTestEmail implements LifecycleService.SendTestEmail
func (s *lifecycleServiceImpl) SendTestEmail(ctx context.Context, addr string) notify.Outcome {
	return s.Notifier.Dispatch(ctx, notify.KindTest,
		notify.TestPayload{SentAt: s.now()}, notify.ToAddress(addr))
}

// notify dispatches a task notification to assignee and attaches the outcome
// to entry. With a queue configured the work is handed to the worker pool,
// falling back to an inline dispatch when the queue refuses the job.
func (s *lifecycleServiceImpl) notify(
	ctx context.Context,
	kind notify.Kind,
	payload notify.TaskPayload,
	assignee string,
	entry *domain.AuditEntry,
) {
	to := notify.ToAssignee(s.Directory, assignee)

	if s.Queue != nil {
		// The caller gets entry back; the job owns a copy.
		pending := *entry
		job := worker.Func{
			JobName: fmt.Sprintf("%s:%s", kind, payload.Task.Code),
			Fn: func(jobCtx context.Context) error {
				return s.deliver(jobCtx, kind, payload, to, &pending)
			},
		}
		err := s.Queue.Enqueue(job)
		if err == nil {
			return
		}
		logger.FromContextOrDefault(ctx, s.logger).Warn("notification queue refused job, dispatching inline",
			slog.String("error", err.Error()),
			slog.String("job", job.Name()))
	}

	_ = s.deliver(ctx, kind, payload, to, entry)
}

func (s *lifecycleServiceImpl) deliver(
	ctx context.Context,
	kind notify.Kind,
	payload notify.TaskPayload,
	to notify.Recipient,
	entry *domain.AuditEntry,
) error {
	out := s.Notifier.Dispatch(ctx, kind, payload, to)
	if err := s.Audit.AttachDeliveryOutcome(ctx, entry, out.Sent, out.Target); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to attach delivery outcome",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()),
			slog.Bool("sent", out.Sent))
		return err
	}
	return nil
}
