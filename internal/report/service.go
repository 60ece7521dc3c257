package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/notify"
	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/phrazzld/workboard-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// Dispatcher sends a single notification. *notify.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind notify.Kind, payload any, to notify.Recipient) notify.Outcome
}

// TaskLister reads the full task set.
type TaskLister interface {
	List(ctx context.Context) ([]*domain.Task, error)
}

// Options configures who receives the scheduled report.
type Options struct {
	// Recipient is the single configured report address.
	Recipient string
	// SendToAll sends to every directory entry instead of Recipient.
	SendToAll bool
	// Location is the time zone report days are computed in.
	Location *time.Location
	// Concurrency bounds parallel deliveries. Values below 1 mean 1.
	Concurrency int
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Delivery is the outcome of sending the report to one recipient.
type Delivery struct {
	Recipient string         `json:"recipient"`
	Outcome   notify.Outcome `json:"outcome"`
}

// Result describes one report run.
type Result struct {
	Snapshot    domain.ReportSnapshot `json:"snapshot"`
	Fingerprint string                `json:"fingerprint"`
	Deliveries  []Delivery            `json:"deliveries"`
}

// Sent returns the number of successful deliveries.
func (r *Result) Sent() int {
	n := 0
	for _, d := range r.Deliveries {
		if d.Outcome.Sent {
			n++
		}
	}
	return n
}

// Service aggregates the task set and dispatches the daily report.
type Service struct {
	tasks      TaskLister
	directory  store.DirectoryStore
	dispatcher Dispatcher
	opts       Options
	logger     *slog.Logger
}

// NewService creates a report Service.
func NewService(
	tasks TaskLister,
	directory store.DirectoryStore,
	dispatcher Dispatcher,
	opts Options,
	logger *slog.Logger,
) (*Service, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task lister cannot be nil")
	}
	if directory == nil {
		return nil, fmt.Errorf("directory store cannot be nil")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tasks:      tasks,
		directory:  directory,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     logger.With(slog.String("component", "report_service")),
	}, nil
}

// SendDaily sends the report to the configured recipients: every directory
// entry when SendToAll is set, otherwise the single Recipient.
func (s *Service) SendDaily(ctx context.Context) (*Result, error) {
	recipients, err := s.configuredRecipients(ctx)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, recipients)
}

// RunNow sends the report immediately to the given addresses, or to the
// configured recipients when none are given.
func (s *Service) RunNow(ctx context.Context, recipients []string) (*Result, error) {
	cleaned := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) == 0 {
		return s.SendDaily(ctx)
	}
	return s.send(ctx, cleaned)
}

func (s *Service) configuredRecipients(ctx context.Context) ([]string, error) {
	if !s.opts.SendToAll {
		if s.opts.Recipient == "" {
			return nil, nil
		}
		return []string{s.opts.Recipient}, nil
	}

	entries, err := s.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list report recipients: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Email)
	}
	return out, nil
}

func (s *Service) send(ctx context.Context, recipients []string) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks for report: %w", err)
	}
	snap := Aggregate(tasks, s.opts.Now().In(s.opts.Location))
	result := &Result{
		Snapshot:    snap,
		Fingerprint: fmt.Sprintf("%016x", snap.Fingerprint()),
		Deliveries:  make([]Delivery, len(recipients)),
	}

	if len(recipients) == 0 {
		log.Warn("no report recipients configured, report not sent",
			slog.String("report_ref", result.Fingerprint))
		return result, nil
	}

	payload := notify.ReportPayload{Report: snap}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, addr := range recipients {
		i, addr := i, addr
		g.Go(func() error {
			out := s.dispatcher.Dispatch(gctx, notify.KindDailyReport, payload, notify.ToAddress(addr))
			result.Deliveries[i] = Delivery{Recipient: addr, Outcome: out}
			return nil
		})
	}
	// Dispatch never fails, so neither does the group.
	_ = g.Wait()

	log.Info("daily report dispatched",
		slog.String("report_ref", result.Fingerprint),
		slog.Int("total_tasks", snap.Total),
		slog.Int("recipients", len(recipients)),
		slog.Int("sent", result.Sent()))
	return result, nil
}
