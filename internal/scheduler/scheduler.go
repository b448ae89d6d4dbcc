package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/config"
	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/pkg/clients/whatsapp"
)

// Reporter produces the figures sent every week.
type Reporter interface {
	WeeklySummary(ctx context.Context, now time.Time) (string, error)
	Dashboard(ctx context.Context, year int) (models.Dashboard, error)
}

// Publisher writes figures to a spreadsheet.
type Publisher interface {
	PublishStock(ctx context.Context, report models.StockReport) error
	AppendSummary(ctx context.Context, date string, d models.Dashboard) error
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithMessenger delivers the weekly summary to recipient.
func WithMessenger(client whatsapp.Client, recipient string) Option {
	return func(s *Scheduler) {
		s.messenger = client
		s.recipient = recipient
	}
}

// WithPublisher mirrors the stock and headline figures to a spreadsheet.
func WithPublisher(p Publisher) Option {
	return func(s *Scheduler) { s.publisher = p }
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	location  *time.Location
	reporter  Reporter
	messenger whatsapp.Client
	recipient string
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a scheduler running the weekly report on cfg's
// schedule, in cfg's timezone.
func NewScheduler(cfg config.ReportingConfig, reporter Reporter, logger *zap.Logger, opts ...Option) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		location: loc,
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.schedule, s.sendWeeklyReport); err != nil {
		return fmt.Errorf("schedule weekly report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendWeeklyReport() {
	s.logger.Info("generating weekly report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunWeeklyReport(ctx); err != nil {
		s.logger.Error("weekly report failed", zap.Error(err))
		return
	}
	s.logger.Info("weekly report done")
}

// RunWeeklyReport builds the summary and hands it to every configured output.
// Each output is attempted even when another one fails.
func (s *Scheduler) RunWeeklyReport(ctx context.Context) error {
	now := s.now().In(s.location)

	summary, err := s.reporter.WeeklySummary(ctx, now)
	if err != nil {
		return fmt.Errorf("build weekly summary: %w", err)
	}

	var errs []error

	if s.messenger != nil {
		req := whatsapp.SendTextMessageRequest{To: s.recipient, Body: summary}
		if _, err := s.messenger.SendTextMessage(ctx, req); err != nil {
			errs = append(errs, fmt.Errorf("send weekly summary: %w", err))
		} else {
			s.logger.Info("weekly summary sent", zap.String("to", s.recipient))
		}
	}

	if s.publisher != nil {
		if err := s.publish(ctx, now); err != nil {
			errs = append(errs, err)
		}
	}

	if s.messenger == nil && s.publisher == nil {
		s.logger.Info("weekly summary", zap.String("text", summary))
	}

	return errors.Join(errs...)
}

func (s *Scheduler) publish(ctx context.Context, now time.Time) error {
	dashboard, err := s.reporter.Dashboard(ctx, now.Year())
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}
	if err := s.publisher.PublishStock(ctx, dashboard.Stock); err != nil {
		return err
	}
	return s.publisher.AppendSummary(ctx, now.Format(models.DateLayout), dashboard)
}
