package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/repository"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/metrics"
	"github.com/velronatechnologies/Ticpin-website-sub002/templates"
)

const (
	// reminderCooldown suppresses a second reminder on the same channel within one daily run cycle
	reminderCooldown = 20 * time.Hour
	reminderTimeout  = 5 * time.Minute
)

// ReminderReport summarises one reminder run
type ReminderReport struct {
	RunID    string `json:"runId"`
	Scanned  int    `json:"scanned"`
	Notified int    `json:"notified"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// ReminderJob notifies holders of active passes that are about to expire
type ReminderJob struct {
	passRepo  repository.PassRepository
	eventRepo repository.PassEventRepository
	notifiers []repository.Notifier
	metrics   *metrics.Metrics
	logger    logger.Logger
	window    time.Duration
	now       func() time.Time
}

// NewReminderJob creates a reminder job scanning windowDays ahead
func NewReminderJob(
	passRepo repository.PassRepository,
	eventRepo repository.PassEventRepository,
	notifiers []repository.Notifier,
	windowDays int,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ReminderJob {
	if windowDays <= 0 {
		windowDays = entity.RenewalReminderDays
	}

	return &ReminderJob{
		passRepo:  passRepo,
		eventRepo: eventRepo,
		notifiers: notifiers,
		metrics:   metrics,
		logger:    logger,
		window:    time.Duration(windowDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// SetClock replaces the time source
func (j *ReminderJob) SetClock(now func() time.Time) {
	j.now = now
}

// Run sends reminders for every stored-active pass expiring within the window, unless the holder
// already has a later active pass. A failing pass or notifier never stops the run; only the scan
// itself returns an error.
func (j *ReminderJob) Run(ctx context.Context) (ReminderReport, error) {
	start := time.Now()
	defer func() {
		j.metrics.OperationTime.WithLabelValues("pass_reminders").Observe(time.Since(start).Seconds())
	}()

	report := ReminderReport{RunID: uuid.NewString()}
	log := j.logger.With("runId", report.RunID)

	if len(j.notifiers) == 0 {
		log.Warn("No reminder channels configured, skipping run")
		return report, nil
	}

	now := j.now()
	passes, err := j.passRepo.FindActiveExpiringBetween(ctx, now, now.Add(j.window))
	if err != nil {
		j.metrics.ErrorsCount.WithLabelValues("pass_reminders").Inc()
		log.Error("Failed to scan expiring passes", "error", err)
		return report, fmt.Errorf("failed to scan expiring passes: %w", err)
	}

	report.Scanned = len(passes)
	log.Info("Processing pass reminders", "count", len(passes))

	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if !pass.IsActiveAt(now) {
			report.Skipped++
			continue
		}

		renewal, err := j.laterActivePass(ctx, pass, now)
		if err != nil {
			log.Warn("Failed to resolve pass holder", "passId", pass.ID, "error", err)
			report.Failed++
			continue
		}
		if renewal != nil {
			log.Debug("Pass already renewed", "passId", pass.ID, "renewedPassId", renewal.ID)
			report.Skipped++
			continue
		}

		switch j.notify(ctx, log, pass, now) {
		case reminderSent:
			report.Notified++
		case reminderFailed:
			report.Failed++
		default:
			report.Skipped++
		}
	}

	log.Info("Pass reminders finished",
		"scanned", report.Scanned,
		"notified", report.Notified,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", time.Since(start).String())

	return report, nil
}

// RunScheduled runs the job with its own deadline, for cron triggers
func (j *ReminderJob) RunScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
	defer cancel()

	if _, err := j.Run(ctx); err != nil {
		j.logger.Warn("Scheduled pass reminders failed", "error", err)
	}
}

type reminderOutcome int

const (
	reminderSkipped reminderOutcome = iota
	reminderSent
	reminderFailed
)

func (j *ReminderJob) notify(ctx context.Context, log logger.Logger, pass *entity.PassRecord, now time.Time) reminderOutcome {
	reminder := templates.RenderPassReminder(pass, PassRemainingDays(pass.ExpiryDate, now))
	reminded := j.recentChannels(ctx, pass.ID, now)

	outcome := reminderSkipped
	for _, notifier := range j.notifiers {
		if !notifier.CanNotify(reminder) {
			continue
		}

		channel := notifier.Channel()
		if _, ok := reminded[channel]; ok {
			log.Debug("Pass reminded recently", "passId", pass.ID, "channel", channel)
			continue
		}

		if err := notifier.Send(ctx, reminder); err != nil {
			j.metrics.RemindersSent.WithLabelValues(string(channel), "failed").Inc()
			log.Error("Failed to send pass reminder", "passId", pass.ID, "channel", channel, "error", err)
			if outcome == reminderSkipped {
				outcome = reminderFailed
			}
			continue
		}

		j.metrics.RemindersSent.WithLabelValues(string(channel), "sent").Inc()
		outcome = reminderSent

		event := &entity.PassEvent{
			PassID:    pass.ID,
			EventType: entity.PassEventReminderSent,
			Email:     pass.Email,
			Phone:     pass.Phone,
			Channel:   channel,
			Detail:    fmt.Sprintf("remainingDays=%d", reminder.RemainingDays),
		}
		if err := j.eventRepo.Record(ctx, event); err != nil {
			log.Warn("Failed to record reminder event", "passId", pass.ID, "error", err)
		}
	}

	return outcome
}

// laterActivePass returns an active pass of the same holder expiring after pass, nil when there is none
func (j *ReminderJob) laterActivePass(ctx context.Context, pass *entity.PassRecord, now time.Time) (*entity.PassRecord, error) {
	email, phone := normalizeIdentity(pass.Email, pass.Phone)
	candidates, err := findCandidates(ctx, j.passRepo, email, phone)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		if candidate.ID != pass.ID && candidate.IsActiveAt(now) && candidate.ExpiryDate.After(pass.ExpiryDate) {
			return candidate, nil
		}
	}
	return nil, nil
}

// recentChannels lists the channels that delivered a reminder for passID within the cooldown
func (j *ReminderJob) recentChannels(ctx context.Context, passID string, now time.Time) map[entity.NotificationChannel]struct{} {
	reminded := make(map[entity.NotificationChannel]struct{})

	events, err := j.eventRepo.ListByPass(ctx, passID)
	if err != nil {
		j.logger.Warn("Failed to read pass events", "passId", passID, "error", err)
		return reminded
	}

	for _, event := range events {
		if event.EventType == entity.PassEventReminderSent && now.Sub(event.CreatedAt) < reminderCooldown {
			reminded[event.Channel] = struct{}{}
		}
	}
	return reminded
}
