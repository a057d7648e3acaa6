package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ifuryst/postq/internal/config"
	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/internal/service/publisher"
	"github.com/ifuryst/postq/internal/service/queue"
	"github.com/ifuryst/postq/internal/service/validator"
	"github.com/ifuryst/postq/pkg/util"
)

// DispatchResult describes what a dispatch run did
type DispatchResult struct {
	Date   string
	Slot   models.Slot
	Target *models.PostRecord
	DryRun bool
	// Published is set only after a successful publish and save
	Published *publisher.PublishResult
}

// NothingToPost reports that no approved record matched today's slot
func (r *DispatchResult) NothingToPost() bool {
	return r.Target == nil
}

// PublisherService dispatches the approved record for today's slot
type PublisherService struct {
	logger    *zap.Logger
	config    *config.Config
	store     *queue.Store
	validator *validator.Validator
	publisher publisher.Publisher
	now       func() time.Time
}

func NewPublisherService(cfg *config.Config, store *queue.Store, pub publisher.Publisher, logger *zap.Logger) *PublisherService {
	return &PublisherService{
		logger:    logger,
		config:    cfg,
		store:     store,
		validator: validator.New(cfg.Validation),
		publisher: pub,
		now:       time.Now,
	}
}

// PublishSlot publishes the first approved record for today and the slot,
// then marks it posted and saves the queue. A publish error leaves the queue
// untouched and is never retried.
func (s *PublisherService) PublishSlot(ctx context.Context, slot models.Slot, dryRun bool) (*DispatchResult, error) {
	if !slot.Valid() {
		return nil, &models.ArgumentError{Argument: "slot", Message: fmt.Sprintf("must be one of 17, 19, got %q", slot)}
	}

	loc, err := s.config.Schedule.Location()
	if err != nil {
		return nil, &models.ConfigurationError{Field: "schedule.timezone", Message: err.Error()}
	}
	today := s.now().In(loc).Format(models.DateLayout)
	result := &DispatchResult{Date: today, Slot: slot, DryRun: dryRun}

	records, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	idx := queue.FindDispatchTarget(records, today, slot)
	if idx < 0 {
		s.logger.Info("Nothing to post",
			zap.String("date", today),
			zap.String("slot", string(slot)))
		return result, nil
	}
	target := &records[idx]

	if err := s.checkTarget(records, target); err != nil {
		return nil, err
	}

	snapshot := *target
	result.Target = &snapshot

	if dryRun {
		s.logger.Info("Dry run, not publishing",
			zap.String("date", today),
			zap.String("slot", string(slot)),
			zap.String("hook", target.Hook))
		return result, nil
	}

	if err := s.publisher.ValidateConfig(); err != nil {
		return nil, err
	}

	published, err := s.publisher.Publish(ctx, publisher.FromPostRecord(target))
	if err != nil {
		s.logger.Error("Failed to publish",
			zap.String("platform", s.publisher.GetPlatformName()),
			zap.String("date", today),
			zap.String("slot", string(slot)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to publish to %s: %w", s.publisher.GetPlatformName(), err)
	}

	if err := target.MarkPosted(published.PublishID, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(records); err != nil {
		s.logger.Error("Published but failed to save queue",
			zap.String("tweet_id", published.PublishID),
			zap.String("path", s.store.Path()),
			zap.Error(err))
		return nil, fmt.Errorf("published as %s but failed to save queue: %w", published.PublishID, err)
	}

	snapshot = *target
	result.Target = &snapshot
	result.Published = published

	s.logger.Info("Post published",
		zap.String("platform", s.publisher.GetPlatformName()),
		zap.String("date", today),
		zap.String("slot", string(slot)),
		zap.String("tweet_id", published.PublishID),
		zap.String("url", published.URL))

	return result, nil
}

// checkTarget runs the pre-publish gates: length and forbidden words, then the
// recent-history duplicate checks
func (s *PublisherService) checkTarget(records []models.PostRecord, target *models.PostRecord) error {
	if err := s.validator.CheckPublishable(target.Text); err != nil {
		return err
	}

	fingerprint := target.Fingerprint
	if fingerprint == "" {
		fingerprint = util.Fingerprint(target.Text)
	}

	guard := queue.NewGuard(records)
	if guard.FingerprintDuplicate(fingerprint, s.config.Dispatch.FingerprintWindow) {
		return &models.ValidationError{
			Rule:    "duplicate_fingerprint",
			Message: fmt.Sprintf("text matches one of the last %d posts", s.config.Dispatch.FingerprintWindow),
		}
	}

	hook := util.ExtractHook(target.Hook, target.Text)
	if guard.HookDuplicate(hook, s.config.Dispatch.HookWindow) {
		return &models.ValidationError{
			Rule:    "duplicate_hook",
			Message: fmt.Sprintf("hook %q was used in the last %d posts", util.Truncate(hook, 30), s.config.Dispatch.HookWindow),
		}
	}
	return nil
}
