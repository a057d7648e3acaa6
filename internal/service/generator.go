package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ifuryst/postq/internal/config"
	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/internal/service/content"
	"github.com/ifuryst/postq/internal/service/queue"
	"github.com/ifuryst/postq/pkg/util"
)

// GenerateOptions controls one generation run
type GenerateOptions struct {
	// Start is the first date (YYYY-MM-DD); empty means today in the schedule timezone
	Start string
	// Days is the number of consecutive days; zero means the configured default
	Days int
	// Seed makes the run reproducible when set
	Seed *int64
	// Append keeps the existing queue and skips (date, slot) pairs already pending
	Append bool
}

// GenerateResult summarizes a generation run
type GenerateResult struct {
	Generated []models.PostRecord
	Skipped   int
	Total     int
}

// GeneratorService fills the queue with drafts composed from templates and the lexicon
type GeneratorService struct {
	logger *zap.Logger
	config *config.Config
	store  *queue.Store
	now    func() time.Time
}

func NewGeneratorService(cfg *config.Config, store *queue.Store, logger *zap.Logger) *GeneratorService {
	return &GeneratorService{
		logger: logger,
		config: cfg,
		store:  store,
		now:    time.Now,
	}
}

// Generate composes drafts for every day and slot in the range and saves the
// queue. Without Append the existing queue is replaced.
func (s *GeneratorService) Generate(opts GenerateOptions) (*GenerateResult, error) {
	start, days, err := s.resolveRange(opts)
	if err != nil {
		return nil, err
	}

	templates, err := content.LoadTemplates(s.config.Paths.Templates)
	if err != nil {
		return nil, err
	}
	lexicon, err := content.LoadLexicon(s.config.Paths.Lexicon)
	if err != nil {
		return nil, err
	}

	var existing []models.PostRecord
	if opts.Append {
		existing, err = s.store.Load()
		if err != nil {
			return nil, err
		}
	}

	usedHooks := make(map[string]struct{})
	for i := range existing {
		if existing[i].Hook != "" {
			usedHooks[util.NormalizeText(existing[i].Hook)] = struct{}{}
		}
	}
	pending := queue.NewPendingSlots(existing)

	composer := content.NewComposer(templates, lexicon, content.NewRand(opts.Seed), s.config.Validation.MaxTextLength)

	result := &GenerateResult{}
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d).Format(models.DateLayout)
		for _, slot := range models.Slots {
			if pending.Has(date, slot) {
				s.logger.Debug("Slot already pending, skipping",
					zap.String("date", date),
					zap.String("slot", string(slot)))
				result.Skipped++
				continue
			}

			rec := composer.Compose(date, slot, usedHooks)
			if rec == nil {
				s.logger.Warn("No draft composed for slot",
					zap.String("date", date),
					zap.String("slot", string(slot)))
				result.Skipped++
				continue
			}

			pending.Add(date, slot)
			result.Generated = append(result.Generated, *rec)
			s.logger.Debug("Draft composed",
				zap.String("date", date),
				zap.String("slot", string(slot)),
				zap.String("pillar", rec.Pillar),
				zap.String("format", rec.Format))
		}
	}

	records := append(existing, result.Generated...)
	if err := s.store.Save(records); err != nil {
		return nil, err
	}
	result.Total = len(records)

	s.logger.Info("Queue generated",
		zap.String("path", s.store.Path()),
		zap.Int("generated", len(result.Generated)),
		zap.Int("skipped", result.Skipped),
		zap.Int("total", result.Total),
		zap.Bool("append", opts.Append))

	return result, nil
}

func (s *GeneratorService) resolveRange(opts GenerateOptions) (time.Time, int, error) {
	days := opts.Days
	if days == 0 {
		days = s.config.Schedule.Days
	}
	if days < 0 {
		return time.Time{}, 0, &models.ArgumentError{Argument: "days", Message: fmt.Sprintf("must not be negative, got %d", days)}
	}

	if opts.Start != "" {
		start, err := time.Parse(models.DateLayout, opts.Start)
		if err != nil {
			return time.Time{}, 0, &models.ArgumentError{Argument: "start", Message: "expected YYYY-MM-DD, got " + opts.Start}
		}
		return start, days, nil
	}

	loc, err := s.config.Schedule.Location()
	if err != nil {
		return time.Time{}, 0, &models.ConfigurationError{Field: "schedule.timezone", Message: err.Error()}
	}
	today := s.now().In(loc)
	return time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC), days, nil
}
