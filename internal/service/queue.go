package service

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/internal/service/queue"
	"github.com/ifuryst/postq/internal/service/validator"
)

// QueueFilter narrows a listing; empty fields match everything
type QueueFilter struct {
	Status models.Status
	Date   string
}

// QueueStats counts records by status and slot
type QueueStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	BySlot   map[string]int `json:"by_slot"`
	// NextScheduled is the earliest pending date, empty when nothing is pending
	NextScheduled string `json:"next_scheduled,omitempty"`
}

// QueueService offers read-only views of the queue
type QueueService struct {
	logger    *zap.Logger
	store     *queue.Store
	validator *validator.Validator
}

func NewQueueService(store *queue.Store, v *validator.Validator, logger *zap.Logger) *QueueService {
	return &QueueService{
		logger:    logger,
		store:     store,
		validator: v,
	}
}

// Validate loads the queue and checks it. A missing or empty queue is valid.
func (s *QueueService) Validate() (*validator.Report, error) {
	records, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	report := s.validator.Validate(records)
	s.logger.Debug("Queue validated",
		zap.Int("total", report.Total),
		zap.Int("errors", len(report.Errors)),
		zap.Int("warnings", len(report.Warnings)))
	return report, nil
}

// List returns the records matching the filter in queue order
func (s *QueueService) List(filter QueueFilter) ([]models.PostRecord, error) {
	records, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	matched := make([]models.PostRecord, 0, len(records))
	for _, rec := range records {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.Date != "" && rec.Date != filter.Date {
			continue
		}
		matched = append(matched, rec)
	}
	return matched, nil
}

func (s *QueueService) Stats() (*QueueStats, error) {
	records, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	stats := &QueueStats{
		Total:    len(records),
		ByStatus: make(map[string]int),
		BySlot:   make(map[string]int),
	}

	var pendingDates []string
	for _, rec := range records {
		stats.ByStatus[string(rec.Status)]++
		stats.BySlot[string(rec.Slot)]++
		if rec.Status.Pending() {
			pendingDates = append(pendingDates, rec.Date)
		}
	}
	if len(pendingDates) > 0 {
		sort.Strings(pendingDates)
		stats.NextScheduled = pendingDates[0]
	}
	return stats, nil
}
