package service

import (
	"go.uber.org/zap"

	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/internal/service/queue"
)

// ApproveResult lists the records an approval run touched
type ApproveResult struct {
	Matched []models.PostRecord
	Preview bool
}

// ApprovalService promotes drafts to approved over a date range
type ApprovalService struct {
	logger *zap.Logger
	store  *queue.Store
}

func NewApprovalService(store *queue.Store, logger *zap.Logger) *ApprovalService {
	return &ApprovalService{
		logger: logger,
		store:  store,
	}
}

// Approve moves drafts dated within [from, to] to approved. In preview mode,
// or when nothing matches, the queue file is not written.
func (s *ApprovalService) Approve(from, to string, preview bool) (*ApproveResult, error) {
	fromDate, toDate, err := queue.ParseDateRange(from, to)
	if err != nil {
		return nil, err
	}

	records, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	indices, err := queue.Approve(records, fromDate, toDate, preview)
	if err != nil {
		return nil, err
	}

	result := &ApproveResult{Preview: preview}
	for _, i := range indices {
		result.Matched = append(result.Matched, records[i])
	}

	if preview || len(indices) == 0 {
		s.logger.Info("Approval not written",
			zap.String("from", from),
			zap.String("to", to),
			zap.Int("matched", len(indices)),
			zap.Bool("preview", preview))
		return result, nil
	}

	if err := s.store.Save(records); err != nil {
		return nil, err
	}

	s.logger.Info("Drafts approved",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("approved", len(indices)))

	return result, nil
}
