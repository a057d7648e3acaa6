package queue

import (
	"sort"

	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/pkg/util"
)

const (
	DefaultFingerprintWindow = 50
	DefaultHookWindow        = 14
)

// Guard answers "was this posted recently" against the posted history of a queue
type Guard struct {
	posted []*models.PostRecord
}

// NewGuard keeps the posted records, newest first by posted_at_utc; records
// without a timestamp sort as the oldest
func NewGuard(records []models.PostRecord) *Guard {
	var posted []*models.PostRecord
	for i := range records {
		if records[i].Status == models.StatusPosted {
			posted = append(posted, &records[i])
		}
	}

	sort.SliceStable(posted, func(i, j int) bool {
		return postedAt(posted[i]) > postedAt(posted[j])
	})

	return &Guard{posted: posted}
}

func postedAt(r *models.PostRecord) string {
	if r.PostedAtUTC == nil {
		return ""
	}
	return *r.PostedAtUTC
}

func (g *Guard) recent(window int) []*models.PostRecord {
	if window < 0 {
		window = 0
	}
	if window > len(g.posted) {
		window = len(g.posted)
	}
	return g.posted[:window]
}

// FingerprintDuplicate reports whether fp matches one of the last window posts
func (g *Guard) FingerprintDuplicate(fp string, window int) bool {
	for _, r := range g.recent(window) {
		if r.Fingerprint == fp {
			return true
		}
	}
	return false
}

// HookDuplicate compares normalized hooks against the last window posts
func (g *Guard) HookDuplicate(hook string, window int) bool {
	normalized := util.NormalizeText(hook)
	for _, r := range g.recent(window) {
		if util.ExtractHook(r.Hook, r.Text) == normalized {
			return true
		}
	}
	return false
}
