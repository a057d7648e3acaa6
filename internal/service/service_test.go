package service

import (
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/ifuryst/postq/internal/config"
	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/internal/service/queue"
	"github.com/ifuryst/postq/internal/service/validator"
	"github.com/ifuryst/postq/pkg/util"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Paths: config.PathsConfig{
			Queue:     filepath.Join(t.TempDir(), "queue.json"),
			Templates: filepath.Join("testdata", "templates.json"),
			Lexicon:   filepath.Join("testdata", "lexicon.json"),
		},
		Schedule:   config.ScheduleConfig{Timezone: "Asia/Tokyo", Days: 3},
		Validation: validator.DefaultPolicy(),
		Dispatch: config.DispatchConfig{
			FingerprintWindow: queue.DefaultFingerprintWindow,
			HookWindow:        queue.DefaultHookWindow,
		},
	}
}

func fixedClock(value string) func() time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func record(date string, slot models.Slot, status models.Status, hook, text string) models.PostRecord {
	return models.PostRecord{
		Date:        date,
		Slot:        slot,
		Pillar:      "tax",
		Format:      "checklist",
		Hook:        hook,
		Text:        text,
		Status:      status,
		Fingerprint: util.Fingerprint(text),
	}
}

func posted(rec models.PostRecord, id, at string) models.PostRecord {
	rec.Status = models.StatusPosted
	rec.TweetID = &id
	rec.PostedAtUTC = &at
	return rec
}

func seedQueue(t *testing.T, store *queue.Store, records ...models.PostRecord) {
	t.Helper()
	require.NoError(t, store.Save(records))
}
