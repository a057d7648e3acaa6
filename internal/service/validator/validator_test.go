package validator

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/pkg/util"
)

func draft(date string, slot models.Slot, text string) models.PostRecord {
	return models.PostRecord{
		Date:        date,
		Slot:        slot,
		Pillar:      "tax",
		Format:      "checklist",
		Hook:        strings.Split(text, "\n")[0],
		Text:        text,
		Status:      models.StatusDraft,
		Fingerprint: util.Fingerprint(text),
	}
}

func messages(findings []Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.String()
	}
	return out
}

func TestValidateEmptyQueue(t *testing.T) {
	report := New(DefaultPolicy()).Validate(nil)

	assert.True(t, report.Valid())
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
	assert.Empty(t, report.StatusCounts)
	assert.Equal(t, 0, report.Total)
}

func TestValidateSingleDraft(t *testing.T) {
	records := []models.PostRecord{draft("2025-01-01", models.SlotEarly, "確定申告の準備チェック\n\n☑ 領収書")}
	report := New(DefaultPolicy()).Validate(records)

	assert.True(t, report.Valid(), messages(report.Errors))
	assert.Equal(t, []StatusCount{{Status: "draft", Count: 1}}, report.StatusCounts)
}

func TestValidateMissingFields(t *testing.T) {
	var records []models.PostRecord
	require.NoError(t, json.Unmarshal([]byte(`[{"date": "2025-01-01", "slot": "17", "text": "本文がここにあります。十分な長さ"}]`), &records))

	report := New(DefaultPolicy()).Validate(records)
	assert.False(t, report.Valid())
	assert.ElementsMatch(t, []string{
		"[0] Missing required field: pillar",
		"[0] Missing required field: format",
		"[0] Missing required field: hook",
		"[0] Missing required field: status",
		"[0] Missing required field: fingerprint",
	}, messages(report.Errors))
}

func TestValidateEnumsAndDate(t *testing.T) {
	rec := draft("2025/01/01", "18", "十分な長さのある本文テキスト")
	rec.Pillar = "crypto"
	rec.Format = "thread"
	rec.Status = "queued"

	report := New(DefaultPolicy()).Validate([]models.PostRecord{rec})
	assert.ElementsMatch(t, []string{
		"[0] Invalid date format: 2025/01/01 (expected YYYY-MM-DD)",
		"[0] Invalid slot: 18",
		"[0] Invalid pillar: crypto",
		"[0] Invalid format: thread",
		"[0] Invalid status: queued",
	}, messages(report.Errors))
}

func TestValidateWrongTypedFields(t *testing.T) {
	var records []models.PostRecord
	require.NoError(t, json.Unmarshal([]byte(`[
		{"date": "2025-01-01", "slot": 17, "pillar": "tax", "format": "checklist", "hook": "h1",
		 "text": "本文がここにあります。十分な長さ", "status": 2, "fingerprint": "a", "tweet_id": 5},
		{"date": "2025-01-01", "slot": "19", "pillar": "tax", "format": "checklist", "hook": "h2",
		 "text": 42, "status": "draft", "fingerprint": "b"}
	]`), &records))

	report := New(DefaultPolicy()).Validate(records)
	assert.Equal(t, 2, report.Total)
	assert.ElementsMatch(t, []string{
		"[0] Invalid slot: 17",
		"[0] Invalid status: 2",
		"[0] Invalid tweet_id: 5",
		"[1] Invalid text: 42",
	}, messages(report.Errors))
}

func TestValidateEmptyEnumIsNotAnError(t *testing.T) {
	rec := draft("2025-01-01", models.SlotEarly, "十分な長さのある本文テキスト")
	rec.Pillar = ""
	rec.Format = ""

	report := New(DefaultPolicy()).Validate([]models.PostRecord{rec})
	assert.True(t, report.Valid(), messages(report.Errors))
}

func TestValidateLength(t *testing.T) {
	long := strings.Repeat("あ", models.MaxTextLength+1)
	exact := strings.Repeat("い", models.MaxTextLength)
	records := []models.PostRecord{
		draft("2025-01-01", models.SlotEarly, long),
		draft("2025-01-01", models.SlotLate, "短い"),
		draft("2025-01-02", models.SlotEarly, exact),
	}

	report := New(DefaultPolicy()).Validate(records)
	assert.Equal(t, []string{
		"[0] Text too long: 261 chars (max 260)",
		"[1] Text too short: 2 chars (suspicious)",
	}, messages(report.Errors))
}

func TestValidateForbiddenWords(t *testing.T) {
	records := []models.PostRecord{
		draft("2025-01-01", models.SlotEarly, "元本保証つきの案件を紹介します"),
		draft("2025-01-01", models.SlotLate, "みんなrtしてください、お願いします"),
		draft("2025-01-02", models.SlotEarly, "請求書は期日の前に送りましょう"),
	}

	report := New(DefaultPolicy()).Validate(records)
	assert.Equal(t, []string{
		"[0] Forbidden words found: [保証]",
		"[1] Forbidden words found: [RTして]",
	}, messages(report.Errors))
}

func TestValidateDuplicates(t *testing.T) {
	text := "同じ本文が二回出てくるケース"
	posted := draft("2025-01-01", models.SlotEarly, text)
	posted.Status = models.StatusPosted

	records := []models.PostRecord{
		posted,
		draft("2025-01-01", models.SlotEarly, text),
		draft("2025-01-02", models.SlotEarly, "別の本文その一です。"),
		draft("2025-01-02", models.SlotEarly, "別の本文その二です。"),
	}

	report := New(DefaultPolicy()).Validate(records)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, []int{0, 1}, report.Errors[0].Indices)
	assert.True(t, strings.HasPrefix(report.Errors[0].Message, "Duplicate fingerprint at indices [0 1]: "+util.Fingerprint(text)[:16]))
	assert.Equal(t, []int{2, 3}, report.Errors[1].Indices)
	assert.Equal(t, "Duplicate date/slot at indices [2 3]: (2025-01-02, 17)", report.Errors[1].Message)
}

func TestValidatePostedDoesNotHoldSlot(t *testing.T) {
	a := draft("2025-01-01", models.SlotEarly, "投稿済みの本文テキストです")
	a.Status = models.StatusPosted
	records := []models.PostRecord{a, draft("2025-01-01", models.SlotEarly, "差し替えた下書きの本文です")}

	report := New(DefaultPolicy()).Validate(records)
	assert.True(t, report.Valid(), messages(report.Errors))
}

func TestValidateHookFrequencyWarning(t *testing.T) {
	var records []models.PostRecord
	for i, date := range []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04"} {
		rec := draft(date, models.SlotEarly, "同じフック\n本文"+strings.Repeat("x", i+5))
		records = append(records, rec)
	}

	report := New(DefaultPolicy()).Validate(records)
	assert.True(t, report.Valid(), messages(report.Errors))
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, []int{0, 1, 2, 3}, report.Warnings[0].Indices)
	assert.Contains(t, report.Warnings[0].Message, "Hook appears 4 times")

	report = New(DefaultPolicy()).Validate(records[:3])
	assert.Empty(t, report.Warnings)
}

func TestValidateAggregatesEverything(t *testing.T) {
	bad := draft("bad", "99", "保証")
	report := New(DefaultPolicy()).Validate([]models.PostRecord{bad, bad})

	// per record: date, slot, too short, forbidden; then fingerprint and date/slot duplicates
	assert.Len(t, report.Errors, 10)
	assert.Equal(t, []StatusCount{{Status: "draft", Count: 2}}, report.StatusCounts)
}

func TestStatusCountsFirstSeenOrder(t *testing.T) {
	a := draft("2025-01-01", models.SlotEarly, "一件目の本文テキスト")
	a.Status = models.StatusApproved
	b := draft("2025-01-01", models.SlotLate, "二件目の本文テキスト")
	c := draft("2025-01-02", models.SlotEarly, "三件目の本文テキスト")
	c.Status = models.StatusApproved

	report := New(DefaultPolicy()).Validate([]models.PostRecord{a, b, c})
	assert.Equal(t, []StatusCount{{"approved", 2}, {"draft", 1}}, report.StatusCounts)
}

func TestCheckPublishable(t *testing.T) {
	v := New(DefaultPolicy())

	require.NoError(t, v.CheckPublishable("問題のない本文テキストです"))

	var vErr *models.ValidationError
	err := v.CheckPublishable(strings.Repeat("a", 261))
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "length", vErr.Rule)

	err = v.CheckPublishable("絶対に儲かる")
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "forbidden", vErr.Rule)
}

func TestPolicyInjection(t *testing.T) {
	v := New(Policy{ForbiddenWords: []string{"secret"}, Pillars: []string{"custom"}})

	rec := draft("2025-01-01", models.SlotEarly, "this has a SECRET inside")
	rec.Pillar = "custom"
	report := v.Validate([]models.PostRecord{rec})

	assert.Equal(t, []string{"[0] Forbidden words found: [secret]"}, messages(report.Errors))
	assert.Equal(t, models.MaxTextLength, v.Policy().MaxTextLength)
}
