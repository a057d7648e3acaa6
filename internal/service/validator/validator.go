package validator

import (
	"fmt"
	"regexp"

	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/pkg/util"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Finding is one problem in the queue. Index is -1 for queue-wide findings,
// which list the records involved in Indices instead.
type Finding struct {
	Index   int    `json:"index"`
	Indices []int  `json:"indices,omitempty"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	if f.Index >= 0 {
		return fmt.Sprintf("[%d] %s", f.Index, f.Message)
	}
	return f.Message
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Report aggregates every finding of a validation run
type Report struct {
	Total        int           `json:"total"`
	Errors       []Finding     `json:"errors"`
	Warnings     []Finding     `json:"warnings"`
	StatusCounts []StatusCount `json:"status_counts"`
}

func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

type Validator struct {
	policy   Policy
	slots    map[string]struct{}
	pillars  map[string]struct{}
	formats  map[string]struct{}
	statuses map[string]struct{}
}

func New(policy Policy) *Validator {
	policy = policy.WithDefaults()
	return &Validator{
		policy:   policy,
		slots:    toSet(policy.Slots),
		pillars:  toSet(policy.Pillars),
		formats:  toSet(policy.Formats),
		statuses: toSet(policy.Statuses),
	}
}

func (v *Validator) Policy() Policy {
	return v.policy
}

// Validate runs every record and queue-wide check and never stops early
func (v *Validator) Validate(records []models.PostRecord) *Report {
	report := &Report{
		Total:    len(records),
		Errors:   []Finding{},
		Warnings: []Finding{},
	}

	for i := range records {
		rec := &records[i]
		report.Errors = append(report.Errors, v.checkSchema(i, rec)...)
		if isInvalid(rec, "text") {
			continue
		}
		report.Errors = append(report.Errors, v.checkLength(i, rec.Text)...)
		if found := util.ContainsFold(rec.Text, v.policy.ForbiddenWords); len(found) > 0 {
			report.Errors = append(report.Errors, Finding{Index: i, Message: fmt.Sprintf("Forbidden words found: %v", found)})
		}
	}

	report.Errors = append(report.Errors, v.checkDuplicateFingerprints(records)...)
	report.Errors = append(report.Errors, v.checkDuplicateSlots(records)...)
	report.Warnings = append(report.Warnings, v.checkHookFrequency(records)...)
	report.StatusCounts = countStatuses(records)

	return report
}

// CheckPublishable re-runs the text rules that gate a publish
func (v *Validator) CheckPublishable(text string) error {
	if n := util.CharCount(text); n > v.policy.MaxTextLength {
		return &models.ValidationError{
			Rule:    "length",
			Message: fmt.Sprintf("text too long: %d chars (max %d)", n, v.policy.MaxTextLength),
		}
	}
	if found := util.ContainsFold(text, v.policy.ForbiddenWords); len(found) > 0 {
		return &models.ValidationError{
			Rule:    "forbidden",
			Message: fmt.Sprintf("forbidden words found: %v", found),
		}
	}
	return nil
}

func (v *Validator) checkSchema(i int, rec *models.PostRecord) []Finding {
	var findings []Finding
	for _, field := range v.policy.RequiredFields {
		if !rec.Has(field) {
			findings = append(findings, Finding{Index: i, Message: "Missing required field: " + field})
		}
	}

	for _, f := range rec.InvalidFields() {
		findings = append(findings, Finding{Index: i, Message: fmt.Sprintf("Invalid %s: %s", f.Key, f.Raw)})
	}

	if rec.Date != "" && !datePattern.MatchString(rec.Date) {
		findings = append(findings, Finding{Index: i, Message: fmt.Sprintf("Invalid date format: %s (expected YYYY-MM-DD)", rec.Date)})
	}

	enums := []struct {
		name  string
		value string
		set   map[string]struct{}
	}{
		{"slot", string(rec.Slot), v.slots},
		{"pillar", rec.Pillar, v.pillars},
		{"format", rec.Format, v.formats},
		{"status", string(rec.Status), v.statuses},
	}
	for _, e := range enums {
		if e.value == "" {
			continue
		}
		if _, ok := e.set[e.value]; !ok {
			findings = append(findings, Finding{Index: i, Message: fmt.Sprintf("Invalid %s: %s", e.name, e.value)})
		}
	}
	return findings
}

func (v *Validator) checkLength(i int, text string) []Finding {
	var findings []Finding
	n := util.CharCount(text)
	if n > v.policy.MaxTextLength {
		findings = append(findings, Finding{Index: i, Message: fmt.Sprintf("Text too long: %d chars (max %d)", n, v.policy.MaxTextLength)})
	}
	if n < v.policy.MinTextLength {
		findings = append(findings, Finding{Index: i, Message: fmt.Sprintf("Text too short: %d chars (suspicious)", n)})
	}
	return findings
}

func (v *Validator) checkDuplicateFingerprints(records []models.PostRecord) []Finding {
	groups := newGroups()
	for i := range records {
		if fp := records[i].Fingerprint; fp != "" {
			groups.add(fp, i)
		}
	}

	var findings []Finding
	for _, g := range groups.over(1) {
		findings = append(findings, Finding{
			Index:   -1,
			Indices: g.indices,
			Message: fmt.Sprintf("Duplicate fingerprint at indices %v: %s...", g.indices, truncateBytes(g.key, 16)),
		})
	}
	return findings
}

func (v *Validator) checkDuplicateSlots(records []models.PostRecord) []Finding {
	groups := newGroups()
	for i := range records {
		if records[i].Status.Pending() {
			groups.add(records[i].Date+"\x00"+string(records[i].Slot), i)
		}
	}

	var findings []Finding
	for _, g := range groups.over(1) {
		first := &records[g.indices[0]]
		findings = append(findings, Finding{
			Index:   -1,
			Indices: g.indices,
			Message: fmt.Sprintf("Duplicate date/slot at indices %v: (%s, %s)", g.indices, first.Date, first.Slot),
		})
	}
	return findings
}

func (v *Validator) checkHookFrequency(records []models.PostRecord) []Finding {
	groups := newGroups()
	for i := range records {
		if hook := util.ExtractHook(records[i].Hook, records[i].Text); hook != "" {
			groups.add(hook, i)
		}
	}

	var findings []Finding
	for _, g := range groups.over(v.policy.HookWarnAbove) {
		shown := g.indices
		if len(shown) > 5 {
			shown = shown[:5]
		}
		findings = append(findings, Finding{
			Index:   -1,
			Indices: g.indices,
			Message: fmt.Sprintf("Hook appears %d times at indices %v...: %s", len(g.indices), shown, util.Truncate(g.key, 30)),
		})
	}
	return findings
}

func countStatuses(records []models.PostRecord) []StatusCount {
	counts := []StatusCount{}
	pos := make(map[string]int)
	for i := range records {
		status := string(records[i].Status)
		if idx, ok := pos[status]; ok {
			counts[idx].Count++
			continue
		}
		pos[status] = len(counts)
		counts = append(counts, StatusCount{Status: status, Count: 1})
	}
	return counts
}

type group struct {
	key     string
	indices []int
}

// groups keeps keys in first-seen order so reports are stable
type groups struct {
	order []*group
	byKey map[string]*group
}

func newGroups() *groups {
	return &groups{byKey: make(map[string]*group)}
}

func (g *groups) add(key string, index int) {
	grp, ok := g.byKey[key]
	if !ok {
		grp = &group{key: key}
		g.byKey[key] = grp
		g.order = append(g.order, grp)
	}
	grp.indices = append(grp.indices, index)
}

func (g *groups) over(threshold int) []*group {
	var out []*group
	for _, grp := range g.order {
		if len(grp.indices) > threshold {
			out = append(out, grp)
		}
	}
	return out
}

func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func isInvalid(rec *models.PostRecord, key string) bool {
	for _, f := range rec.InvalidFields() {
		if f.Key == key {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
