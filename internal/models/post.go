package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Slot is the daily posting time bucket
type Slot string

const (
	SlotEarly Slot = "17"
	SlotLate  Slot = "19"
)

// Slots lists the daily slots in generation order
var Slots = []Slot{SlotEarly, SlotLate}

func (s Slot) Valid() bool {
	return s == SlotEarly || s == SlotLate
}

// Status is the lifecycle state of a post record
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusPosted   Status = "posted"
)

var statusTransitions = map[Status]Status{
	StatusDraft:    StatusApproved,
	StatusApproved: StatusPosted,
}

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusApproved || s == StatusPosted
}

// Pending reports whether the record still occupies its date/slot
func (s Status) Pending() bool {
	return s == StatusDraft || s == StatusApproved
}

// CanTransition only allows draft -> approved and approved -> posted
func (s Status) CanTransition(to Status) bool {
	next, ok := statusTransitions[s]
	return ok && next == to
}

const (
	DateLayout      = "2006-01-02"
	PostedAtLayout  = "2006-01-02T15:04:05Z"
	MaxTextLength   = 260
	MinTextLength   = 10
	FingerprintSize = 64
)

// PostRecord is one scheduled post in the queue document
type PostRecord struct {
	Date        string  `json:"date"`
	Slot        Slot    `json:"slot"`
	Pillar      string  `json:"pillar"`
	Format      string  `json:"format"`
	Hook        string  `json:"hook"`
	Text        string  `json:"text"`
	Status      Status  `json:"status"`
	Fingerprint string  `json:"fingerprint"`
	TweetID     *string `json:"tweet_id"`
	PostedAtUTC *string `json:"posted_at_utc"`

	// the decoded object in key order; nil for records built in memory
	raw []rawField
	// raw text of known keys whose value was not a string
	invalid map[string]string
	// lifecycle fields as decoded, to tell which ones changed
	decoded lifecycleFields
}

type rawField struct {
	key   string
	value json.RawMessage
}

type lifecycleFields struct {
	status   Status
	tweetID  *string
	postedAt *string
}

type postRecordAlias PostRecord

// UnmarshalJSON keeps every key of the object, known or not, so the record
// can be written back unchanged. Known string fields holding another JSON
// type decode as empty and are reported by InvalidFields.
func (p *PostRecord) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	fields, err := decodeObject(data)
	if err != nil {
		return err
	}

	*p = PostRecord{raw: fields}

	var slot, status string
	targets := map[string]*string{
		"date":        &p.Date,
		"slot":        &slot,
		"pillar":      &p.Pillar,
		"format":      &p.Format,
		"hook":        &p.Hook,
		"text":        &p.Text,
		"status":      &status,
		"fingerprint": &p.Fingerprint,
	}
	optional := map[string]**string{
		"tweet_id":      &p.TweetID,
		"posted_at_utc": &p.PostedAtUTC,
	}

	for _, f := range fields {
		if target, ok := targets[f.key]; ok {
			if err := json.Unmarshal(f.value, target); err != nil {
				p.markInvalid(f)
			}
			continue
		}
		if target, ok := optional[f.key]; ok {
			var value *string
			if err := json.Unmarshal(f.value, &value); err != nil {
				p.markInvalid(f)
				continue
			}
			*target = value
		}
	}

	p.Slot = Slot(slot)
	p.Status = Status(status)
	p.decoded = lifecycleFields{status: p.Status, tweetID: p.TweetID, postedAt: p.PostedAtUTC}
	return nil
}

func (p *PostRecord) markInvalid(f rawField) {
	if p.invalid == nil {
		p.invalid = make(map[string]string)
	}
	p.invalid[f.key] = string(f.value)
}

// MarshalJSON writes a decoded record back key for key, replacing only the
// lifecycle fields that changed since it was read. Records built in memory
// are written with every field.
func (p PostRecord) MarshalJSON() ([]byte, error) {
	if p.raw == nil {
		return marshalUnescaped(postRecordAlias(p))
	}

	fields := make([]rawField, len(p.raw))
	copy(fields, p.raw)

	changes := []struct {
		key     string
		changed bool
		value   any
	}{
		{"status", p.Status != p.decoded.status, p.Status},
		{"tweet_id", !sameString(p.TweetID, p.decoded.tweetID), p.TweetID},
		{"posted_at_utc", !sameString(p.PostedAtUTC, p.decoded.postedAt), p.PostedAtUTC},
	}
	for _, c := range changes {
		if !c.changed {
			continue
		}
		value, err := marshalUnescaped(c.value)
		if err != nil {
			return nil, err
		}
		fields = setField(fields, c.key, value)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalUnescaped(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Has reports whether the JSON key was present when the record was decoded
func (p *PostRecord) Has(key string) bool {
	if p.raw == nil {
		return true
	}
	for _, f := range p.raw {
		if f.key == key {
			return true
		}
	}
	return false
}

// InvalidFields returns the known keys whose decoded value had the wrong JSON
// type, in document order, with their raw text
func (p *PostRecord) InvalidFields() []InvalidField {
	var out []InvalidField
	for _, f := range p.raw {
		if text, ok := p.invalid[f.key]; ok {
			out = append(out, InvalidField{Key: f.key, Raw: text})
		}
	}
	return out
}

// InvalidField is a known key holding a value of the wrong JSON type
type InvalidField struct {
	Key string
	Raw string
}

func decodeObject(data []byte) ([]rawField, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("post record must be a JSON object")
	}

	fields := []rawField{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in post record", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = setField(fields, key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// setField replaces the value of an existing key in place or appends the key
func setField(fields []rawField, key string, value json.RawMessage) []rawField {
	for i := range fields {
		if fields[i].key == key {
			fields[i].value = value
			return fields
		}
	}
	return append(fields, rawField{key: key, value: value})
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Transition moves the record forward one lifecycle step
func (p *PostRecord) Transition(to Status) error {
	if !p.Status.CanTransition(to) {
		return fmt.Errorf("invalid status transition %q -> %q", p.Status, to)
	}
	p.Status = to
	return nil
}

// MarkPosted records a successful publish
func (p *PostRecord) MarkPosted(tweetID string, at time.Time) error {
	if err := p.Transition(StatusPosted); err != nil {
		return err
	}
	postedAt := at.UTC().Format(PostedAtLayout)
	p.TweetID = &tweetID
	p.PostedAtUTC = &postedAt
	return nil
}

// ParseDate parses the record date as a civil date; ok is false when malformed
func (p *PostRecord) ParseDate() (time.Time, bool) {
	t, err := time.Parse(DateLayout, p.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
