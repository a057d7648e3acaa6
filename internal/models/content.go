package models

import (
	"encoding/json"
	"fmt"
)

// Item list styles
const (
	ItemFormatBullet   = "bullet"
	ItemFormatCheckbox = "checkbox"
	ItemFormatNumbered = "numbered"
)

// CountSpec is either a fixed count or a list of candidate counts
type CountSpec []int

func (c *CountSpec) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = CountSpec{n}
		return nil
	}

	var list []int
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("count must be a number or a list of numbers: %w", err)
	}
	*c = list
	return nil
}

// TemplateEntry is a post skeleton plus the pattern pools used to fill it
type TemplateEntry struct {
	Format          string    `json:"format"`
	Structure       string    `json:"structure"`
	HookPatterns    []string  `json:"hook_patterns"`
	ClosingPatterns []string  `json:"closing_patterns"`
	LessonPatterns  []string  `json:"lesson_patterns"`
	AdvicePatterns  []string  `json:"advice_patterns"`
	ItemsFormat     string    `json:"items_format"`
	ItemsCount      CountSpec `json:"items_count"`
	StepsFormat     string    `json:"steps_format"`
	StepsCount      CountSpec `json:"steps_count"`
}

// TemplateSet is the template document keyed by slot
type TemplateSet struct {
	Templates map[Slot][]TemplateEntry `json:"templates"`
}

type PillarOptions struct {
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
}

// PillarEntry is the vocabulary bank of one topic category
type PillarEntry struct {
	Topic         string         `json:"topic"`
	Actions       []string       `json:"actions"`
	Options       *PillarOptions `json:"options"`
	CheckItems    []string       `json:"check_items"`
	Cautions      []string       `json:"cautions"`
	StoryElements []string       `json:"story_elements"`
	Examples      []string       `json:"examples"`
}

type LexiconCommon struct {
	Counts []string `json:"counts"`
}

type Hashtags struct {
	Required []string            `json:"required"`
	Pillar   map[string][]string `json:"pillar"`
}

// Lexicon is the topic vocabulary document
type Lexicon struct {
	Pillars  map[string]PillarEntry `json:"pillars"`
	Common   LexiconCommon          `json:"common"`
	Hashtags Hashtags               `json:"hashtags"`
}
