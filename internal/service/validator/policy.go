package validator

import "github.com/ifuryst/postq/internal/models"

// Policy is the rule data the validator and the dispatch checks run against
type Policy struct {
	RequiredFields []string `yaml:"required_fields"`
	Slots          []string `yaml:"slots"`
	Pillars        []string `yaml:"pillars"`
	Formats        []string `yaml:"formats"`
	Statuses       []string `yaml:"statuses"`
	ForbiddenWords []string `yaml:"forbidden_words"`
	MaxTextLength  int      `yaml:"max_text_length"`
	MinTextLength  int      `yaml:"min_text_length"`
	HookWarnAbove  int      `yaml:"hook_warn_above"`
}

func DefaultPolicy() Policy {
	return Policy{
		RequiredFields: []string{"date", "slot", "pillar", "format", "hook", "text", "status", "fingerprint"},
		Slots:          []string{string(models.SlotEarly), string(models.SlotLate)},
		Pillars:        []string{"unpaid", "unitprice", "tax", "vehicle", "ops", "risk", "case"},
		Formats:        []string{"checklist", "template", "howto", "story", "criteria", "question"},
		Statuses:       []string{string(models.StatusDraft), string(models.StatusApproved), string(models.StatusPosted)},
		ForbiddenWords: DefaultForbiddenWords(),
		MaxTextLength:  models.MaxTextLength,
		MinTextLength:  models.MinTextLength,
		HookWarnAbove:  3,
	}
}

func DefaultForbiddenWords() []string {
	return []string{
		// income claims and guarantees
		"必ず稼げる",
		"保証",
		"確実に",
		"誰でも月収",
		"絶対に",
		"100%",
		"ノーリスク",
		// engagement bait
		"RTして",
		"リツイートして",
		"いいねして",
		"フォローして",
		"拡散希望",
		"広めて",
		"シェアして",
		// trend riding
		"トレンド",
		"バズ",
		"バズる",
		// inflammatory
		"炎上",
		"バカ",
		"情弱",
		"養分",
		"終わってる",
		// spam
		"無料プレゼント",
		"期間限定で無料",
		"今だけ無料",
		"LINE登録",
		"DM送って",
	}
}

// WithDefaults fills every unset field from DefaultPolicy
func (p Policy) WithDefaults() Policy {
	def := DefaultPolicy()
	if len(p.RequiredFields) == 0 {
		p.RequiredFields = def.RequiredFields
	}
	if len(p.Slots) == 0 {
		p.Slots = def.Slots
	}
	if len(p.Pillars) == 0 {
		p.Pillars = def.Pillars
	}
	if len(p.Formats) == 0 {
		p.Formats = def.Formats
	}
	if len(p.Statuses) == 0 {
		p.Statuses = def.Statuses
	}
	if len(p.ForbiddenWords) == 0 {
		p.ForbiddenWords = def.ForbiddenWords
	}
	if p.MaxTextLength == 0 {
		p.MaxTextLength = def.MaxTextLength
	}
	if p.MinTextLength == 0 {
		p.MinTextLength = def.MinTextLength
	}
	if p.HookWarnAbove == 0 {
		p.HookWarnAbove = def.HookWarnAbove
	}
	return p
}
