package content

import (
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/pkg/util"
)

// MaxComposeAttempts bounds the retries spent avoiding a hook already used in the batch
const MaxComposeAttempts = 5

const (
	defaultCount     = "5"
	defaultAction    = "対応"
	defaultOptionA   = "A"
	defaultOptionB   = "B"
	defaultItemCount = 4
	defaultStory     = "実際にあった話です。"
	defaultAdvice    = "専門家に相談を"
	defaultOptions   = "A: する\nB: しない"
	criteriaLimit    = 3
)

var numberedGlyphs = []string{"①", "②", "③", "④", "⑤", "⑥"}

// NewRand returns a seeded generator, or a time-seeded one when seed is nil
func NewRand(seed *int64) *rand.Rand {
	if seed == nil {
		now := uint64(time.Now().UnixNano())
		return rand.New(rand.NewPCG(now, now>>1))
	}
	return rand.New(rand.NewPCG(uint64(*seed), uint64(*seed)))
}

// Composer fills templates with pillar vocabulary to produce draft posts.
// All randomness comes from the injected generator so a fixed seed
// reproduces the same drafts.
type Composer struct {
	templates  *models.TemplateSet
	lexicon    *models.Lexicon
	pillarKeys []string
	rng        *rand.Rand
	maxLength  int
}

func NewComposer(templates *models.TemplateSet, lexicon *models.Lexicon, rng *rand.Rand, maxLength int) *Composer {
	keys := make([]string, 0, len(lexicon.Pillars))
	for k := range lexicon.Pillars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if maxLength <= 0 {
		maxLength = models.MaxTextLength
	}

	return &Composer{
		templates:  templates,
		lexicon:    lexicon,
		pillarKeys: keys,
		rng:        rng,
		maxLength:  maxLength,
	}
}

type candidate struct {
	hook           string
	normalizedHook string
	text           string
}

// Compose builds one draft for the date and slot. It returns nil when the slot
// has no templates, the lexicon has no pillars, or no attempt fits within the
// length limit. usedHooks is updated with the chosen hook; after
// MaxComposeAttempts collisions the last hook is accepted anyway.
func (c *Composer) Compose(date string, slot models.Slot, usedHooks map[string]struct{}) *models.PostRecord {
	templates := c.templates.Templates[slot]
	if len(templates) == 0 || len(c.pillarKeys) == 0 {
		return nil
	}

	tmpl := &templates[c.rng.IntN(len(templates))]
	pillarKey := c.pillarKeys[c.rng.IntN(len(c.pillarKeys))]
	pillar := c.lexicon.Pillars[pillarKey]

	var chosen *candidate
	for attempt := 0; attempt < MaxComposeAttempts; attempt++ {
		hook, body := c.composeText(tmpl, &pillar)
		text := body
		if tags := c.hashtags(pillarKey); tags != "" {
			text = body + "\n\n" + tags
		}
		if util.CharCount(text) > c.maxLength {
			continue
		}

		chosen = &candidate{hook: hook, normalizedHook: util.NormalizeText(hook), text: text}
		if _, used := usedHooks[chosen.normalizedHook]; !used {
			break
		}
	}
	if chosen == nil {
		return nil
	}
	usedHooks[chosen.normalizedHook] = struct{}{}

	return &models.PostRecord{
		Date:        date,
		Slot:        slot,
		Pillar:      pillarKey,
		Format:      tmpl.Format,
		Hook:        chosen.hook,
		Text:        chosen.text,
		Status:      models.StatusDraft,
		Fingerprint: util.Fingerprint(chosen.text),
	}
}

// section placeholders in substitution order
var sectionPlaceholders = []string{
	"{hook}",
	"{closing}",
	"{items}",
	"{steps}",
	"{template_body}",
	"{comparison}",
	"{story_body}",
	"{lesson}",
	"{criteria_body}",
	"{options}",
	"{context}",
	"{insight}",
	"{case_description}",
	"{advice}",
}

func (c *Composer) composeText(tmpl *models.TemplateEntry, pillar *models.PillarEntry) (string, string) {
	structure := tmpl.Structure
	if structure == "" {
		structure = "{hook}"
	}

	hook := c.hook(tmpl, pillar)

	pairs := make([]string, 0, 2*len(sectionPlaceholders))
	for _, placeholder := range sectionPlaceholders {
		if !strings.Contains(structure, placeholder) {
			continue
		}
		pairs = append(pairs, placeholder, c.section(placeholder, hook, tmpl, pillar))
	}

	text := strings.NewReplacer(pairs...).Replace(structure)
	return hook, util.NormalizeText(text)
}

func (c *Composer) section(placeholder, hook string, tmpl *models.TemplateEntry, pillar *models.PillarEntry) string {
	switch placeholder {
	case "{hook}":
		return hook
	case "{closing}", "{context}":
		return c.pick(tmpl.ClosingPatterns, "")
	case "{items}":
		return c.items(tmpl.ItemsFormat, tmpl.ItemsCount, pillar.CheckItems, pillar.Cautions)
	case "{steps}":
		return c.items(tmpl.StepsFormat, tmpl.StepsCount, pillar.Actions, pillar.CheckItems)
	case "{template_body}", "{story_body}", "{insight}", "{case_description}":
		return c.story(pillar)
	case "{comparison}", "{criteria_body}":
		return c.criteria(pillar)
	case "{lesson}":
		return c.pick(tmpl.LessonPatterns, "")
	case "{options}":
		return c.options(pillar)
	case "{advice}":
		return c.pick(tmpl.AdvicePatterns, defaultAdvice)
	}
	return placeholder
}

func (c *Composer) hook(tmpl *models.TemplateEntry, pillar *models.PillarEntry) string {
	if len(tmpl.HookPatterns) == 0 {
		return ""
	}
	pattern := c.pick(tmpl.HookPatterns, "")

	optionA, optionB, _ := optionPair(pillar)
	return strings.NewReplacer(
		"{pillar_topic}", pillar.Topic,
		"{count}", c.pick(c.lexicon.Common.Counts, defaultCount),
		"{action}", c.pick(pillar.Actions, defaultAction),
		"{option_a}", optionA,
		"{option_b}", optionB,
	).Replace(pattern)
}

func (c *Composer) items(format string, counts models.CountSpec, sources ...[]string) string {
	count := defaultItemCount
	if len(counts) > 0 {
		count = counts[c.rng.IntN(len(counts))]
	}

	var pool []string
	for _, src := range sources {
		pool = append(pool, src...)
	}
	if count > len(pool) {
		count = len(pool)
	}
	if format == models.ItemFormatNumbered && count > len(numberedGlyphs) {
		count = len(numberedGlyphs)
	}

	selected := c.sample(pool, count)
	lines := make([]string, len(selected))
	for i, item := range selected {
		switch format {
		case models.ItemFormatCheckbox:
			lines[i] = "☑ " + item
		case models.ItemFormatNumbered:
			lines[i] = numberedGlyphs[i] + " " + item
		default:
			lines[i] = "・" + item
		}
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) story(pillar *models.PillarEntry) string {
	var parts []string
	if len(pillar.StoryElements) > 0 {
		parts = append(parts, c.pick(pillar.StoryElements, ""))
	}
	if len(pillar.Examples) > 0 {
		parts = append(parts, c.pick(pillar.Examples, ""))
	}
	if len(parts) == 0 {
		return defaultStory
	}
	return strings.Join(parts, "\n")
}

func (c *Composer) criteria(pillar *models.PillarEntry) string {
	pool := make([]string, 0, len(pillar.Cautions)+len(pillar.CheckItems))
	pool = append(pool, pillar.Cautions...)
	pool = append(pool, pillar.CheckItems...)

	selected := c.sample(pool, min(criteriaLimit, len(pool)))
	lines := make([]string, len(selected))
	for i, item := range selected {
		lines[i] = "・" + item
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) options(pillar *models.PillarEntry) string {
	if optionA, optionB, ok := optionPair(pillar); ok {
		return "A: " + optionA + "\nB: " + optionB
	}
	if len(pillar.Actions) >= 2 {
		pair := c.sample(pillar.Actions, 2)
		return "A: " + pair[0] + "\nB: " + pair[1]
	}
	return defaultOptions
}

// optionPair returns the pillar's two named options, defaulting blank sides;
// ok is false when the pillar names no options at all
func optionPair(pillar *models.PillarEntry) (string, string, bool) {
	o := pillar.Options
	if o == nil || (o.OptionA == "" && o.OptionB == "") {
		return defaultOptionA, defaultOptionB, false
	}
	a, b := o.OptionA, o.OptionB
	if a == "" {
		a = defaultOptionA
	}
	if b == "" {
		b = defaultOptionB
	}
	return a, b, true
}

func (c *Composer) hashtags(pillarKey string) string {
	tags := append([]string(nil), c.lexicon.Hashtags.Required...)
	if pool := c.lexicon.Hashtags.Pillar[pillarKey]; len(pool) > 0 {
		tags = append(tags, c.pick(pool, ""))
	}
	return strings.Join(tags, " ")
}

func (c *Composer) pick(pool []string, fallback string) string {
	if len(pool) == 0 {
		return fallback
	}
	return pool[c.rng.IntN(len(pool))]
}

// sample draws n distinct positions from pool
func (c *Composer) sample(pool []string, n int) []string {
	if n <= 0 {
		return nil
	}
	perm := c.rng.Perm(len(pool))
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = pool[perm[i]]
	}
	return out
}
