package content

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/pkg/util"
)

func seeded(seed int64) *Composer {
	return NewComposer(testTemplates(), testLexicon(), NewRand(&seed), 0)
}

func testTemplates() *models.TemplateSet {
	return &models.TemplateSet{
		Templates: map[models.Slot][]models.TemplateEntry{
			models.SlotEarly: {
				{
					Format:          "checklist",
					Structure:       "{hook}\n\n{items}\n\n{closing}",
					HookPatterns:    []string{"{pillar_topic}で確認したい{count}つのこと", "{action}の前に見るところ"},
					ClosingPatterns: []string{"保存して使ってください。"},
					ItemsFormat:     models.ItemFormatCheckbox,
					ItemsCount:      models.CountSpec{3, 4},
				},
				{
					Format:       "howto",
					Structure:    "{hook}\n\n{steps}\n\n{advice}",
					HookPatterns: []string{"{action}の手順"},
					StepsFormat:  models.ItemFormatNumbered,
					StepsCount:   models.CountSpec{3},
				},
			},
			models.SlotLate: {
				{
					Format:         "story",
					Structure:      "{hook}\n\n{story_body}\n\n{lesson}",
					HookPatterns:   []string{"{pillar_topic}で失敗した話", "{option_a}と{option_b}で迷った話"},
					LessonPatterns: []string{"早めの確認が大事です。"},
				},
				{
					Format:       "question",
					Structure:    "{hook}\n\n{options}\n\n{criteria_body}",
					HookPatterns: []string{"{option_a}か{option_b}か"},
				},
			},
		},
	}
}

func testLexicon() *models.Lexicon {
	return &models.Lexicon{
		Pillars: map[string]models.PillarEntry{
			"unpaid": {
				Topic:         "未払い対策",
				Actions:       []string{"請求書を送る", "契約書を確認する", "督促する"},
				Options:       &models.PillarOptions{OptionA: "内容証明", OptionB: "少額訴訟"},
				CheckItems:    []string{"支払期日", "請求先", "金額"},
				Cautions:      []string{"口約束", "長期放置"},
				StoryElements: []string{"3ヶ月入金がなかった。"},
				Examples:      []string{"結局、契約書が決め手になった。"},
			},
			"tax": {
				Topic:      "確定申告",
				Actions:    []string{"領収書を整理する", "経費を計上する"},
				CheckItems: []string{"ガソリン代", "車両費"},
			},
		},
		Common: models.LexiconCommon{Counts: []string{"3", "5"}},
		Hashtags: models.Hashtags{
			Required: []string{"#軽貨物"},
			Pillar: map[string][]string{
				"unpaid": {"#未払い", "#請求"},
			},
		},
	}
}

func TestComposeReturnsDraft(t *testing.T) {
	c := seeded(1)
	used := map[string]struct{}{}

	rec := c.Compose("2025-01-01", models.SlotEarly, used)
	require.NotNil(t, rec)

	assert.Equal(t, "2025-01-01", rec.Date)
	assert.Equal(t, models.SlotEarly, rec.Slot)
	assert.Equal(t, models.StatusDraft, rec.Status)
	assert.Contains(t, []string{"checklist", "howto"}, rec.Format)
	assert.Contains(t, []string{"unpaid", "tax"}, rec.Pillar)
	assert.Nil(t, rec.TweetID)
	assert.Nil(t, rec.PostedAtUTC)
	assert.Equal(t, util.Fingerprint(rec.Text), rec.Fingerprint)
	assert.True(t, strings.HasPrefix(rec.Text, util.NormalizeText(rec.Hook)))
	assert.Contains(t, rec.Text, "\n\n#軽貨物")
	assert.Contains(t, used, util.NormalizeText(rec.Hook))
}

func TestComposeSkipsWithoutTemplatesOrPillars(t *testing.T) {
	seed := int64(1)

	noSlot := NewComposer(&models.TemplateSet{Templates: map[models.Slot][]models.TemplateEntry{}}, testLexicon(), NewRand(&seed), 0)
	assert.Nil(t, noSlot.Compose("2025-01-01", models.SlotEarly, map[string]struct{}{}))

	noPillars := NewComposer(testTemplates(), &models.Lexicon{}, NewRand(&seed), 0)
	assert.Nil(t, noPillars.Compose("2025-01-01", models.SlotEarly, map[string]struct{}{}))
}

func TestComposeIsReproducibleWithSeed(t *testing.T) {
	run := func() []models.PostRecord {
		c := seeded(42)
		used := map[string]struct{}{}
		var out []models.PostRecord
		for day := 1; day <= 30; day++ {
			for _, slot := range models.Slots {
				if rec := c.Compose(fmt.Sprintf("2025-01-%02d", day), slot, used); rec != nil {
					out = append(out, *rec)
				}
			}
		}
		return out
	}

	first, second := run(), run()
	require.Len(t, first, 60)
	assert.Equal(t, first, second)
}

func TestComposeRespectsLengthLimit(t *testing.T) {
	c := seeded(7)
	used := map[string]struct{}{}
	for day := 1; day <= 30; day++ {
		for _, slot := range models.Slots {
			rec := c.Compose(fmt.Sprintf("2025-03-%02d", day), slot, used)
			require.NotNil(t, rec)
			assert.LessOrEqual(t, util.CharCount(rec.Text), models.MaxTextLength)
		}
	}
}

func TestComposeSkipsWhenNothingFits(t *testing.T) {
	seed := int64(3)
	c := NewComposer(testTemplates(), testLexicon(), NewRand(&seed), 10)
	assert.Nil(t, c.Compose("2025-01-01", models.SlotEarly, map[string]struct{}{}))
}

func TestComposeAcceptsDuplicateHookAfterRetries(t *testing.T) {
	templates := &models.TemplateSet{
		Templates: map[models.Slot][]models.TemplateEntry{
			models.SlotEarly: {{Format: "template", Structure: "{hook}\n\n{template_body}", HookPatterns: []string{"いつもの話"}}},
		},
	}
	seed := int64(5)
	c := NewComposer(templates, testLexicon(), NewRand(&seed), 0)
	used := map[string]struct{}{"いつもの話": {}}

	rec := c.Compose("2025-01-01", models.SlotEarly, used)
	require.NotNil(t, rec)
	assert.Equal(t, "いつもの話", rec.Hook)
	assert.Len(t, used, 1)
}

func TestHookPlaceholders(t *testing.T) {
	c := seeded(9)
	pillar := testLexicon().Pillars["unpaid"]

	tmpl := &models.TemplateEntry{HookPatterns: []string{"{pillar_topic}/{option_a}/{option_b}/{unknown}"}}
	assert.Equal(t, "未払い対策/内容証明/少額訴訟/{unknown}", c.hook(tmpl, &pillar))

	noOptions := testLexicon().Pillars["tax"]
	tmpl = &models.TemplateEntry{HookPatterns: []string{"{option_a}{option_b}"}}
	assert.Equal(t, "AB", c.hook(tmpl, &noOptions))

	assert.Equal(t, "", c.hook(&models.TemplateEntry{}, &pillar))
}

func TestItemsFormats(t *testing.T) {
	c := seeded(11)
	pool := []string{"a", "b", "c"}

	checkbox := strings.Split(c.items(models.ItemFormatCheckbox, models.CountSpec{10}, pool), "\n")
	assert.Len(t, checkbox, 3)
	for _, line := range checkbox {
		assert.True(t, strings.HasPrefix(line, "☑ "))
	}

	bullet := strings.Split(c.items("", models.CountSpec{2}, pool), "\n")
	assert.Len(t, bullet, 2)
	assert.NotEqual(t, bullet[0], bullet[1])
	for _, line := range bullet {
		assert.True(t, strings.HasPrefix(line, "・"))
	}

	many := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	numbered := strings.Split(c.items(models.ItemFormatNumbered, models.CountSpec{8}, many), "\n")
	require.Len(t, numbered, 6)
	assert.True(t, strings.HasPrefix(numbered[0], "① "))
	assert.True(t, strings.HasPrefix(numbered[5], "⑥ "))

	assert.Equal(t, "", c.items(models.ItemFormatBullet, nil))
}

func TestItemsDefaultCount(t *testing.T) {
	c := seeded(12)
	lines := strings.Split(c.items(models.ItemFormatBullet, nil, []string{"a", "b", "c", "d", "e"}), "\n")
	assert.Len(t, lines, 4)
}

func TestStoryFallback(t *testing.T) {
	c := seeded(13)
	assert.Equal(t, defaultStory, c.story(&models.PillarEntry{}))

	pillar := testLexicon().Pillars["unpaid"]
	assert.Equal(t, "3ヶ月入金がなかった。\n結局、契約書が決め手になった。", c.story(&pillar))
}

func TestCriteriaSamplesAtMostThree(t *testing.T) {
	c := seeded(14)
	pillar := testLexicon().Pillars["unpaid"]
	assert.Len(t, strings.Split(c.criteria(&pillar), "\n"), 3)

	small := models.PillarEntry{CheckItems: []string{"only"}}
	assert.Equal(t, "・only", c.criteria(&small))
}

func TestOptions(t *testing.T) {
	c := seeded(15)

	named := testLexicon().Pillars["unpaid"]
	assert.Equal(t, "A: 内容証明\nB: 少額訴訟", c.options(&named))

	actions := models.PillarEntry{Actions: []string{"x", "y"}}
	got := c.options(&actions)
	assert.Contains(t, []string{"A: x\nB: y", "A: y\nB: x"}, got)

	empty := models.PillarEntry{Options: &models.PillarOptions{}}
	assert.Equal(t, defaultOptions, c.options(&empty))
}

func TestAdviceDefault(t *testing.T) {
	c := seeded(16)
	pillar := testLexicon().Pillars["tax"]
	tmpl := &models.TemplateEntry{}
	assert.Equal(t, defaultAdvice, c.section("{advice}", "", tmpl, &pillar))
	assert.Equal(t, "", c.section("{lesson}", "", tmpl, &pillar))
	assert.Equal(t, "", c.section("{closing}", "", tmpl, &pillar))
}

func TestHashtags(t *testing.T) {
	c := seeded(17)
	assert.Equal(t, "#軽貨物", c.hashtags("tax"))
	assert.Contains(t, []string{"#軽貨物 #未払い", "#軽貨物 #請求"}, c.hashtags("unpaid"))
}
