package gamification

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"vocabclash/internal/models"
)

// Metric names the progress counter an achievement is measured against
type Metric string

const (
	MetricCorrectAnswers  Metric = "correct_answers"
	MetricWordsLearned    Metric = "words_learned"
	MetricDailyStreak     Metric = "daily_streak"
	MetricPerfectSessions Metric = "perfect_sessions"
	MetricTotalXP         Metric = "total_xp"
)

// CategoryOneOff is the category of achievements that have a single tier
const CategoryOneOff = "one_off"

// Snapshot is the progress a user has made at evaluation time
type Snapshot struct {
	CorrectAnswers  int
	WordsLearned    int
	DailyStreak     int
	PerfectSessions int
	TotalXP         int
}

// Value returns the counter m refers to
func (s Snapshot) Value(m Metric) int {
	switch m {
	case MetricCorrectAnswers:
		return s.CorrectAnswers
	case MetricWordsLearned:
		return s.WordsLearned
	case MetricDailyStreak:
		return s.DailyStreak
	case MetricPerfectSessions:
		return s.PerfectSessions
	case MetricTotalXP:
		return s.TotalXP
	}
	return 0
}

// Tier is one step of a tiered achievement family
type Tier struct {
	Threshold int
	ID        string
	XPReward  int
}

// Family is a tiered achievement. Tiers are sorted by ascending threshold.
type Family struct {
	ID          string
	Name        string
	Description string // {n} is replaced by the relevant threshold
	Icon        string
	Metric      Metric
	Tiers       []Tier
}

// OneOff is an achievement unlocked once a metric reaches a threshold
type OneOff struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Metric      Metric
	Threshold   int
	XPReward    int
}

// Unlock is an achievement that became available in an evaluation
type Unlock struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	XPReward int    `json:"xp_reward"`
}

// Catalog is the immutable set of achievement definitions
type Catalog struct {
	oneOffs  []OneOff
	families []Family
	byID     map[string]Unlock
}

// NewCatalog builds a catalog from definitions. The slices are copied so later
// changes by the caller do not leak into the catalog.
func NewCatalog(oneOffs []OneOff, families []Family) *Catalog {
	c := &Catalog{
		oneOffs:  append([]OneOff(nil), oneOffs...),
		families: make([]Family, len(families)),
		byID:     make(map[string]Unlock),
	}
	for _, o := range c.oneOffs {
		c.byID[o.ID] = Unlock{ID: o.ID, Category: CategoryOneOff, Name: o.Name, Level: 1, XPReward: o.XPReward}
	}
	for i, f := range families {
		f.Tiers = append([]Tier(nil), f.Tiers...)
		c.families[i] = f
		for level, t := range f.Tiers {
			c.byID[t.ID] = Unlock{ID: t.ID, Category: f.ID, Name: f.Name, Level: level + 1, XPReward: t.XPReward}
		}
	}
	return c
}

// DefaultCatalog returns the built-in achievements
func DefaultCatalog() *Catalog {
	return NewCatalog(
		[]OneOff{
			{
				ID:          "first_correct",
				Name:        "First Step",
				Description: "Answer your first question correctly",
				Icon:        "star",
				Metric:      MetricCorrectAnswers,
				Threshold:   1,
				XPReward:    50,
			},
		},
		[]Family{
			{
				ID:          "vocab_builder",
				Name:        "Vocab Builder",
				Description: "Learn {n} words",
				Icon:        "book",
				Metric:      MetricWordsLearned,
				Tiers: []Tier{
					{50, "words_50", 150},
					{100, "words_100", 200},
					{200, "words_200", 300},
					{350, "words_350", 450},
					{550, "words_550", 600},
					{800, "words_800", 800},
					{1100, "words_1100", 1000},
					{1450, "words_1450", 1250},
					{1850, "words_1850", 1500},
					{2300, "words_2300", 2000},
				},
			},
			{
				ID:          "streak_warrior",
				Name:        "Streak Warrior",
				Description: "Maintain a {n}-day study streak",
				Icon:        "flame",
				Metric:      MetricDailyStreak,
				Tiers: []Tier{
					{3, "streak_3", 50},
					{7, "streak_7", 100},
					{14, "streak_14", 200},
					{21, "streak_21", 300},
					{30, "streak_30", 500},
					{50, "streak_50", 750},
					{75, "streak_75", 1000},
					{100, "streak_100", 1500},
					{180, "streak_180", 2500},
					{365, "streak_365", 5000},
				},
			},
			{
				ID:          "perfectionist",
				Name:        "Perfectionist",
				Description: "Complete {n} sessions with 100% accuracy",
				Icon:        "trophy",
				Metric:      MetricPerfectSessions,
				Tiers: []Tier{
					{1, "perfect_1", 50},
					{5, "perfect_5", 150},
					{10, "perfect_10", 300},
					{25, "perfect_25", 600},
					{50, "perfect_50", 1000},
					{100, "perfect_100", 2000},
					{200, "perfect_200", 4000},
					{500, "perfect_500", 10000},
				},
			},
			{
				ID:          "xp_enthusiast",
				Name:        "XP Enthusiast",
				Description: "Earn {n} total XP",
				Icon:        "star",
				Metric:      MetricTotalXP,
				Tiers: []Tier{
					{1000, "xp_1k", 100},
					{5000, "xp_5k", 250},
					{15000, "xp_15k", 500},
					{40000, "xp_40k", 1000},
					{100000, "xp_100k", 2500},
					{250000, "xp_250k", 5000},
					{500000, "xp_500k", 10000},
					{1000000, "xp_1m", 25000},
				},
			},
		},
	)
}

// OneOffs returns a copy of the one-off definitions
func (c *Catalog) OneOffs() []OneOff {
	return append([]OneOff(nil), c.oneOffs...)
}

// Families returns a copy of the tiered families
func (c *Catalog) Families() []Family {
	out := make([]Family, len(c.families))
	for i, f := range c.families {
		f.Tiers = append([]Tier(nil), f.Tiers...)
		out[i] = f
	}
	return out
}

// Lookup returns the unlock record of an achievement id
func (c *Catalog) Lookup(id string) (Unlock, bool) {
	u, ok := c.byID[id]
	return u, ok
}

// CheckNewAchievements returns every achievement the snapshot qualifies for
// that is not in unlocked. One-offs come first, then families in catalog order
// with tiers ascending. Several tiers of a family can unlock at once.
func (c *Catalog) CheckNewAchievements(s Snapshot, unlocked map[string]bool) []Unlock {
	var out []Unlock
	for _, o := range c.oneOffs {
		if unlocked[o.ID] || s.Value(o.Metric) < o.Threshold {
			continue
		}
		out = append(out, c.byID[o.ID])
	}
	for _, f := range c.families {
		value := s.Value(f.Metric)
		for _, t := range f.Tiers {
			if value < t.Threshold {
				break
			}
			if !unlocked[t.ID] {
				out = append(out, c.byID[t.ID])
			}
		}
	}
	return out
}

// ApplyUnlocks records unlocks on state and credits their XP rewards through
// AddXP. Ids that are already unlocked are skipped, so applying the same list
// twice is a no-op. Reward XP is not re-evaluated against the catalog here. A
// negative reward rejects the whole list and leaves state untouched.
func ApplyUnlocks(state *models.ProgressionState, unlocks []Unlock) (applied []Unlock, rewardXP int, err error) {
	for _, u := range unlocks {
		if u.XPReward < 0 {
			return nil, 0, errors.Wrapf(ErrNegativeXP, "achievement %s", u.ID)
		}
	}
	if state.UnlockedAchievements == nil {
		state.UnlockedAchievements = make(map[string]bool)
	}
	for _, u := range unlocks {
		if state.UnlockedAchievements[u.ID] {
			continue
		}
		if _, _, err := AddXP(state, u.XPReward); err != nil {
			return applied, rewardXP, err
		}
		state.UnlockedAchievements[u.ID] = true
		rewardXP += u.XPReward
		applied = append(applied, u)
	}
	return applied, rewardXP, nil
}

// SnapshotOf builds a snapshot from stored progression and review counters
func SnapshotOf(state *models.ProgressionState, correctAnswers, wordsLearned int) Snapshot {
	return Snapshot{
		CorrectAnswers:  correctAnswers,
		WordsLearned:    wordsLearned,
		DailyStreak:     state.DailyStreak,
		PerfectSessions: state.PerfectSessionCount,
		TotalXP:         state.TotalXP,
	}
}

// AchievementStatus is the display state of a one-off or a family
type AchievementStatus struct {
	ID               string `json:"id"`
	Category         string `json:"category"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Icon             string `json:"icon"`
	Unlocked         bool   `json:"unlocked"`
	Level            int    `json:"level"`
	TotalTiers       int    `json:"total_tiers"`
	CurrentValue     int    `json:"current_value"`
	CurrentThreshold int    `json:"current_threshold,omitempty"`
	NextThreshold    int    `json:"next_threshold,omitempty"`
}

// AchievementStatuses lists every one-off and every family with the highest
// unlocked tier and the distance to the next one.
func (c *Catalog) AchievementStatuses(unlocked map[string]bool, s Snapshot) []AchievementStatus {
	out := make([]AchievementStatus, 0, len(c.oneOffs)+len(c.families))
	for _, o := range c.oneOffs {
		st := AchievementStatus{
			ID:           o.ID,
			Category:     CategoryOneOff,
			Name:         o.Name,
			Description:  o.Description,
			Icon:         o.Icon,
			Unlocked:     unlocked[o.ID],
			TotalTiers:   1,
			CurrentValue: s.Value(o.Metric),
		}
		if st.Unlocked {
			st.Level = 1
			st.CurrentThreshold = o.Threshold
		} else {
			st.NextThreshold = o.Threshold
		}
		out = append(out, st)
	}

	for _, f := range c.families {
		highest := -1
		for i := len(f.Tiers) - 1; i >= 0; i-- {
			if unlocked[f.Tiers[i].ID] {
				highest = i
				break
			}
		}

		st := AchievementStatus{
			Category:     f.ID,
			Name:         f.Name,
			Icon:         f.Icon,
			Unlocked:     highest >= 0,
			Level:        highest + 1,
			TotalTiers:   len(f.Tiers),
			CurrentValue: s.Value(f.Metric),
		}
		threshold := 0
		if highest >= 0 {
			st.ID = f.Tiers[highest].ID
			st.CurrentThreshold = f.Tiers[highest].Threshold
			threshold = st.CurrentThreshold
		}
		if highest+1 < len(f.Tiers) {
			next := f.Tiers[highest+1]
			if st.ID == "" {
				st.ID = next.ID
			}
			st.NextThreshold = next.Threshold
			threshold = next.Threshold
		}
		st.Description = strings.ReplaceAll(f.Description, "{n}", strconv.Itoa(threshold))
		out = append(out, st)
	}
	return out
}

// IsPerfect reports whether a session counts as perfect: at least ten cards,
// all of them answered correctly.
func IsPerfect(cardsReviewed, correctAnswers int) bool {
	return cardsReviewed >= perfectSessionMinCards && correctAnswers == cardsReviewed
}

const perfectSessionMinCards = 10
