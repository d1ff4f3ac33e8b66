package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/entropy"
	"github.com/talgya/lobster-tycoon/internal/social"
)

// ErrUnknownChoice is returned when a story choice index is out of range.
var ErrUnknownChoice = errors.New("unknown story choice")

// Storylines is the state of the captain stories: the one waiting on the
// player and the lasting deals earlier answers made.
type Storylines struct {
	Pending   *Story             `json:"pending,omitempty"`
	Completed []string           `json:"completed,omitempty"` // story:captain keys
	Absent    map[string]int     `json:"absent,omitempty"`    // captain -> days away
	Premiums  map[string]float64 `json:"premiums,omitempty"`  // captain -> price multiplier
	Lost      []string           `json:"lost,omitempty"`      // captains gone to rivals
	Exclusive []string           `json:"exclusive,omitempty"` // rivals never bid on these
	// SecretSpot is the captain whose catch comes in all select.
	SecretSpot string    `json:"secret_spot,omitempty"`
	Delivery   *Delivery `json:"delivery,omitempty"`
}

func (s Storylines) clone() Storylines {
	c := s
	if s.Pending != nil {
		p := *s.Pending
		p.Choices = slices.Clone(s.Pending.Choices)
		c.Pending = &p
	}
	c.Completed = slices.Clone(s.Completed)
	c.Absent = copyMap(s.Absent)
	c.Premiums = copyMap(s.Premiums)
	c.Lost = slices.Clone(s.Lost)
	c.Exclusive = slices.Clone(s.Exclusive)
	if s.Delivery != nil {
		d := *s.Delivery
		c.Delivery = &d
	}
	return c
}

// Story is a captain's request waiting on the player's answer.
type Story struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Captain string        `json:"captain"`
	Text    string        `json:"text"`
	Day     int           `json:"day"`
	Choices []StoryChoice `json:"choices"`
}

// StoryChoice is one answer and what it costs up front.
type StoryChoice struct {
	Text string  `json:"text"`
	Cost float64 `json:"cost,omitempty"`
}

// Delivery is a prepaid catch arriving on a later day.
type Delivery struct {
	Captain string `json:"captain"`
	Amount  int    `json:"amount"`
	Day     int    `json:"day"`
}

type storyChoice struct {
	StoryChoice
	apply func(g *Game, captain string) string
}

// storyline is a captain story: when it can open and what each answer does.
type storyline struct {
	id       string
	title    string
	minTrust int
	maxTrust int // exclusive; 0 means no ceiling
	chance   float64
	can      func(g *Game) bool
	text     func(g *Game, captain string) string
	choices  []storyChoice
}

var storylines = []storyline{
	{
		id: "boat_repair", title: "A Captain in Need", minTrust: 20, chance: 0.02,
		text: func(_ *Game, c string) string {
			return fmt.Sprintf("%s's engine is failing. Repairs run $1,500, or the boat sits idle for weeks.", c)
		},
		choices: []storyChoice{
			{StoryChoice{"Lend $1,500", 1500}, func(g *Game, c string) string {
				g.shiftTrust(c, 30)
				g.shiftReputation(10)
				return fmt.Sprintf("%s is deeply grateful. \"I won't forget this.\"", c)
			}},
			{StoryChoice{"Offer $500", 500}, func(g *Game, c string) string {
				g.shiftTrust(c, 10)
				return fmt.Sprintf("%s thanks you. \"Every bit helps.\"", c)
			}},
			{StoryChoice{"Can't help right now", 0}, func(g *Game, c string) string {
				g.shiftTrust(c, -10)
				return fmt.Sprintf("%s nods. \"Times are tough for everyone.\"", c)
			}},
		},
	},
	{
		id: "family_emergency", title: "Family Matters", minTrust: 30, chance: 0.015,
		text: func(_ *Game, c string) string {
			return fmt.Sprintf("%s's daughter is getting married and they want a few days off, but worry about losing you to the other dealers.", c)
		},
		choices: []storyChoice{
			{StoryChoice{"Family first. I'll wait for you", 0}, func(g *Game, c string) string {
				g.shiftTrust(c, 25)
				g.shiftReputation(5)
				g.s.Stories.Absent[c] = 3
				return fmt.Sprintf("%s lights up. \"I'll bring you the best catch when I'm back.\"", c)
			}},
			{StoryChoice{"Business is business", 0}, func(g *Game, c string) string {
				g.shiftTrust(c, -15)
				return fmt.Sprintf("%s frowns. \"I see how it is.\"", c)
			}},
		},
	},
	{
		id: "secret_spot", title: "The Secret Spot", minTrust: 50, chance: 0.01,
		can: func(g *Game) bool { return g.s.Stories.SecretSpot == "" },
		text: func(_ *Game, c string) string {
			return fmt.Sprintf("%s pulls you aside. \"Thirty years on these waters and I know a spot nobody's touched. I only share it with people I trust.\"", c)
		},
		choices: []storyChoice{
			{StoryChoice{"I'm honored. Show me", 0}, func(g *Game, c string) string {
				g.s.Stories.SecretSpot = c
				g.setTrust(c, social.MaxTrust)
				return fmt.Sprintf("%s grins. \"From now on you get the good stuff. Select, every time.\"", c)
			}},
		},
	},
	{
		id: "rival_poaching", title: "A Tempting Offer", minTrust: 10, maxTrust: 40, chance: 0.03,
		can: func(g *Game) bool { return len(g.s.Rivals) > 0 },
		text: func(g *Game, c string) string {
			return fmt.Sprintf("%s looks uneasy. \"%s offered me 20%% more for exclusive rights to my catch...\"", c, g.s.Rivals[0].Name)
		},
		choices: []storyChoice{
			{StoryChoice{"Match the offer (+20% on their catch)", 0}, func(g *Game, c string) string {
				g.s.Stories.Premiums[c] = 1.2
				g.shiftTrust(c, 15)
				return fmt.Sprintf("%s shakes your hand. \"Deal.\"", c)
			}},
			{StoryChoice{"I won't be held hostage", 0}, func(g *Game, c string) string {
				g.setTrust(c, 0)
				g.s.Stories.Lost = append(g.s.Stories.Lost, c)
				return fmt.Sprintf("%s shrugs and walks over to %s.", c, g.s.Rivals[0].Name)
			}},
			{StoryChoice{"Take all their catch, guaranteed, at 10% more", 0}, func(g *Game, c string) string {
				g.s.Stories.Premiums[c] = 1.1
				g.s.Stories.Exclusive = append(g.s.Stories.Exclusive, c)
				g.shiftTrust(c, 20)
				return fmt.Sprintf("%s considers, then nods. \"A guaranteed sale is worth more than a few cents.\"", c)
			}},
		},
	},
	{
		id: "big_catch", title: "Once in a Lifetime", minTrust: 40, chance: 0.01,
		can: func(g *Game) bool { return g.s.Stories.Delivery == nil },
		text: func(_ *Game, c string) string {
			return fmt.Sprintf("%s radios in. \"A massive haul, 500 lbs of select! I need $3,000 up front to pay the crew overtime. You in?\"", c)
		},
		choices: []storyChoice{
			{StoryChoice{"Take my money", 3000}, func(g *Game, c string) string {
				g.s.Stories.Delivery = &Delivery{Captain: c, Amount: 500, Day: g.s.Day + 1}
				return fmt.Sprintf("%s whoops. \"Coming in tomorrow with the catch of a lifetime!\"", c)
			}},
			{StoryChoice{"Too risky for me", 0}, func(g *Game, c string) string {
				g.shiftTrust(c, -5)
				if len(g.s.Rivals) == 0 {
					return fmt.Sprintf("%s sighs and heads back out.", c)
				}
				r := &g.s.Rivals[g.src.Int(0, len(g.s.Rivals)-1)]
				r.Inventory += 400
				return fmt.Sprintf("%s sighs. \"I'll see if %s is interested.\"", c, r.Name)
			}},
		},
	},
}

func storylineByID(id string) (storyline, bool) {
	i := slices.IndexFunc(storylines, func(s storyline) bool { return s.id == id })
	if i < 0 {
		return storyline{}, false
	}
	return storylines[i], true
}

func storyKey(id, captain string) string {
	return id + ":" + captain
}

// rollStory gives each captain at the dock a chance to open a story, at most
// one at a time. Each story plays once per captain.
func (g *Game) rollStory() {
	st := &g.s.Stories
	if st.Pending != nil {
		return
	}
	seen := map[string]bool{}
	for _, b := range g.s.Boats {
		if seen[b.Captain] {
			continue
		}
		seen[b.Captain] = true
		trust := g.s.NPCs.Get(social.RoleSeller, b.Captain).Trust
		for _, sl := range storylines {
			if slices.Contains(st.Completed, storyKey(sl.id, b.Captain)) {
				continue
			}
			if trust < sl.minTrust || (sl.maxTrust > 0 && trust >= sl.maxTrust) {
				continue
			}
			if sl.can != nil && !sl.can(g) {
				continue
			}
			if !g.src.Chance(sl.chance) {
				continue
			}
			g.openStory(sl, b.Captain)
			return
		}
	}
}

func (g *Game) openStory(sl storyline, captain string) {
	story := &Story{
		ID:      sl.id,
		Title:   sl.title,
		Captain: captain,
		Text:    sl.text(g, captain),
		Day:     g.s.Day,
	}
	for _, c := range sl.choices {
		story.Choices = append(story.Choices, c.StoryChoice)
	}
	g.s.Stories.Pending = story
	g.emit(CatStory, "%s: %s", sl.title, story.Text)
	g.log.Debug("story opened", "id", sl.id, "captain", captain, "day", g.s.Day)
}

// PendingStory returns the story waiting on an answer, or nil.
func (g *Game) PendingStory() *Story {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.s.Stories.Pending
	if p == nil {
		return nil
	}
	c := *p
	c.Choices = slices.Clone(p.Choices)
	return &c
}

// ResolveStory answers the pending story with the choice at index. It
// returns false, changing nothing, when no story is waiting or the player
// cannot pay for the choice.
func (g *Game) ResolveStory(choice int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.s.Over() {
		return g.reject("The season is over"), nil
	}
	p := g.s.Stories.Pending
	if p == nil {
		return g.reject("No captain is waiting on you"), nil
	}
	sl, ok := storylineByID(p.ID)
	if !ok || choice < 0 || choice >= len(sl.choices) {
		return false, fmt.Errorf("story %s choice %d: %w", p.ID, choice, ErrUnknownChoice)
	}
	c := sl.choices[choice]
	if c.Cost > g.s.Cash {
		return g.reject("Need %s, have %s", money(c.Cost), money(g.s.Cash)), nil
	}

	g.ensureStories()
	if c.Cost > 0 {
		g.spend(c.Cost)
	}
	outcome := c.apply(g, p.Captain)
	st := &g.s.Stories
	st.Completed = append(st.Completed, storyKey(p.ID, p.Captain))
	st.Pending = nil

	g.emit(CatStory, "%s", outcome)
	g.log.Info("story resolved", "id", p.ID, "captain", p.Captain, "choice", choice, "cash", g.s.Cash)
	g.verify("story")
	g.checkAchievements()
	return true, nil
}

// lapseStory drops an unanswered story at day end. It can come up again.
func (g *Game) lapseStory() {
	if p := g.s.Stories.Pending; p != nil {
		g.s.Stories.Pending = nil
		g.emit(CatStory, "%s stopped waiting for an answer", p.Captain)
	}
}

// startStoryDay counts down absences and lands a delivery due today. The
// catch only fills free tank space; the rest goes back on the boat.
func (g *Game) startStoryDay() {
	st := &g.s.Stories
	for c, days := range st.Absent {
		if days <= 1 {
			delete(st.Absent, c)
			continue
		}
		st.Absent[c] = days - 1
	}

	d := st.Delivery
	if d == nil || d.Day > g.s.Day {
		return
	}
	st.Delivery = nil
	n := min(d.Amount, max(0, g.capacity()-g.s.Ledger.Total()))
	if n > 0 {
		g.s.Ledger.AddLot(g.src.ID(), config.GradeSelect, n, 100, g.decayRate(), g.s.Day)
		g.s.NPCs.RecordInteraction(social.RoleSeller, d.Captain, n)
		g.s.Stats.TotalBought += n
		g.s.DailyBought += n
	}
	if n < d.Amount {
		g.emit(CatStory, "%s delivered %d lbs of select; %d lbs would not fit in the tank", d.Captain, n, d.Amount-n)
	} else {
		g.emit(CatStory, "%s delivered %d lbs of select as promised", d.Captain, n)
	}
	g.verify("delivery")
}

// availableCaptains are the captains who sell at the dock today.
func (g *Game) availableCaptains() []config.Captain {
	st := g.s.Stories
	out := make([]config.Captain, 0, len(config.Captains))
	for _, c := range config.Captains {
		if st.Absent[c.Name] > 0 || slices.Contains(st.Lost, c.Name) {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return config.Captains
	}
	return out
}

// captainPremium is the agreed markup on a captain's asking price.
func (g *Game) captainPremium(captain string) float64 {
	if p, ok := g.s.Stories.Premiums[captain]; ok && p > 0 {
		return p
	}
	return 1
}

func (g *Game) ensureStories() {
	st := &g.s.Stories
	if st.Absent == nil {
		st.Absent = make(map[string]int)
	}
	if st.Premiums == nil {
		st.Premiums = make(map[string]float64)
	}
}

func (g *Game) shiftTrust(captain string, delta int) {
	g.s.NPCs.Adjust(social.RoleSeller, captain, delta)
}

func (g *Game) setTrust(captain string, v int) {
	npc := g.s.NPCs.Get(social.RoleSeller, captain)
	g.s.NPCs.Adjust(social.RoleSeller, captain, v-npc.Trust)
}

func (g *Game) shiftReputation(delta int) {
	g.reportReputation(g.s.Reputation.Adjust(delta))
}

// pickCaptain chooses today's captain for a boat.
func (g *Game) pickCaptain() config.Captain {
	return entropy.Choice(g.src, g.availableCaptains())
}
