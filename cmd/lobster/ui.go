package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/economy"
	"github.com/talgya/lobster-tycoon/internal/engine"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
	faint   = color.New(color.Faint)
)

// eventColor picks how an event line is painted.
func eventColor(e engine.Event) *color.Color {
	switch e.Category {
	case engine.CatRejected, engine.CatIncident:
		return warn
	case engine.CatRival:
		return danger
	case engine.CatAchievement, engine.CatReputation:
		return success
	case engine.CatMarket, engine.CatTravel, engine.CatStory:
		return accent
	case engine.CatGame:
		return color.New(color.FgMagenta, color.Bold)
	default:
		return neutral
	}
}

func printEvent(w io.Writer, e engine.Event) {
	fmt.Fprintf(w, "%s %s\n", faint.Sprintf("[day %d]", e.Day), eventColor(e).Sprint(e.Message))
}

func money(v float64) string {
	return economy.FormatMoney(v)
}

func lbs(n int) string {
	return humanize.Comma(int64(n)) + " lbs"
}

func header(w io.Writer, title string) {
	fmt.Fprintln(w, accent.Sprint(title))
	fmt.Fprintln(w, faint.Sprint(strings.Repeat("─", len([]rune(title)))))
}

func printStatus(w io.Writer, g *engine.Game) {
	s := g.Snapshot()
	town := g.CurrentTown()
	header(w, fmt.Sprintf("Day %d · %s · %s", s.Day, s.Season, town.Name))
	fmt.Fprintf(w, "Cash      %s\n", success.Sprint(money(s.Cash)))
	if s.Debt > 0 {
		fmt.Fprintf(w, "Debt      %s\n", danger.Sprint(money(s.Debt)))
	}
	fmt.Fprintf(w, "Net worth %s\n", money(g.NetWorth()))
	fmt.Fprintf(w, "Tank      %s / %s", lbs(s.Ledger.Total()), lbs(g.Capacity()))
	if s.Ledger.Total() > 0 {
		fmt.Fprintf(w, "  (%.0f%% fresh)", s.Ledger.AverageFreshness())
	}
	fmt.Fprintln(w)
	for _, gi := range config.Grades {
		if n := s.Ledger.Amount(gi.Grade); n > 0 {
			fmt.Fprintf(w, "  %-9s %s\n", gi.Name, lbs(n))
		}
	}
	fmt.Fprintf(w, "Standing  %s (%d)\n", g.ReputationTier().Name, s.Reputation.Score)
	if s.DaysInTrouble > 0 {
		fmt.Fprintln(w, danger.Sprintf("Underwater %d of %d days", s.DaysInTrouble, g.Balance().DaysUntilBankruptcy))
	}
}

func printBoats(w io.Writer, g *engine.Game) {
	boats := g.Boats()
	if len(boats) == 0 {
		fmt.Fprintln(w, faint.Sprint("No boats at the dock."))
		return
	}
	header(w, "Boats")
	for i, b := range boats {
		line := fmt.Sprintf("%d) %-18s %-18s %s at %s/lb  %.0fs left",
			i+1, b.Name, b.Captain, lbs(b.CatchAmount), money(b.PricePerLb), b.TimeLeft)
		if len(b.Interested) > 0 {
			line += warn.Sprintf("  rivals circling (%d)", len(b.Interested))
		}
		fmt.Fprintln(w, line)
	}
}

func printBuyers(w io.Writer, g *engine.Game) {
	buyers := g.Buyers()
	if len(buyers) == 0 {
		fmt.Fprintln(w, faint.Sprint("No buyers today."))
		return
	}
	header(w, "Buyers")
	for i, b := range buyers {
		grades := make([]string, 0, len(b.Accepts))
		for _, gr := range b.Accepts {
			grades = append(grades, string(gr))
		}
		if b.AcceptsRun && !strings.Contains(strings.Join(grades, ","), string(config.GradeRun)) {
			grades = append(grades, string(config.GradeRun))
		}
		line := fmt.Sprintf("%d) %-20s wants %s at %s/lb [%s]",
			i+1, b.Name, lbs(b.WantsAmount), money(b.PricePerLb), strings.Join(grades, ","))
		if !b.CanSell {
			line += faint.Sprintf("  (%s)", b.Reason)
		}
		fmt.Fprintln(w, line)
	}
}

func printShop(w io.Writer, g *engine.Game) {
	header(w, "Equipment")
	owned := g.Snapshot().Equipment
	for _, e := range config.EquipmentList {
		mark := " "
		for _, o := range owned {
			if o == e.ID {
				mark = success.Sprint("✓")
			}
		}
		req := ""
		if e.Requires != "" {
			req = faint.Sprintf(" (needs %s)", e.Requires)
		}
		fmt.Fprintf(w, "%s %-18s %-8s %s%s\n", mark, e.ID, money(e.Cost), e.Description, req)
	}
}

func printTowns(w io.Writer, g *engine.Game) {
	header(w, "Towns")
	here := g.CurrentTown().ID
	for _, t := range config.Towns {
		status := ""
		switch ok, reason := g.CanTravelTo(t.ID); {
		case t.ID == here:
			status = success.Sprint("you are here")
		case ok:
			status = fmt.Sprintf("trip %s", money(t.TravelCost))
		default:
			status = faint.Sprint(reason)
		}
		fmt.Fprintf(w, "%-14s %-16s %s\n", t.ID, t.Name, status)
	}
}

func printContracts(w io.Writer, g *engine.Game) {
	offers, active := g.Contracts()
	if len(offers)+len(active) == 0 {
		fmt.Fprintln(w, faint.Sprint("No contracts."))
		return
	}
	if len(offers) > 0 {
		header(w, "Offers")
		for i, c := range offers {
			fmt.Fprintf(w, "%d) %-22s %s/week for %d weeks at %s/lb, %s or better\n",
				i+1, c.Client, lbs(c.PerWeek), c.Weeks, money(c.PricePerLb), c.MinGrade)
		}
	}
	if len(active) > 0 {
		header(w, "Running")
		for i, c := range active {
			fmt.Fprintf(w, "%d) %-22s %d/%d this week, %d weeks left\n",
				i+1, c.Client, c.DeliveredWeek, c.PerWeek, c.WeeksLeft)
		}
	}
}

func printStory(w io.Writer, s *engine.Story) {
	header(w, s.Title)
	fmt.Fprintln(w, s.Text)
	for i, c := range s.Choices {
		cost := ""
		if c.Cost > 0 {
			cost = faint.Sprint(" " + money(c.Cost))
		}
		fmt.Fprintf(w, "%d) %s%s\n", i+1, c.Text, cost)
	}
}

func printStandings(w io.Writer, g *engine.Game) {
	header(w, "Standings")
	for i, st := range g.Standings() {
		name := st.Name
		if st.Player {
			name = success.Sprint(name)
		}
		fmt.Fprintf(w, "%d. %-16s %s\n", i+1, name, money(st.NetWorth))
	}
}

func printLegacy(w io.Writer, l engine.Legacy) {
	header(w, "Legacy")
	fmt.Fprintf(w, "Title             %s\n", engine.PrestigeTitle(l.Prestige))
	fmt.Fprintf(w, "Prestige          %d\n", l.Prestige)
	fmt.Fprintf(w, "Games completed   %d\n", l.GamesCompleted)
	fmt.Fprintf(w, "Lifetime earnings %s\n", money(l.LifetimeEarnings))
	fmt.Fprintf(w, "Best cash         %s\n", money(l.BestCash))
	fmt.Fprintf(w, "Achievements      %d of %d\n", len(l.Achievements), len(engine.Achievements))
	for _, id := range l.Achievements {
		if a, ok := engine.AchievementByID(id); ok {
			fmt.Fprintf(w, "  %s %s\n", success.Sprint("★"), a.Name)
		}
	}
}

func printSummary(w io.Writer, s *engine.Summary) {
	if s == nil {
		return
	}
	c := success
	if s.Outcome == engine.OutcomeBankrupt {
		c = danger
	}
	header(w, "Game over")
	fmt.Fprintf(w, "%s on day %d: %s\n", c.Sprint(s.Outcome), s.Day, s.Reason)
	fmt.Fprintf(w, "Cash %s, net worth %s\n", money(s.Cash), money(s.NetWorth))
	if s.Goal != nil {
		fmt.Fprintf(w, "%s %s\n", s.Goal.Title, strings.Repeat("★", s.Goal.Stars))
	}
}
