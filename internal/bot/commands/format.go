package commands

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jensholdgaard/player-auction/internal/auction"
	"github.com/jensholdgaard/player-auction/internal/ledger"
)

// maxListed caps list replies below Discord's message size limit.
const maxListed = 40

// FormatAmount renders a currency amount with digit grouping.
func FormatAmount(n int) string {
	return message.NewPrinter(language.English).Sprintf("₹%d", n)
}

// FormatStatus describes the floor.
func FormatStatus(snap auction.Snapshot) string {
	var b strings.Builder
	st := snap.State
	fmt.Fprintf(&b, "**Phase:** %s", st.Phase)
	fmt.Fprintf(&b, " | available %d, sold %d, unsold %d\n", snap.Counts.Available, snap.Counts.Sold, snap.Counts.Unsold)

	p, ok := snap.ActivePlayer()
	if !ok {
		b.WriteString("No player on the block.")
		return b.String()
	}
	fmt.Fprintf(&b, "**On the block:** %s (%s, base %s)\n", p.Name, p.Role, FormatAmount(p.BasePrice))

	switch {
	case p.TeamID != "":
		buyer := p.TeamID
		if t, ok := snap.Team(p.TeamID); ok {
			buyer = t.Name
		}
		fmt.Fprintf(&b, "**SOLD** to %s for %s", buyer, FormatAmount(p.SoldPrice))
	case st.LotSettled:
		b.WriteString("**UNSOLD**")
	default:
		running := "paused"
		if st.TimerRunning {
			running = "running"
		}
		fmt.Fprintf(&b, "**Current bid:** %s | **Timer:** %ds (%s) | %d bids", FormatAmount(st.CurrentBid), st.Timer, running, len(st.BidHistory))
	}
	return b.String()
}

// FormatStandings lists the teams with their remaining purse.
func FormatStandings(standings []ledger.Standing) string {
	if len(standings) == 0 {
		return "No teams registered yet."
	}
	var b strings.Builder
	b.WriteString("**Teams:**\n")
	for i, s := range standings {
		fmt.Fprintf(&b, "%d. %s (`%s`): %s left of %s, %d players\n",
			i+1, s.Team.Name, s.Team.ID, FormatAmount(s.Remaining), FormatAmount(s.Team.Budget), len(s.Squad))
	}
	return b.String()
}

// FormatPlayers lists the pool, optionally only one status.
func FormatPlayers(snap auction.Snapshot, status string) string {
	var b strings.Builder
	n := 0
	for _, p := range snap.Players {
		if status != "" && string(p.Status) != status {
			continue
		}
		n++
		if n > maxListed {
			continue
		}
		fmt.Fprintf(&b, "%d. %s (%s, base %s) %s", n, p.Name, p.Role, FormatAmount(p.BasePrice), p.Status)
		if p.TeamID != "" {
			fmt.Fprintf(&b, " to `%s` for %s", p.TeamID, FormatAmount(p.SoldPrice))
		}
		b.WriteByte('\n')
	}
	if n == 0 {
		return "No players match."
	}
	if n > maxListed {
		fmt.Fprintf(&b, "...and %d more\n", n-maxListed)
	}
	return b.String()
}

// FormatReport summarises a replayed session.
func FormatReport(r *auction.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Session `%s`** (%s)\n", r.SessionID, r.Phase)
	fmt.Fprintf(&b, "%d reveals, %d bids, %d sold of %d lots\n", r.Reveals, r.Bids, r.Sold(), len(r.Lots))
	for i, l := range r.Lots {
		if i >= maxListed {
			fmt.Fprintf(&b, "...and %d more\n", len(r.Lots)-maxListed)
			break
		}
		if l.Sold {
			fmt.Fprintf(&b, "- %s: sold to `%s` for %s (%s round)\n", l.Name, l.TeamID, FormatAmount(l.Amount), l.Round)
		} else {
			fmt.Fprintf(&b, "- %s: unsold (%s round)\n", l.Name, l.Round)
		}
	}
	return b.String()
}
