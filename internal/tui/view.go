package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/cryptoguard/walletwatch/internal/render"
)

const (
	title           = "WALLET WATCH"
	maxTableRows    = 10
	selectionMarker = "▸"
)

func header(clock string) string {
	h := headerStyle.Render(title)
	if clock == "" {
		return h
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, h, "  ", mutedStyle.Render(clock))
}

func card(name, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(name) + "\n" + value)
}

// dashboardView renders the whole dashboard screen.
func dashboardView(v render.DashboardView, clock string) string {
	var b strings.Builder

	b.WriteString(header(clock))
	b.WriteString("\n")

	if v.Loading {
		b.WriteString(mutedStyle.Render("Loading dashboard..."))
		b.WriteString("\n")
	}
	if v.Error != "" {
		b.WriteString(errorStyle.Render(v.Error))
		b.WriteString("\n")
	}

	wallet, count, sent := v.WalletShort, render.Placeholder, render.Placeholder
	if v.Summary != nil {
		wallet, count, sent = v.Summary.Wallet, v.Summary.TransactionCount, v.Summary.TotalEthSent
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Wallet", wallet),
		card("Transactions", count),
		card("Total ETH sent", sent),
	))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("TOP CRYPTOCURRENCIES"))
	b.WriteString("\n")
	b.WriteString(coinList(v.Coins))

	b.WriteString(sectionStyle.Render("PRICE HISTORY"))
	b.WriteString("\n")
	b.WriteString(historySummary(v))
	b.WriteString("\n")

	if v.Transactions != nil {
		b.WriteString(sectionStyle.Render("RECENT TRANSACTIONS"))
		b.WriteString("\n")
		b.WriteString(transactionTable(*v.Transactions))
		b.WriteString("\n")
	}

	return b.String()
}

func coinList(coins []render.CoinRow) string {
	if len(coins) == 0 {
		return mutedStyle.Render("Market data unavailable.") + "\n"
	}

	var b strings.Builder
	for _, c := range coins {
		change := downStyle.Render(c.Change24h)
		if c.Positive {
			change = upStyle.Render(c.Change24h)
		}
		symbol := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(fmt.Sprintf("%-6s", c.Symbol))
		line := fmt.Sprintf("%s %-14s %14s  %s", symbol, c.Name, c.Price, change)
		if c.Selected {
			b.WriteString(selectionMarker + " " + selectedStyle.Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func historySummary(v render.DashboardView) string {
	switch {
	case v.Selected == "":
		return mutedStyle.Render("No coin selected.")
	case v.LoadingCoin || v.Chart == nil:
		return mutedStyle.Render("Loading...")
	case len(v.Chart.Points) == 0:
		return mutedStyle.Render(v.Chart.Label + ": " + v.Chart.EmptyMessage)
	}

	lines := []string{fmt.Sprintf("%s · %d samples", v.Chart.Label, len(v.Chart.Points))}
	if o := v.Overlay; o != nil {
		lines = append(lines, fmt.Sprintf("last %s (%s)", o.Last, o.Change))
		if o.EMA != "" {
			lines = append(lines, "EMA20 "+o.EMA)
		}
		if o.RSI != "" {
			lines = append(lines, "RSI14 "+o.RSI)
		}
	}
	return strings.Join(lines, "\n")
}

func transactionTable(t render.TransactionTable) string {
	if t.Empty() {
		return mutedStyle.Render(t.EmptyMessage)
	}

	rows := t.Rows
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(subtle)).
		Headers("HASH", "FROM", "TO", "VALUE (ETH)", "TIME")
	for _, r := range rows {
		tbl.Row(r.HashShort, r.FromShort, r.ToShort, r.Value, r.Time)
	}

	out := tbl.Render()
	if more := len(t.Rows) - len(rows); more > 0 {
		out += "\n" + mutedStyle.Render(fmt.Sprintf("... and %d more", more))
	}
	return out
}

func logsView(t render.TransactionTable, errMessage string) string {
	var b strings.Builder
	b.WriteString(header(""))
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("STORED LOGS"))
	b.WriteString("\n")
	if errMessage != "" {
		b.WriteString(errorStyle.Render(errMessage))
	} else {
		b.WriteString(transactionTable(t))
	}
	b.WriteString("\n")
	return b.String()
}
