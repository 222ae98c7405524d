package tui

import (
	"fmt"
	"strings"

	"crypto_dash/internal/domain"
	"crypto_dash/internal/service"
	"crypto_dash/pkg/format"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	if m.showChart {
		return m.chartView()
	}
	return m.dashboardView()
}

func (m *Model) dashboardView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📊 CRYPTO DASHBOARD"))
	b.WriteString("\n\n")

	switch m.state.Status {
	case service.StatusIdle, service.StatusLoading:
		b.WriteString(dimStyle.Render("🔄 Loading assets..."))
		b.WriteString("\n")
		return b.String()
	case service.StatusError:
		b.WriteString(errorStyle.Render("❌ Failed to load assets"))
		b.WriteString("\n")
		if m.state.Err != nil {
			b.WriteString(dimStyle.Render(m.state.Err.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n[r] Try again   [q] Quit\n")
		return b.String()
	}

	b.WriteString(m.summaryView())
	b.WriteString("\n")
	b.WriteString(m.filterView())
	b.WriteString("\n\n")
	b.WriteString(m.tableView())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m *Model) summaryView() string {
	s := m.state.Summary
	card := func(label, value string, style lipgloss.Style) string {
		return cardStyle.Render(cardLabel.Render(label) + "\n" + style.Render(value))
	}
	cards := []string{
		card("Total Market Cap", format.MarketCap(s.TotalMarketCap), cardValue),
		card("24h Volume", format.MarketCap(s.TotalVolume), cardValue),
		card("Favorites", fmt.Sprintf("%d", s.FavoritesCount), favValue),
		card("Assets", fmt.Sprintf("%d", s.AssetCount), cardValue),
	}
	if m.state.GlobalMarketCap > 0 {
		cards = append(cards, card("Global Market Cap", format.MarketCap(m.state.GlobalMarketCap), cardValue))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m *Model) filterView() string {
	f := m.state.Filter
	query := f.SearchQuery
	if m.searching {
		query += "█"
	} else if query == "" {
		query = dimStyle.Render("press / to search")
	}

	favTab := inactiveTab.Render("☆ All")
	if f.FavoritesOnly {
		favTab = activeTab.Render("★ Favorites")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		searchStyle.Render("🔍 "+query),
		"  ",
		dimStyle.Render("Sort: ")+f.SortKey.Label()+" ("+f.SortOrder.Label()+")",
		"  ",
		favTab,
	)
}

func (m *Model) tableView() string {
	rows := m.state.Displayed
	if len(rows) == 0 {
		if m.state.Filter.FavoritesOnly {
			return dimStyle.Render("No favorites yet. Press space on an asset to add it.")
		}
		return dimStyle.Render("No assets match your search.")
	}

	var b strings.Builder
	b.WriteString(colHeader.Render(fmt.Sprintf("    %-20s %-6s %16s %9s %9s %12s %12s",
		"Name", "Symbol", "Price", "24h", "7d", "Market Cap", "Volume")))
	b.WriteString("\n")

	for i, a := range rows {
		star := " "
		if m.dashboard.IsFavorite(a.ID) {
			star = favoriteStyle.Render("★")
		}
		icon := " "
		if m.icons != nil && m.icons.HasIcon(a.ID) {
			icon = iconStyle.Render("◆")
		}
		ch24 := a.PriceChangePercentage24h
		ch7 := a.PriceChangePercentage7dInCurrency
		line := fmt.Sprintf(" %s%s %-20s %-6s %16s %s %s %12s %12s",
			star,
			icon,
			truncate(a.Name, 20),
			strings.ToUpper(a.Symbol),
			format.Price(a.CurrentPrice),
			changeStyle(ch24).Render(fmt.Sprintf("%9s", format.Percent(ch24))),
			changeStyle(ch7).Render(fmt.Sprintf("%9s", format.Percent(ch7))),
			format.MarketCap(a.MarketCap),
			format.Volume(a.TotalVolume),
		)
		if i == m.cursor {
			line = selectedRow.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) footerView() string {
	snap := m.metrics.Snapshot()
	keys := "↑/↓ move • enter chart • space favorite • / search • s sort • o order • f favorites • q quit"
	stats := fmt.Sprintf("requests %d • retries %d • errors %d • icons cached %d",
		snap.RequestsTotal, snap.RetriesTotal, snap.ErrorsTotal, snap.IconsCached)
	if snap.CircuitOpen {
		stats += " • " + errorStyle.Render("api paused")
	}
	return dimStyle.Render(keys) + "\n" + dimStyle.Render(stats)
}

func (m *Model) chartView() string {
	s := m.session
	var b strings.Builder

	name := s.AssetName
	if name == "" {
		name = m.selected.Name
	}
	b.WriteString(titleStyle.Render("📈 " + name + " Price Chart"))
	b.WriteString("\n")
	b.WriteString(m.timeframeBar())
	b.WriteString("\n\n")

	switch s.Phase {
	case domain.PhaseLoading:
		b.WriteString(dimStyle.Render("🔄 Loading chart..."))
	case domain.PhaseTransitioning:
		b.WriteString(dimStyle.Render("🔄 Updating..."))
	case domain.PhaseError:
		if s.Err != nil {
			b.WriteString(errorStyle.Render("❌ " + s.Err.Error()))
			b.WriteString("\n")
		}
		if s.RetryOffered() {
			b.WriteString(fmt.Sprintf("[r] Try again (%d attempts remaining)", s.AttemptsRemaining()))
		} else {
			b.WriteString(dimStyle.Render("Retrying... press r to start over"))
		}
	case domain.PhaseNoData:
		b.WriteString(dimStyle.Render("No data available to display"))
		b.WriteString("\n[r] Reload")
	case domain.PhaseReady:
		b.WriteString(m.readyView(s))
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("1-5 timeframe • r retry • esc back"))
	return b.String()
}

func (m *Model) readyView(s domain.ChartSession) string {
	width := m.width - 4
	if width <= 0 || width > 120 {
		width = 60
	}

	var b strings.Builder
	b.WriteString(chartStyle.Render(Sparkline(s.Points, width)))
	b.WriteString("\n\n")
	if stats, ok := s.Stats(); ok {
		b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
			cardLabel.Render("Lowest"), lossStyle.Render(format.Price(stats.Lowest)),
			cardLabel.Render("Highest"), gainStyle.Render(format.Price(stats.Highest)),
			cardLabel.Render("Current"), cardValue.Render(format.Price(stats.Current)),
		))
	}
	return b.String()
}

func (m *Model) timeframeBar() string {
	tabs := make([]string, 0, len(domain.Timeframes))
	for i, tf := range domain.Timeframes {
		label := fmt.Sprintf("%d:%s", i+1, tf.Label())
		if tf == m.session.Timeframe {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, inactiveTab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
