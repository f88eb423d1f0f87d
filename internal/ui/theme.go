package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Title shop theme (CLI + TUI).

const (
	IconShop    = "🏪"
	IconCoin    = "🪙"
	IconCrown   = "👑"
	IconTask    = "🎯"
	IconChat    = "💬"
	IconDone    = "✅"
	IconSparkle = "✨"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconShield  = "🛡️"
	IconGuest   = "👤"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)
	Dialog      = lipgloss.NewStyle().BorderStyle(lipgloss.DoubleBorder()).BorderForeground(cAccent).Padding(0, 2)
	Toast       = lipgloss.NewStyle().Bold(true).Foreground(cGold).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cGold).Padding(0, 1)
	TabActive   = lipgloss.NewStyle().Bold(true).Foreground(cGold).Underline(true)
	TabInactive = lipgloss.NewStyle().Foreground(cMuted)

	BadgeOwned = lipgloss.NewStyle().Bold(true).Foreground(cGood).Render("OWNED")
	BadgeAdmin = lipgloss.NewStyle().Bold(true).Foreground(cBad).Render("ADMIN")
	BadgeGuest = lipgloss.NewStyle().Foreground(cMuted).Render("guest")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Coins renders an amount with the coin icon.
func Coins(n int) string {
	return Gold.Render(fmt.Sprintf("%s %d", IconCoin, n))
}

// Price renders a price green when affordable and red otherwise.
func Price(price, balance int) string {
	s := fmt.Sprintf("%s %d", IconCoin, price)
	if balance >= price {
		return Good.Render(s)
	}
	return Bad.Render(s)
}

// Delta renders a signed coin change.
func Delta(n int) string {
	if n >= 0 {
		return Good.Render(fmt.Sprintf("+%d", n))
	}
	return Bad.Render(fmt.Sprintf("%d", n))
}

func TaskStatus(completed bool) string {
	if completed {
		return Good.Render("done")
	}
	return Warn.Render("open")
}

// ProgressBar renders ratio in [0,1] as a fixed width bar.
func ProgressBar(ratio float64, width int) string {
	if width <= 0 {
		width = 10
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// UserBadge marks guests and admins next to a username.
func UserBadge(username string, isGuest, isAdmin bool) string {
	switch {
	case isAdmin:
		return H2.Render(username) + " " + BadgeAdmin
	case isGuest:
		return H2.Render(username) + " " + BadgeGuest
	default:
		return H2.Render(username)
	}
}
