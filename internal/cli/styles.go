// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/birrflow/birrflow/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#078930") // Green
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4") // Teal
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FCDD09") // Yellow
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#DA121A") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#95E1D3") // Light teal
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SubtitleStyle is used for secondary headings.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	BankIcon    = "🏦"
	ChartIcon   = "📊"
	MoneyIcon   = "💸"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the bank icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(BankIcon + " " + title)
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	)

	return BoxStyle.Render(boxContent)
}

// statusStyle maps a transfer status to its display style.
func statusStyle(status model.TransferStatus) lipgloss.Style {
	switch status {
	case model.StatusVerified:
		return SuccessStyle
	case model.StatusFraud:
		return ErrorStyle
	case model.StatusCancelled:
		return SubtleStyle
	default:
		return WarningStyle
	}
}

// RenderTransferTable renders transfers as an aligned table.
func RenderTransferTable(records []model.TransferRecord) string {
	if len(records) == 0 {
		return SubtleStyle.Render("No transfers found.")
	}

	var sb strings.Builder
	header := fmt.Sprintf("%-12s %-28s %12s %-10s %-22s",
		"DATE", "BANK", "AMOUNT", "STATUS", "REFERENCE")
	sb.WriteString(TableHeaderStyle.Render(header))
	sb.WriteString("\n")

	for _, r := range records {
		row := fmt.Sprintf("%-12s %-28s %12.2f %-10s %-22s",
			r.Date.Format("2006-01-02"),
			truncate(r.BankName, 28),
			r.Amount,
			statusStyle(r.Status).Render(shortStatus(r.Status)),
			truncate(r.Reference, 22),
		)
		sb.WriteString(TableCellStyle.Render(row))
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderCandidate renders an extracted candidate for the parse command.
func RenderCandidate(c *model.TransferCandidate) string {
	var sb strings.Builder
	write := func(label, value string) {
		if value == "" {
			return
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", BoldStyle.Render(label+":"), value))
	}

	write("Bank", c.BankName)
	write("Amount", fmt.Sprintf("%.2f %s", c.Amount, model.Currency))
	write("Date", c.Date.Format("2006-01-02"))
	write("Description", c.Description)
	write("Reference", c.Reference)
	write("Account", c.AccountNumber)
	write("Phone", c.PhoneNumber)
	if c.Balance != nil {
		write("Balance", fmt.Sprintf("%.2f %s", *c.Balance, model.Currency))
	}

	return sb.String()
}

// RenderSnapshot renders an aggregate snapshot for the stats command.
func RenderSnapshot(snap model.AggregateSnapshot) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total transfers:  %s\n",
		BoldStyle.Render(fmt.Sprintf("%d", snap.TotalTransfers))))
	sb.WriteString(fmt.Sprintf("Total amount:     %s\n",
		BoldStyle.Render(fmt.Sprintf("%.2f %s", snap.TotalAmount, model.Currency))))
	sb.WriteString(fmt.Sprintf("Verified amount:  %.2f %s\n", snap.VerifiedAmount, model.Currency))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Pending:    %s\n", WarningStyle.Render(fmt.Sprintf("%d", snap.PendingCount))))
	sb.WriteString(fmt.Sprintf("Verified:   %s\n", SuccessStyle.Render(fmt.Sprintf("%d", snap.VerifiedCount))))
	sb.WriteString(fmt.Sprintf("Fraud:      %s\n", ErrorStyle.Render(fmt.Sprintf("%d", snap.FraudCount))))
	sb.WriteString(fmt.Sprintf("Cancelled:  %s\n", SubtleStyle.Render(fmt.Sprintf("%d", snap.CancelledCount))))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Today: %d transfers, %.2f %s\n",
		snap.TodayTransfers, snap.TodayAmount, model.Currency))

	if len(snap.TopBanks) > 0 {
		sb.WriteString("\n")
		sb.WriteString(SubtitleStyle.UnsetMargins().Render("Top banks by amount"))
		sb.WriteString("\n")
		for i, b := range snap.TopBanks {
			sb.WriteString(fmt.Sprintf("  %d. %-28s %3d × %12.2f %s\n",
				i+1, truncate(b.BankName, 28), b.Count, b.TotalAmount, model.Currency))
		}
	}

	return sb.String()
}

func shortStatus(status model.TransferStatus) string {
	if status == model.StatusPendingVerification {
		return "pending"
	}
	return string(status)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
