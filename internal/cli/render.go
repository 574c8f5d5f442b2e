package cli

import (
	"fmt"
	"io"

	"github.com/amirasaad/currency-converter/pkg/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

type styles struct {
	code   lipgloss.Style
	symbol lipgloss.Style
	amount lipgloss.Style
	muted  lipgloss.Style
	title  lipgloss.Style
	errOut *color.Color
}

func newStyles(useColor bool) styles {
	errOut := color.New(color.FgRed, color.Bold)
	if !useColor {
		errOut.DisableColor()
		return styles{
			code:   lipgloss.NewStyle(),
			symbol: lipgloss.NewStyle(),
			amount: lipgloss.NewStyle(),
			muted:  lipgloss.NewStyle(),
			title:  lipgloss.NewStyle(),
			errOut: errOut,
		}
	}
	errOut.EnableColor()
	return styles{
		code:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		symbol: lipgloss.NewStyle().Foreground(lipgloss.Color("#EE6FF8")),
		amount: lipgloss.NewStyle().Bold(true),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#7E57C2")),
		title:  lipgloss.NewStyle().Bold(true).Underline(true),
		errOut: errOut,
	}
}

// money renders v rounded half away from zero to two decimals.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// rate renders a rate with its shortest exact decimal representation.
func rate(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func (s styles) catalog(w io.Writer, cat domain.Catalog) {
	fmt.Fprintln(w, s.title.Render("Supported currencies")) //nolint:errcheck
	for _, cur := range cat.Currencies() {
		fmt.Fprintf(w, "%s  %s  %s\n", //nolint:errcheck
			s.code.Render(fmt.Sprintf("%-4s", cur.Code)),
			s.symbol.Render(fmt.Sprintf("%-4s", cur.Symbol)),
			cur.Name,
		)
	}
}

func (s styles) result(w io.Writer, r *domain.ConversionResult) {
	fmt.Fprintf(w, "%s %s = %s %s\n", //nolint:errcheck
		s.amount.Render(money(r.Amount)), s.code.Render(r.FromCurrency),
		s.amount.Render(money(r.ConvertedAmount)), s.code.Render(r.ToCurrency),
	)
	fmt.Fprintln(w, s.muted.Render(fmt.Sprintf("Rate: %s, Date: %s", rate(r.ToCurrencyRate), r.Date))) //nolint:errcheck
}

func (s styles) history(w io.Writer, h domain.ConversionHistory) {
	if len(h) == 0 {
		fmt.Fprintln(w, s.muted.Render("No conversions yet.")) //nolint:errcheck
		return
	}
	for i, r := range h {
		fmt.Fprintf(w, "#%d: %s %s ➔ %s %s %s\n", //nolint:errcheck
			i+1,
			money(r.Amount), s.code.Render(r.FromCurrency),
			money(r.ConvertedAmount), s.code.Render(r.ToCurrency),
			s.muted.Render(fmt.Sprintf("(Rate: %s, Date: %s)", rate(r.ToCurrencyRate), r.Date)),
		)
	}
}

func (s styles) errorLine(w io.Writer, msg string) {
	s.errOut.Fprintln(w, msg) //nolint:errcheck
}
