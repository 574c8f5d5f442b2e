// Package cli implements the command line front end of the converter.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/amirasaad/currency-converter/pkg/app"
	"github.com/amirasaad/currency-converter/pkg/dateutil"
	"github.com/amirasaad/currency-converter/pkg/service/conversion"
	"github.com/amirasaad/currency-converter/pkg/service/history"
	"github.com/spf13/pflag"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

const usage = `Usage: currency-converter <command> [flags]

Commands:
  currencies                                      list supported currencies
  convert --from USD --to EUR --amount 100 --date 2024-01-01
                                                  convert using the rate of a past day
  history [--limit N]                             show past conversions, newest first
`

// CLI runs commands against an App.
type CLI struct {
	app    *app.App
	out    io.Writer
	errOut io.Writer
	styles styles
	now    func() time.Time
}

// New creates a CLI writing results to out and errors to errOut.
func New(a *app.App, out, errOut io.Writer, useColor bool) *CLI {
	return &CLI{
		app:    a,
		out:    out,
		errOut: errOut,
		styles: newStyles(useColor),
		now:    time.Now,
	}
}

// Run executes the command named by args[0] and returns the process exit code.
func (c *CLI) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(c.errOut, usage) //nolint:errcheck
		return ExitUsage
	}
	switch args[0] {
	case "currencies":
		return c.currencies(ctx)
	case "convert":
		return c.convert(ctx, args[1:])
	case "history":
		return c.history(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage) //nolint:errcheck
		return ExitOK
	default:
		c.styles.errorLine(c.errOut, fmt.Sprintf("Unknown command: %s", args[0]))
		fmt.Fprint(c.errOut, usage) //nolint:errcheck
		return ExitUsage
	}
}

func (c *CLI) currencies(ctx context.Context) int {
	ctrl := c.app.Conversion
	if err := ctrl.Initialize(ctx); err != nil {
		c.styles.errorLine(c.errOut, ctrl.State().Error)
		return ExitFailure
	}
	c.styles.catalog(c.out, ctrl.State().Currencies)
	return ExitOK
}

func (c *CLI) convert(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("convert", pflag.ContinueOnError)
	fs.SetOutput(c.errOut)
	from := fs.StringP("from", "f", "", "source currency code")
	to := fs.StringP("to", "t", "", "target currency code")
	amount := fs.Float64P("amount", "a", 0, "amount to convert, greater than zero")
	date := fs.StringP("date", "d", "", "day of the rate, YYYY-MM-DD, before today")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	ctrl := c.app.Conversion
	if err := ctrl.Initialize(ctx); err != nil {
		c.styles.errorLine(c.errOut, ctrl.State().Error)
		return ExitFailure
	}
	catalog := ctrl.State().Currencies

	for _, code := range []*string{from, to} {
		*code = strings.ToUpper(strings.TrimSpace(*code))
		if *code != "" && !catalog.Has(*code) {
			c.styles.errorLine(c.errOut,
				fmt.Sprintf("Unknown currency %s. Run 'currencies' to list supported codes.", *code))
			return ExitFailure
		}
	}

	if *from != "" {
		ctrl.SetFromCurrency(*from)
	}
	if *to != "" {
		ctrl.SetToCurrency(*to)
	}
	if fs.Changed("amount") {
		ctrl.SetAmount(*amount)
	}
	if *date != "" {
		day, err := dateutil.Parse(*date)
		if err != nil || !dateutil.IsSelectableAt(day, c.now()) {
			c.styles.errorLine(c.errOut, conversion.MsgInvalidDate)
			return ExitFailure
		}
		ctrl.SetDate(day)
	}

	result, err := ctrl.Submit(ctx)
	if err != nil {
		msg := ctrl.State().Error
		if msg == "" {
			msg = err.Error()
		}
		c.styles.errorLine(c.errOut, msg)
		return ExitFailure
	}
	c.styles.result(c.out, result)
	return ExitOK
}

func (c *CLI) history(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	fs.SetOutput(c.errOut)
	limit := fs.IntP("limit", "n", 0, "show at most N entries, 0 for all")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}
	c.styles.history(c.out, history.Limit(c.app.History.Entries(ctx), *limit))
	return ExitOK
}
