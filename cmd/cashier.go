package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/pdv"
	"github.com/etnz/pdv/date"
	"github.com/etnz/pdv/renderer"
)

// rangeFlags are the flags selecting a range of days.
type rangeFlags struct {
	period string
	start  string
	end    string
}

func (r *rangeFlags) SetFlags(f *flag.FlagSet, period string) {
	f.StringVar(&r.period, "p", period, "Predefined period (day, week, month, quarter, year, all).")
	f.StringVar(&r.start, "s", "", "The start date of a custom range. Overrides -p.")
	f.StringVar(&r.end, "d", "0d", "The end date of the range (defaults to today).")
}

// Range returns the selected range of days.
func (r *rangeFlags) Range() (date.Range, error) {
	end, err := date.Parse(r.end)
	if err != nil {
		return date.Range{}, fmt.Errorf("invalid end date: %w", err)
	}
	if r.start != "" {
		start, err := date.Parse(r.start)
		if err != nil {
			return date.Range{}, fmt.Errorf("invalid start date: %w", err)
		}
		return date.Between(start, end), nil
	}
	if r.period == "all" {
		return date.Range{To: end}, nil
	}
	p, err := date.ParsePeriod(r.period)
	if err != nil {
		return date.Range{}, err
	}
	return date.NewRange(end, p), nil
}

type cashierCmd struct {
	rangeFlags
}

func (*cashierCmd) Name() string     { return "cashier" }
func (*cashierCmd) Synopsis() string { return "display the cash register report" }
func (*cashierCmd) Usage() string {
	return `caixa cashier [-p <period> | -s <start_date>] [-d <end_date>]

  Displays, for each day with cash sales, the opening float, the cash sales,
  the cash withdrawn and the cash expected in the register. Today is always
  listed.
`
}

func (c *cashierCmd) SetFlags(f *flag.FlagSet) { c.rangeFlags.SetFlags(f, "week") }

func (c *cashierCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.Range()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	s, logger, err := openSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer logger.Sync()

	printMarkdown(renderer.CashierMarkdown(s.CashReport(r)))
	return subcommands.ExitSuccess
}

type floatCmd struct{}

func (*floatCmd) Name() string     { return "float" }
func (*floatCmd) Synopsis() string { return "set or display today's opening float" }
func (*floatCmd) Usage() string {
	return `caixa float [<amount>]

  Without argument, displays today's opening float. Otherwise records it.
  The float can no longer be changed once a cash sale or a withdrawal was
  recorded today.
`
}

func (*floatCmd) SetFlags(*flag.FlagSet) {}

func (*floatCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "at most one amount is expected")
		return subcommands.ExitUsageError
	}
	s, logger, err := openSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if f.NArg() == 0 {
		defer logger.Sync()
		value, locked := s.Cashier().CurrentInitialValue()
		state := "proposed"
		if locked {
			state = "recorded"
		}
		fmt.Fprintf(stdout, "%s (%s)\n", value, state)
		return subcommands.ExitSuccess
	}

	value, err := pdv.ParseMoney(f.Arg(0))
	if err != nil {
		return failure(err)
	}
	if _, err := s.SetInitialFloat(value); err != nil {
		return failure(err)
	}
	return closeSession(s, logger)
}

type retireCmd struct {
	confirm bool
}

func (*retireCmd) Name() string     { return "retire" }
func (*retireCmd) Synopsis() string { return "withdraw cash from today's register" }
func (*retireCmd) Usage() string {
	return `caixa retire [-confirm] <amount>

  Withdraws an amount of today's cash sales from the register. What is left
  becomes tomorrow's opening float. A partial withdrawal, leaving part of the
  cash sales in the register, is only recorded with -confirm.
`
}

func (c *retireCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.confirm, "confirm", false, "Confirm a partial withdrawal")
}

func (c *retireCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one amount is required")
		return subcommands.ExitUsageError
	}
	amount, err := pdv.ParseMoney(f.Arg(0))
	if err != nil {
		return failure(err)
	}
	s, logger, err := openSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	ret, _, err := s.RetireToday(amount, c.confirm)
	if errors.Is(err, pdv.ErrConfirmationRequired) {
		printMarkdown(renderer.RetirementMarkdown(ret))
		fmt.Fprintln(os.Stderr, "This is a partial withdrawal, run again with -confirm to record it.")
		return subcommands.ExitFailure
	}
	if err != nil {
		return failure(err)
	}
	if status := closeSession(s, logger); status != subcommands.ExitSuccess {
		return status
	}
	printMarkdown(renderer.RetirementMarkdown(ret))
	return subcommands.ExitSuccess
}

type salesCmd struct {
	rangeFlags
	payment    string
	category   string
	productRef string
}

func (*salesCmd) Name() string     { return "sales" }
func (*salesCmd) Synopsis() string { return "display the sales report" }
func (*salesCmd) Usage() string {
	return `caixa sales [-p <period> | -s <start_date>] [-d <end_date>] [-pay <method>] [-cat <category>] [-product <product>]

  Displays the quantity sold and the revenue of each product over a range of
  days.
`
}

func (c *salesCmd) SetFlags(f *flag.FlagSet) {
	c.rangeFlags.SetFlags(f, "day")
	f.StringVar(&c.payment, "pay", "", "Only count sales paid this way (card, pix or cash)")
	f.StringVar(&c.category, "cat", "", "Only count products of this category")
	f.StringVar(&c.productRef, "product", "", "Only count this product, by id or by name")
}

func (c *salesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.Range()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	var filter pdv.SalesFilter
	if c.payment != "" {
		if filter.Payment, err = pdv.ParsePaymentMethod(c.payment); err != nil {
			return failure(err)
		}
	}
	if c.category != "" {
		filter.Categories = []string{c.category}
	}

	s, logger, err := openSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer logger.Sync()

	if c.productRef != "" {
		p, err := findProduct(s.Catalog(), c.productRef)
		if err != nil {
			return failure(err)
		}
		filter.ProductIDs = []string{p.ID}
	}
	printMarkdown(renderer.SalesMarkdown(s.SalesReport(r, filter)))
	return subcommands.ExitSuccess
}
