package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/pdv"
	"github.com/etnz/pdv/renderer"
)

type sellCmd struct {
	payment string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale" }
func (*sellCmd) Usage() string {
	return `caixa sell -pay card|pix|cash <product>[=<quantity>]...

  Fills a cart with the products, by id or by name, and checks it out.
  The quantity defaults to one unit. The receipt is printed.

  Example: caixa sell -pay pix cafe queijo=0.350
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.payment, "pay", "cash", "Payment method: card, pix or cash")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one product is required")
		return subcommands.ExitUsageError
	}
	payment, err := pdv.ParsePaymentMethod(c.payment)
	if err != nil {
		return failure(err)
	}

	s, logger, err := openSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	for _, arg := range f.Args() {
		ref, value, err := splitArg(arg, "")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		p, err := findProduct(s.Catalog(), ref)
		if err != nil {
			return failure(err)
		}
		if err := s.AddToCart(p.ID); err != nil {
			return failure(err)
		}
		if value == "" {
			continue
		}
		q, err := pdv.ParseQuantity(value)
		if err != nil {
			return failure(err)
		}
		// the line already holds what previous arguments added
		line, _ := s.Cart().Line(p.ID)
		if err := s.SetCartQuantity(p.ID, line.Quantity.Sub(pdv.Q(1)).Add(q)); err != nil {
			return failure(err)
		}
	}

	receipt, err := s.Checkout(payment)
	if err != nil {
		return failure(err)
	}
	if status := closeSession(s, logger); status != subcommands.ExitSuccess {
		return status
	}
	printMarkdown(renderer.ReceiptMarkdown(receipt, s.Catalog()))
	return subcommands.ExitSuccess
}
