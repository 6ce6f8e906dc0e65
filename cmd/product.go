package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/pdv"
	"github.com/etnz/pdv/renderer"
)

type productCmd struct {
	id         string
	name       string
	price      string
	stock      string
	min        string
	unit       string
	categories string
	image      string
}

func (*productCmd) Name() string     { return "product" }
func (*productCmd) Synopsis() string { return "add or edit a product" }
func (*productCmd) Usage() string {
	return `caixa product [-id <id>] -name <name> -price <price> [-stock <qty>] [-min <qty>] [-unit un|kg|l] [-cat <a,b>] [-image <path>]

  Adds a product to the catalog, or edits it when -id names an existing one.
  When editing, only the flags given on the command line are changed.
  A stock change is recorded in the ledger as a stock adjustment.
`
}

func (c *productCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Id of the product to edit. A new id is generated when empty.")
	f.StringVar(&c.name, "name", "", "Product name")
	f.StringVar(&c.price, "price", "0", "Unit price")
	f.StringVar(&c.stock, "stock", "0", "Quantity in stock")
	f.StringVar(&c.min, "min", "0", "Minimum stock quantity, a notice is shown when reached")
	f.StringVar(&c.unit, "unit", "un", "Unit of measure: un, kg or l")
	f.StringVar(&c.categories, "cat", "", "Comma separated categories")
	f.StringVar(&c.image, "image", "", "Path of the product picture, relative to the data directory")
}

func (c *productCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, logger, err := openSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	p, exists := s.Catalog().Product(c.id)
	if !exists {
		p = pdv.Product{ID: c.id}
		if p.ID == "" {
			p.ID = pdv.NewProductID()
		}
	}

	// on edit, only override what was asked for.
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	given := func(name string) bool { return !exists || set[name] }

	if given("name") {
		p.Name = strings.TrimSpace(c.name)
	}
	if given("price") {
		if p.Price, err = pdv.ParseMoney(c.price); err != nil {
			return failure(err)
		}
	}
	if given("unit") {
		if p.UnitType, err = pdv.ParseUnitType(c.unit); err != nil {
			return failure(err)
		}
	}
	if given("stock") {
		if p.StockQuantity, err = pdv.ParseQuantity(c.stock); err != nil {
			return failure(err)
		}
	}
	if given("min") {
		if p.MinStockQuantity, err = pdv.ParseQuantity(c.min); err != nil {
			return failure(err)
		}
	}
	if given("cat") {
		p.Categories = nil
		for _, cat := range strings.Split(c.categories, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				p.Categories = append(p.Categories, cat)
			}
		}
	}
	if given("image") {
		p.Image = c.image
	}

	if _, err := s.SaveProduct(p); err != nil {
		return failure(err)
	}
	if status := closeSession(s, logger); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Fprintln(stdout, p.ID)
	return subcommands.ExitSuccess
}

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete products" }
func (*deleteCmd) Usage() string {
	return `caixa delete <product>...

  Deletes products, by id or by name. Deleted products are kept in the
  product file so that past sales still name them.
`
}

func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (*deleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one product is required")
		return subcommands.ExitUsageError
	}
	s, logger, err := openSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	// resolve them all before deleting any.
	var ids []string
	for _, ref := range f.Args() {
		p, err := findProduct(s.Catalog(), ref)
		if err != nil {
			return failure(err)
		}
		ids = append(ids, p.ID)
	}
	for _, id := range ids {
		if _, err := s.DeleteProduct(id); err != nil {
			closeSession(s, logger)
			return failure(err)
		}
	}
	return closeSession(s, logger)
}

type productsCmd struct {
	category string
	low      bool
}

func (*productsCmd) Name() string     { return "products" }
func (*productsCmd) Synopsis() string { return "list the products" }
func (*productsCmd) Usage() string {
	return `caixa products [-cat <category>] [-low]

  Lists the products of the catalog with their stock.
`
}

func (c *productsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "cat", "", "Only list products of this category")
	f.BoolVar(&c.low, "low", false, "Only list products at or below their minimum stock")
}

func (c *productsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, logger, err := openSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer logger.Sync()

	var products []pdv.Product
	for _, p := range s.Catalog().Active() {
		if c.category != "" && !p.HasCategory(c.category) {
			continue
		}
		if c.low && !p.IsLow() {
			continue
		}
		products = append(products, p)
	}
	printMarkdown(renderer.ProductsMarkdown(products))
	return subcommands.ExitSuccess
}

type adjustCmd struct{}

func (*adjustCmd) Name() string     { return "adjust" }
func (*adjustCmd) Synopsis() string { return "add or remove stock" }
func (*adjustCmd) Usage() string {
	return `caixa adjust <product>=<delta>...

  Records a stock adjustment: each delta, positive or negative, is added to
  the stock of its product. Products are given by id or by name.

  Example: caixa adjust cafe=+10 queijo=-0.250
`
}

func (*adjustCmd) SetFlags(*flag.FlagSet) {}

func (*adjustCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one <product>=<delta> is required")
		return subcommands.ExitUsageError
	}
	s, logger, err := openSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var deltas []pdv.StockDelta
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
		q, err := pdv.ParseQuantity(strings.TrimPrefix(value, "+"))
		if err != nil {
			return failure(err)
		}
		deltas = append(deltas, pdv.StockDelta{ProductID: p.ID, Delta: q})
	}

	if _, err := s.AdjustStock(deltas); err != nil {
		return failure(err)
	}
	return closeSession(s, logger)
}

type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the sales and stock history of a product" }
func (*historyCmd) Usage() string {
	return `caixa history <product>

  Displays every sale and stock adjustment of a product, newest first, with
  the stock after each of them.
`
}

func (*historyCmd) SetFlags(*flag.FlagSet) {}

func (*historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one product is required")
		return subcommands.ExitUsageError
	}
	s, logger, err := openSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer logger.Sync()

	p, err := findProduct(s.Catalog(), f.Arg(0))
	if err != nil {
		return failure(err)
	}
	h, err := s.ProductHistory(p.ID)
	if err != nil {
		return failure(err)
	}
	printMarkdown(renderer.HistoryMarkdown(h))
	return subcommands.ExitSuccess
}
