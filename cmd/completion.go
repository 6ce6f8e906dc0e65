package cmd

import (
	"flag"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/etnz/pdv"
)

// productArgs lists the commands whose arguments are products.
var productArgs = map[string]bool{"sell": true, "delete": true, "adjust": true, "history": true}

// Completion returns the shell completion of the commands registered in c.
// Product names and categories are read from the product file.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: make(map[string]complete.Predictor),
	}
	c.VisitAll(func(fl *flag.Flag) { root.Flags[fl.Name] = predictFlag(fl) })

	c.VisitCommands(func(_ *subcommands.CommandGroup, sub subcommands.Command) {
		fs := flag.NewFlagSet(sub.Name(), flag.ContinueOnError)
		sub.SetFlags(fs)
		cc := &complete.Command{Flags: make(map[string]complete.Predictor)}
		fs.VisitAll(func(fl *flag.Flag) { cc.Flags[fl.Name] = predictFlag(fl) })
		if productArgs[sub.Name()] {
			cc.Args = complete.PredictFunc(predictProducts)
		}
		root.Sub[sub.Name()] = cc
	})
	return root
}

func predictFlag(fl *flag.Flag) complete.Predictor {
	if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	switch fl.Name {
	case "pay":
		return predict.Set{string(pdv.Card), string(pdv.Pix), string(pdv.Cash)}
	case "unit":
		return predict.Set{"un", "kg", "l"}
	case "p":
		return predict.Set{"day", "week", "month", "quarter", "year", "all"}
	case "format":
		return predict.Set{"term", "markdown", "html"}
	case "log-level":
		return predict.Set{"debug", "info", "warn", "error"}
	case "cat":
		return complete.PredictFunc(predictCategories)
	case "product", "id":
		return complete.PredictFunc(predictProducts)
	case "data-dir":
		return predict.Dirs("*")
	case "ledger-file", "products-file":
		return predict.Files("*.json")
	}
	return predict.Something
}

// completionCatalog reads the product file without the repairs done by
// pdv.LoadCatalog: completion must not touch the data.
func completionCatalog() *pdv.Catalog {
	f, err := os.Open(dataPath(*productsFile))
	if err != nil {
		return pdv.NewCatalog()
	}
	defer f.Close()
	products, err := pdv.DecodeCatalog(f)
	if err != nil {
		return pdv.NewCatalog()
	}
	return pdv.NewCatalog(products...)
}

// predictProducts suggests product names, or ids when the prefix matches
// no name.
func predictProducts(prefix string) []string {
	var names, ids []string
	for _, p := range completionCatalog().Active() {
		if strings.HasPrefix(strings.ToLower(p.Name), strings.ToLower(prefix)) {
			names = append(names, p.Name)
		}
		if strings.HasPrefix(p.ID, prefix) {
			ids = append(ids, p.ID)
		}
	}
	if len(names) > 0 {
		return names
	}
	return ids
}

func predictCategories(string) []string {
	return completionCatalog().Categories()
}
