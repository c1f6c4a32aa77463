package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/loqalabs/loqa-speak/internal/catalog"
)

var version = "0.1.0-dev"

func main() {
	var packPath string
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateCmd.StringVar(&packPath, "file", "pack.yaml", "Path to catalog pack")

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listCmd.StringVar(&packPath, "file", "", "Optional catalog pack merged over the built-in content")

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "expected 'validate', 'list' or 'version'")
		os.Exit(2)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		p, err := loadPack(packPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("pack %s %s valid: %d categories, %d levels\n",
			p.Metadata.Name, p.Metadata.Version, len(p.Categories), len(p.Levels))
	case "list":
		listCmd.Parse(os.Args[2:])
		cat := catalog.Default()
		if packPath != "" {
			p, err := loadPack(packPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			cat = cat.Merge(p)
		}
		printCatalog(cat)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}
}

func loadPack(path string) (catalog.Pack, error) {
	p, err := catalog.LoadPack(path)
	if err != nil {
		return p, err
	}
	return p, catalog.ValidatePack(p)
}

func printCatalog(cat *catalog.Catalog) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tNAME\tWORDS")
	for _, c := range cat.Categories() {
		fmt.Fprintf(w, "%s\t%s\t%d\n", c.ID, c.Name, c.Size())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "LEVEL\tNAME\tWORDS\tSECONDS\tMULTIPLIER")
	for _, l := range cat.Levels() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\tx%.1f\n", l.ID, l.Name, l.WordCount, l.TimeLimit, l.Multiplier)
	}
	_ = w.Flush()
}
