package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/madrasahub/core/resource"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	svc   *resource.Service
	repo  resource.Repository
	cache resource.Cache
	// openDB opens the SQL settings database; only migrate needs it.
	openDB func() (*sqlx.DB, error)
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  hashpasscode - hash the admin passcode for the adminPasscodeHash setting")
	fmt.Fprintln(cli.out, "  tree -class CLASS [-category ID] - print the resource tree of a class")
	fmt.Fprintln(cli.out, "  diff - show the differences between the local cache and the settings store")
	fmt.Fprintln(cli.out, "  importxlsx -class CLASS -category ID -file PATH [-sheet NAME] - replace a category from a spreadsheet")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	treeCmd := flag.NewFlagSet("tree", flag.ContinueOnError)
	treeClass := treeCmd.String("class", "", "The class level, e.g. \"Class 5\".")
	treeCategory := treeCmd.String("category", "", "Only print this category.")

	importCmd := flag.NewFlagSet("importxlsx", flag.ContinueOnError)
	importClass := importCmd.String("class", "", "The class level, e.g. \"Class 5\".")
	importCategory := importCmd.String("category", "", "The category id, e.g. syl.")
	importFile := importCmd.String("file", "", "The .xlsx file. Columns: path, pdf, audio, video, image.")
	importSheet := importCmd.String("sheet", "", "The sheet to read. Defaults to the first one.")

	for _, fs := range []*flag.FlagSet{treeCmd, importCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "hashpasscode":
		fmt.Fprint(cli.out, "Enter passcode:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			cli.printUsage()
			return errHelp
		}
		return cli.hashPasscode(pwd)
	case "tree":
		if err := treeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *treeClass == "" {
			treeCmd.Usage()
			return errHelp
		}
		return cli.tree(*treeClass, *treeCategory)
	case "diff":
		return cli.diff()
	case "importxlsx":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importClass == "" || *importCategory == "" || *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importXLSX(*importClass, *importCategory, *importFile, *importSheet)
	default:
		cli.printUsage()
		return errHelp
	}
}
