package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/madrasahub/core/resource"
)

const minPasscodeLen = 4

var errShortPasscode = errors.Errorf("the passcode must have at least %d characters", minPasscodeLen)

func (cli *commandLine) hashPasscode(passcode []byte) error {
	if len(passcode) < minPasscodeLen {
		return errShortPasscode
	}
	hash, err := bcrypt.GenerateFromPassword(passcode, bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing passcode")
	}
	fmt.Fprintln(cli.out, string(hash))
	return nil
}

// load reads the forest from the settings store (the cache when it is unreachable).
func (cli *commandLine) load() error {
	return errors.Wrap(cli.svc.Load(context.Background()), "loading resources")
}

func (cli *commandLine) tree(class, category string) error {
	if !resource.IsClass(class) {
		return errors.Wrapf(resource.ErrUnknownClass, "%q", class)
	}
	if category != "" {
		if _, ok := resource.LookupCategory(category); !ok {
			return errors.Wrapf(resource.ErrUnknownCategory, "%q", category)
		}
	}

	if err := cli.load(); err != nil {
		return err
	}
	bucket := cli.svc.Snapshot()[class]
	for _, cat := range resource.Categories() {
		if category != "" && cat.ID != category {
			continue
		}
		var flags []string
		if resource.HardHidden(class, cat.ID) {
			flags = append(flags, "unavailable")
		}
		if bucket.IsHidden(cat.ID) {
			flags = append(flags, "hidden")
		}
		tree := bucket.Categories[cat.ID]

		fmt.Fprintf(cli.out, "%s (%s)%s%s\n", cat.Label, cat.ID, mediaSuffix(tree.RootMedia), flagSuffix(flags))
		printNodes(cli, tree.Items, 1)
	}
	return nil
}

func printNodes(cli *commandLine, nodes []resource.Node, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(cli.out, "%s%s%s\n", strings.Repeat("  ", depth), n.Label, mediaSuffix(n.MediaSet))
		printNodes(cli, n.Children, depth+1)
	}
}

func mediaSuffix(m resource.MediaSet) string {
	kinds := m.Kinds()
	if len(kinds) == 0 {
		return ""
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return " [" + strings.Join(names, " ") + "]"
}

func flagSuffix(flags []string) string {
	if len(flags) == 0 {
		return ""
	}
	return " (" + strings.Join(flags, ", ") + ")"
}

// diff prints a unified diff from the cached forest to the forest in the settings store.
func (cli *commandLine) diff() error {
	if cli.cache == nil {
		return errors.New("no local cache configured")
	}
	cached, err := cli.cache.Read()
	if err != nil {
		return errors.Wrap(err, "reading cache")
	}
	stored, err := cli.repo.GetSetting(context.Background(), resource.KeyForest)
	if err != nil && !errors.Is(err, resource.ErrSettingNotFound) {
		return errors.Wrap(err, "reading settings store")
	}

	a, err := canonicalForest(cached)
	if err != nil {
		return errors.Wrap(err, "decoding cache")
	}
	b, err := canonicalForest(stored)
	if err != nil {
		return errors.Wrap(err, "decoding settings store")
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "cache",
		ToFile:   resource.KeyForest,
		Context:  3,
	})
	if err != nil {
		return errors.Wrap(err, "diffing")
	}
	if text == "" {
		fmt.Fprintln(cli.out, "no differences")
		return nil
	}
	fmt.Fprint(cli.out, text)
	return nil
}

// canonicalForest re-encodes a stored forest indented, legacy trees in the object shape.
func canonicalForest(data []byte) (string, error) {
	forest, err := resource.DecodeForest(data)
	if err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(forest, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

func (cli *commandLine) importXLSX(class, category, path, sheet string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return errors.Errorf("%s has no sheet", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return errors.Wrapf(err, "reading sheet %q", sheet)
	}
	items, err := resource.TreeFromRows(rows)
	if err != nil {
		return err
	}

	if err = cli.load(); err != nil {
		return err
	}
	if err = cli.svc.ImportCategory(class, category, items); err != nil {
		return errors.Wrap(err, "importing")
	}
	if err = cli.svc.Save(context.Background()); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "imported %d items into %s/%s\n", len(items), class, category)
	return nil
}
