package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/madrasahub/core"
	"github.com/trezcool/madrasahub/core/resource"
	"github.com/trezcool/madrasahub/storage/cache"
	"github.com/trezcool/madrasahub/storage/database"
	"github.com/trezcool/madrasahub/tests"
)

const (
	testClass    = "Class 5"
	testCategory = resource.CategorySyllabus
)

func testForest() resource.Forest {
	return testutil.Forest(testClass, testCategory, resource.CategoryTree{
		RootMedia: resource.MediaSet{PDF: "syllabus.pdf"},
		Items: []resource.Node{
			testutil.Folder("u1", "Unit 1",
				testutil.Leaf("l1", "Lesson 1", resource.MediaSet{PDF: "l1.pdf", Audio: "l1.mp3"}),
			),
		},
	})
}

func setup(t *testing.T, forest resource.Forest) (*commandLine, *bytes.Buffer) {
	svc, repo := testutil.NewService(t, forest, nil, testutil.Logger(t))
	dbPath := filepath.Join(t.TempDir(), "settings.db")

	var out bytes.Buffer
	return &commandLine{
		svc:   svc,
		repo:  repo,
		cache: cache.NewFileCache(filepath.Join(t.TempDir(), "class_config.json")),
		openDB: func() (*sqlx.DB, error) {
			return database.Open(core.DatabaseConfig{Engine: database.EngineSQLite, Path: dbPath})
		},
		out: &out,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case err == nil:
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
		}
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, _ := setup(t, nil)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "tree: no class", args: []string{"tree"}, wantErr: errHelp},
		{name: "importxlsx: no file", args: []string{"importxlsx", "-class", testClass, "-category", testCategory}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t, nil)

	gooseRunFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	defer func() { gooseRunFunc = database.RunMigrations }()

	tests := []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	cli.openDB = nil
	assert.Equal(t, errNoDatabase, cli.run([]string{"admin", "migrate", "up"}))
}

func Test_commandLine_migrateSQLite(t *testing.T) {
	cli, _ := setup(t, nil)

	require.NoError(t, cli.run([]string{"admin", "migrate", "up"}))

	db, err := cli.openDB()
	require.NoError(t, err)
	defer db.Close()
	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM settings"))
	assert.Zero(t, count)
}

func Test_commandLine_hashPasscode(t *testing.T) {
	cli, out := setup(t, nil)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no passcode", args: []string{"hashpasscode"}, wantErr: errHelp},
		{name: "short passcode", args: []string{"hashpasscode"}, extra: extra{pwd: "123"}, wantErr: errShortPasscode},
		{name: "hash", args: []string{"hashpasscode"}, extra: extra{pwd: "4321"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			checkErr(t, tt, err)
			if err != nil {
				return
			}
			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			hash := strings.TrimSpace(lines[len(lines)-1])
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(tt.extra.(extra).pwd)))
		})
	}
}

func Test_commandLine_tree(t *testing.T) {
	cli, out := setup(t, testForest())
	require.NoError(t, cli.svc.SetCategoryHidden(testClass, resource.CategoryDua, true))
	require.NoError(t, cli.svc.Save(context.Background()))

	require.NoError(t, cli.run([]string{"admin", "tree", "-class", testClass, "-category", testCategory}))
	assert.Equal(t, "Syllabus (syl) [pdf]\n"+
		"  Unit 1\n"+
		"    Lesson 1 [pdf audio]\n", out.String())

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "tree", "-class", testClass}))
	assert.Contains(t, out.String(), "(dua) (hidden)\n")

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "tree", "-class", "Class 1", "-category", resource.CategoryVideoClasses}))
	assert.Contains(t, out.String(), "(videoClasses) (unavailable)\n")

	assert.ErrorIs(t, cli.run([]string{"admin", "tree", "-class", "Class 0"}), resource.ErrUnknownClass)
	assert.ErrorIs(t, cli.run([]string{"admin", "tree", "-class", testClass, "-category", "x"}), resource.ErrUnknownCategory)
}

func Test_commandLine_diff(t *testing.T) {
	cli, out := setup(t, testForest())

	data, err := testForest().Encode()
	require.NoError(t, err)
	require.NoError(t, cli.cache.Write(data))

	require.NoError(t, cli.run([]string{"admin", "diff"}))
	assert.Equal(t, "no differences\n", out.String())

	changed := testutil.Forest(testClass, testCategory, resource.CategoryTree{
		Items: []resource.Node{testutil.Leaf("u1", "Unit One")},
	})
	testutil.SeedSettings(t, cli.repo, changed)

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "diff"}))
	diff := out.String()
	assert.Contains(t, diff, "--- cache\n+++ class_config\n")
	assert.Regexp(t, `(?m)^-\s+"label": "Unit 1",$`, diff)
	assert.Regexp(t, `(?m)^\+\s+"label": "Unit One"$`, diff)
}

func Test_commandLine_importXLSX(t *testing.T) {
	cli, out := setup(t, testForest())

	path := filepath.Join(t.TempDir(), "syllabus.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Path", "PDF", "Audio", "Video", "Image"},
		{"Unit 1", "u1.pdf"},
		{"Unit 1/Lesson 1", "", "l1.mp3"},
		{"Unit 2", "", "", "u2.mp4"},
	}
	for i, row := range rows {
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", "A"+strconv.Itoa(i+1), &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	require.NoError(t, cli.run([]string{"admin", "importxlsx", "-class", testClass, "-category", testCategory, "-file", path}))
	assert.Equal(t, "imported 2 items into Class 5/syl\n", out.String())

	data, err := cli.repo.GetSetting(context.Background(), resource.KeyForest)
	require.NoError(t, err)
	forest, err := resource.DecodeForest(data)
	require.NoError(t, err)
	tree := forest[testClass].Categories[testCategory]
	assert.Equal(t, resource.MediaSet{PDF: "syllabus.pdf"}, tree.RootMedia, "root media is kept")
	require.Len(t, tree.Items, 2)
	assert.Equal(t, "u1.pdf", tree.Items[0].PDF)
	require.Len(t, tree.Items[0].Children, 1)
	assert.Equal(t, "l1.mp3", tree.Items[0].Children[0].Audio)
	assert.Equal(t, "u2.mp4", tree.Items[1].Video)

	err = cli.run([]string{"admin", "importxlsx", "-class", testClass, "-category", testCategory, "-file", path, "-sheet", "Nope"})
	assert.Error(t, err)
}
