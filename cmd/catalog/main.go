package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"

	"catalog/btree"
	shell "catalog/cli"
	"catalog/db"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:    "catalog",
		Usage:   "parts catalog backed by a fixed-width text file",
		Version: versioninfo.Short(),
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "path of the catalog file",
			Value:   "partfile.txt",
			EnvVars: []string{"CATALOG_FILE"},
		},
		&cli.IntFlag{
			Name:    "max-keys",
			Usage:   "maximum number of keys per index node before it splits",
			Value:   btree.DefaultMaxKeys,
			EnvVars: []string{"CATALOG_MAX_KEYS"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity (error, warn, info, debug)",
			Value:   "warn",
			EnvVars: []string{"CATALOG_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "start from an empty catalog instead of loading the file",
		},
		&cli.IntFlag{
			Name:  "seed",
			Usage: "add this many parts generated with go-faker after loading",
		},
	}
	app.Before = func(cctx *cli.Context) error {
		configLogger(cctx.String("log-level"))
		return nil
	}
	app.Action = runShell
	app.Commands = []*cli.Command{
		{
			Name:   "shell",
			Usage:  "interactive catalog shell (default)",
			Action: runShell,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "print the index structure after every change",
				},
			},
		},
		{
			Name:   "list",
			Usage:  "print every part in ID order",
			Action: runList,
		},
		{
			Name:      "backup",
			Usage:     "write a compressed snapshot of the catalog",
			ArgsUsage: "<snapshot-file>",
			Action:    runBackup,
		},
		{
			Name:      "restore",
			Usage:     "replace the catalog file with the contents of a snapshot",
			ArgsUsage: "<snapshot-file>",
			Action:    runRestore,
		},
	}
	return app.Run(args)
}

// openCatalog loads the catalog and applies --reset and --seed.
// A load failure is not fatal, the catalog simply starts empty.
func openCatalog(cctx *cli.Context) (*db.Catalog, error) {
	c, err := db.Open(cctx.String("file"), db.WithMaxKeys(cctx.Int("max-keys")))
	if err != nil && !errors.Is(err, db.ErrLoad) {
		return nil, err
	}
	if cctx.Bool("reset") {
		c.Reset()
	}
	if n := cctx.Int("seed"); n > 0 {
		if err := seedCatalog(c, n); err != nil {
			return nil, err
		}
		slog.Info("seeded catalog", "parts", n)
	}
	return c, nil
}

func runShell(cctx *cli.Context) error {
	c, err := openCatalog(cctx)
	if err != nil {
		return err
	}
	s := shell.NewCli(bufio.NewScanner(os.Stdin), os.Stdout, c)
	s.SetVerbose(cctx.Bool("verbose"))
	s.Start()
	return nil
}

func runList(cctx *cli.Context) error {
	c, err := openCatalog(cctx)
	if err != nil {
		return err
	}
	return c.Display(os.Stdout)
}

func runBackup(cctx *cli.Context) (err error) {
	if cctx.Args().Len() != 1 {
		return cli.Exit("usage: catalog backup <snapshot-file>", 2)
	}
	c, err := openCatalog(cctx)
	if err != nil {
		return err
	}
	f, err := os.Create(cctx.Args().First())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	n, err := c.Backup(f)
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	fmt.Printf("wrote %d parts to %s\n", n, f.Name())
	return nil
}

func runRestore(cctx *cli.Context) error {
	if cctx.Args().Len() != 1 {
		return cli.Exit("usage: catalog restore <snapshot-file>", 2)
	}
	c, err := openCatalog(cctx)
	if err != nil {
		return err
	}
	f, err := os.Open(cctx.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := c.Restore(f)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	if err := c.Save(); err != nil {
		return err
	}
	fmt.Printf("restored %d parts into %s\n", n, c.Path())
	return nil
}
