package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/spellconv"
	"github.com/bodgit/spellconv/sheet"
	"github.com/bodgit/spellconv/sound"
	"github.com/urfave/cli/v2"
)

const defaultDB = "sounds.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

type closer func() error

// soundTable uses a plain sound list if one is given, otherwise the database.
func soundTable(c *cli.Context) (sound.Table, closer, error) {
	if file := c.String("sounds"); file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()

		entries, err := sound.ParseList(f)
		if err != nil {
			return nil, nil, err
		}
		return sound.NewMap(entries), func() error { return nil }, nil
	}

	db, err := sound.NewDB(c.String("db"))
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

func newConverter(c *cli.Context) (*spellconv.Converter, closer, error) {
	dialect, err := sheet.Lookup(c.String("dialect"))
	if err != nil {
		return nil, nil, err
	}

	sounds, close, err := soundTable(c)
	if err != nil {
		return nil, nil, err
	}

	conv := spellconv.New(sounds, dialect, newLogger(c))
	conv.Preview = c.Bool("preview")

	return conv, close, nil
}

func main() {
	app := cli.NewApp()

	app.Name = "spellconv"
	app.Usage = "Spell animation to effect sheet converter"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SPELLCONV_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to sound database",
		},
		&cli.StringFlag{
			Name:    "sounds",
			EnvVars: []string{"SPELLCONV_SOUNDS"},
			Usage:   "read sound names from a list instead of the database",
		},
		&cli.StringFlag{
			Name:    "dialect",
			EnvVars: []string{"SPELLCONV_DIALECT"},
			Value:   sheet.DefaultDialect,
			Usage:   "frame image dialect",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	previewFlag := &cli.BoolFlag{
		Name:  "preview",
		Usage: "also write animated GIF previews",
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert a spell directory",
			Description: "The directory must contain Spell.txt and every frame image it names.",
			ArgsUsage:   "DIRECTORY",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "name",
					Usage: "spell name, defaults to the directory name",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "output directory, defaults to the spell name",
				},
				previewFlag,
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				dir, err := filepath.Abs(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				name := c.String("name")
				if name == "" {
					name = filepath.Base(dir)
				}

				output := c.String("output")
				if output == "" {
					output = filepath.Join(cwd, name)
				}

				conv, close, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer close()

				if err := conv.Convert(name, dir, output); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Convert every spell directory under a directory",
			Description: "Each directory containing Spell.txt is converted into a directory of the same name under OUTPUT.",
			ArgsUsage:   "DIRECTORY OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "jobs",
					Value: 4,
					Usage: "number of spells to convert at once",
				},
				previewFlag,
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				conv, close, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer close()

				if err := conv.Scan(c.Args().Get(0), c.Args().Get(1), c.Int("jobs")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "import",
			Usage:       "Import a sound list into the database",
			Description: "Replaces the database contents. Each line of the list is an ID followed by a name.",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, err := sound.NewDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				n, err := db.ImportList(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				newLogger(c).Printf("Imported %d sounds\n", n)

				return nil
			},
		},
		{
			Name:  "dialects",
			Usage: "List the frame image dialects",
			Action: func(c *cli.Context) error {
				for _, d := range sheet.Dialects {
					fmt.Fprintf(c.App.Writer, "%-20s %s\n", d.Name, d.Description)
				}
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
