package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dcode-github/six_cities/backend/config"
	"github.com/dcode-github/six_cities/backend/importer"
	"github.com/dcode-github/six_cities/backend/logger"
	"github.com/dcode-github/six_cities/backend/repository"
	"github.com/dcode-github/six_cities/backend/utils"
)

const version = "1.0.0"

const progressEvery = 1000

const usage = `Usage: six-cities [command]

Commands:
  --help              print this help
  --version           print the version
  --import <path>     import offers from a TSV file
  --export <path>     write all stored offers to a TSV file
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	help       bool
	version    bool
	importPath string
	exportPath string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("six-cities", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	fs.BoolVar(&opts.help, "help", false, "print this help")
	fs.BoolVar(&opts.version, "version", false, "print the version")
	fs.StringVar(&opts.importPath, "import", "", "import offers from a TSV file")
	fs.StringVar(&opts.exportPath, "export", "", "write all stored offers to a TSV file")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, usage)
		return 2
	}

	switch {
	case opts.help:
		fmt.Fprint(stdout, usage)
		return 0
	case opts.version:
		fmt.Fprintln(stdout, version)
		return 0
	case opts.importPath != "", opts.exportPath != "":
	default:
		fmt.Fprint(stdout, usage)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	log := logger.New(logger.Options{Writer: stderr, Level: cfg.LogLevel, Color: cfg.LogColor, JSON: cfg.LogFormat == config.LogFormatJSON})
	slog.SetDefault(log)

	if opts.importPath != "" {
		err = runImport(ctx, cfg, log, opts.importPath, stdout)
	} else {
		err = runExport(ctx, cfg, log, opts.exportPath, stdout)
	}
	if err != nil {
		log.Error("Command failed", "error", err)
		return 1
	}
	return 0
}

func runImport(ctx context.Context, cfg *config.Config, log *slog.Logger, path string, stdout io.Writer) error {
	passwordHash, err := utils.HashPassword(cfg.DefaultUserPassword)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}

	client, err := config.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	config.InitCollections(client, cfg.DBName)

	users := repository.NewUserRepository(config.UserCollection)
	offers := repository.NewOfferRepository(config.OfferCollection)
	store := repository.NewStore(client, users, offers)
	if err := users.EnsureIndexes(ctx); err != nil {
		_ = store.Close(context.Background())
		return err
	}

	im := importer.New(store, log, importer.Config{
		PasswordHash: passwordHash,
		ChunkSize:    cfg.ImportChunkSize,
		OnLine: func(s importer.Summary) {
			if s.Lines%progressEvery == 0 {
				log.Info("Import progress", "lines", s.Lines, "imported", s.Imported, "failed", s.Failed)
			}
		},
	})

	sum, err := im.ImportFile(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Imported %d of %d lines (%d failed, %d new users)\n", sum.Imported, sum.Lines, sum.Failed, sum.UsersCreated)
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, log *slog.Logger, path string, stdout io.Writer) error {
	client, err := config.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := config.CloseDBConnection(client); err != nil {
			log.Error("Error closing MongoDB connection", "error", err)
		}
	}()
	config.InitCollections(client, cfg.DBName)

	n, err := importer.ExportFile(ctx, repository.NewOfferRepository(config.OfferCollection), path, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Exported %d offers to %s\n", n, path)
	return nil
}
