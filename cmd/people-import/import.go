package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Artexxx/HR-People-Analytics/internal/app"
	"github.com/Artexxx/HR-People-Analytics/internal/config"
	"github.com/Artexxx/HR-People-Analytics/internal/exchange/producer"
	"github.com/Artexxx/HR-People-Analytics/internal/ingest"
	"github.com/Artexxx/HR-People-Analytics/library/yamlreader"
)

type importOptions struct {
	configPath string
	dryRun     bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "people-import [flags] <file.csv|file.xlsx>",
		Short: "Import personnel records from a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load(".env")
			if opts.configPath == "" {
				opts.configPath = os.Getenv("CONFIG_PATH")
			}
			if opts.configPath == "" {
				opts.configPath = "config/application-local.yaml"
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := yamlreader.NewConfig[config.Config](opts.configPath)
			if err != nil {
				return fmt.Errorf("read config %s: %w", opts.configPath, err)
			}
			app.SetupLogging(cfg.Log.Level.Value)

			n, err := runImport(cmd.Context(), cfg, args[0], opts.dryRun, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			log.Info().Str("file", args[0]).Int("rows", n).Bool("dry_run", opts.dryRun).Msg("import finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to config file (default: $CONFIG_PATH or config/application-local.yaml)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and validate the file without writing anything")

	return cmd
}

// runImport загружает файл в хранилище записей и возвращает число принятых
// строк. С dryRun файл только проверяется.
func runImport(ctx context.Context, cfg *config.Config, path string, dryRun bool, out io.Writer) (int, error) {
	if dryRun {
		return checkFile(path, cfg.Upload.MaxBytes.Value, out)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	storage, err := app.OpenStorage(ctx, cfg.Storage, cfg.Postgres)
	if err != nil {
		return 0, err
	}
	defer storage.Close()

	archive, err := app.OpenArchive(ctx, cfg.Upload)
	if err != nil {
		return 0, err
	}

	res, err := ingest.NewImporter(storage.People, archive, cfg.Upload.MaxBytes.Value).
		Import(ctx, filepath.Base(path), f)
	if err != nil {
		return 0, err
	}

	if cfg.Kafka.Enabled.Value {
		announce(ctx, cfg, filepath.Base(path), res)
	}

	_, _ = fmt.Fprintf(out, "imported %d records from %s\n", res.Imported, path)
	if res.ArtifactKey != "" {
		_, _ = fmt.Fprintf(out, "archived as %s\n", res.ArtifactKey)
	}

	return res.Imported, nil
}

func checkFile(path string, maxBytes int64, out io.Writer) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.Size() > maxBytes {
		return 0, fmt.Errorf("%w: %d bytes", ingest.ErrTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	tbl, err := ingest.Parse(path, data)
	if err != nil {
		return 0, err
	}
	if err := tbl.Validate(); err != nil {
		return 0, err
	}
	rows, err := tbl.MapRows()
	if err != nil {
		return 0, err
	}

	_, _ = fmt.Fprintf(out, "%s: %d valid records\n", path, len(rows))
	return len(rows), nil
}

// announce публикует people.imported. Сбой брокера не отменяет импорт.
func announce(ctx context.Context, cfg *config.Config, file string, res ingest.Result) {
	sp, err := producer.NewSyncProducer(cfg.Kafka.Bootstrap.Value, cfg.Kafka.ProducerClientID.Value)
	if err != nil {
		log.Warn().Err(err).Msg("kafka producer unavailable, event not published")
		return
	}

	p := producer.NewPeopleProducer(sp, producer.Config{
		Topic:  cfg.Kafka.Topics.Events.Value,
		Source: "people-import",
	}, log.Logger)
	defer func() { _ = p.Close() }()

	if err := p.PublishImported(ctx, file, res.Imported, res.ArtifactKey); err != nil {
		log.Warn().Err(err).Msg("publish people.imported failed")
	}
}
