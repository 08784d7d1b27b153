package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sncix/pinyin-annotation/config"
	"github.com/sncix/pinyin-annotation/internal/core/annotate"
	"github.com/sncix/pinyin-annotation/internal/services/batch"
	"github.com/sncix/pinyin-annotation/internal/services/pipeline"
	"github.com/sncix/pinyin-annotation/pkg/logger"
	s3client "github.com/sncix/pinyin-annotation/pkg/s3"
)

type options struct {
	hanziTag   string
	modelName  string
	configPath string
	mode       string
	phrase     string
	input      string
	output     string
	workers    int
	logLevel   string
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "pinyin-annotate",
		Short:         "Annotate phrases with the pinyin readings an LLM picks for each polyphonic character",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, opts)
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts, stdout)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.hanziTag, "hanzi_tag", "", "hanzi tag, e.g. '樂'")
	f.StringVar(&opts.modelName, "model_name", "", "model name, e.g. 'deepseek-r1:7b'")
	f.StringVar(&opts.configPath, "config", "config.yml", "path to the YAML config file")
	f.StringVar(&opts.mode, "mode", "", "single-phrase or batch-file (overrides run.mode)")
	f.StringVar(&opts.phrase, "phrase", "", "phrase for single-phrase mode")
	f.StringVar(&opts.input, "input", "", "batch input path, s3://bucket/key or s3:///key in s3.bucket (default luna_{hanzi_tag}.txt, read from s3.bucket when set)")
	f.StringVar(&opts.output, "output", "", "batch output path, appended to (default results_luna_{tag}.txt)")
	f.IntVar(&opts.workers, "workers", 0, "phrases annotated concurrently in batch mode")
	f.StringVar(&opts.logLevel, "log_level", "", "debug, info, warn or error (overrides log_level)")
	_ = cmd.MarkFlagRequired("hanzi_tag")
	_ = cmd.MarkFlagRequired("model_name")
	return cmd
}

// applyFlags lets explicitly set flags win over file and env configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) {
	cfg.Engine.Model = opts.modelName
	f := cmd.Flags()
	if f.Changed("mode") {
		cfg.Run.Mode = opts.mode
	}
	if f.Changed("phrase") {
		cfg.Run.Phrase = opts.phrase
	}
	if f.Changed("input") {
		cfg.Run.InputPath = opts.input
	}
	if f.Changed("output") {
		cfg.Run.OutputPath = opts.output
	}
	if f.Changed("workers") {
		cfg.Run.Workers = opts.workers
	}
}

func run(ctx context.Context, cfg config.Config, opts options, stdout io.Writer) error {
	hanziTag := opts.hanziTag
	log, closer, err := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		File:       logger.FileName(cfg.Log.Dir, hanziTag, cfg.Engine.Model),
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Console:    cfg.Log.Console,
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	if opts.logLevel != "" {
		if err := logger.SetLevel(log, opts.logLevel); err != nil {
			return err
		}
	}

	if err := runWithLogger(ctx, cfg, hanziTag, stdout, log); err != nil {
		log.WithField(logger.NameField, "root").Error(err)
		return err
	}
	return nil
}

func runWithLogger(ctx context.Context, cfg config.Config, hanziTag string, stdout io.Writer, log *logrus.Logger) error {
	annotator, err := pipeline.Build(cfg, log)
	if err != nil {
		return err
	}

	switch cfg.Run.Mode {
	case config.ModeBatchFile:
		return runBatch(ctx, cfg, hanziTag, annotator, log)
	default:
		return annotator.AnnotatePhrase(ctx, cfg.Run.Phrase, stdout)
	}
}

func runBatch(ctx context.Context, cfg config.Config, hanziTag string, annotator *annotate.Annotator, log *logrus.Logger) error {
	input := cfg.Run.InputPath
	if input == "" {
		input = config.InputFileName(hanziTag)
		if cfg.S3.Bucket != "" {
			input = "s3:///" + input
		}
	}
	output := cfg.Run.OutputPath
	if output == "" {
		output = config.OutputFileName(hanziTag, cfg.Engine.Model)
	}

	var objects batch.ObjectGetter
	if strings.HasPrefix(input, "s3://") {
		client, err := s3client.GetClient(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("%v: %w", config.ModuleS3, err)
		}
		objects = client
	}

	in, err := batch.OpenInput(ctx, input, objects, cfg.S3.Bucket)
	if err != nil {
		return fmt.Errorf("%v: open input: %w", config.ModuleBatch, err)
	}
	phrases, err := batch.ReadPhrases(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("%v: read %s: %w", config.ModuleBatch, input, err)
	}

	out, err := batch.OpenOutput(output)
	if err != nil {
		return fmt.Errorf("%v: open output: %w", config.ModuleBatch, err)
	}
	defer out.Close()

	runner := batch.NewRunner(annotator, cfg.Run.Workers, logger.Named(log, string(config.ModuleBatch)))
	_, err = runner.Run(ctx, phrases, out)
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
