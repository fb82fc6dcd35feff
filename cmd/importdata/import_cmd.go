package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/importdata/internal/application"
	"github.com/JonMunkholm/importdata/internal/config"
	"github.com/JonMunkholm/importdata/internal/core"
	"github.com/JonMunkholm/importdata/internal/logging"
)

type importOptions struct {
	action        string
	file          string
	docRegisterID string
	searchDoubles string
	supplement    bool
	layout        string
	report        string
	progress      bool
	strict        bool
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import one workbook with the given action",
		Example: `  importdata import -a importcompanies -f companies.xlsx
  importdata import -a importcontracts -f contracts.xlsx --doc-register-id 7 --supplement`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.action, "action", "a", "", "Action to run, see the actions command (required)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Input xlsx workbook (required)")
	cmd.Flags().StringVar(&opts.docRegisterID, "doc-register-id", "", "Registration journal id for imported documents")
	cmd.Flags().StringVarP(&opts.searchDoubles, "search-doubles", "d", "", "Duplicate detection: ignore disables it (default: IMPORT_DUPLICATES)")
	cmd.Flags().BoolVar(&opts.supplement, "supplement", false, "Update duplicates instead of rejecting them (default: IMPORT_SUPPLEMENT)")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "YAML sheet layout file (default: IMPORT_LAYOUT_FILE)")
	cmd.Flags().StringVar(&opts.report, "report", "", "Write the JSON batch report to this file (default: IMPORT_REPORT_FILE)")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "Show a progress bar per sheet")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with code 2 when any row produced an error")
	_ = cmd.MarkFlagRequired("action")
	_ = cmd.MarkFlagRequired("file")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := commandTable().Get(opts.action); err != nil {
			return withCode(exitUsage, err)
		}
		if strings.TrimSpace(opts.file) == "" {
			return withCode(exitUsage, errors.New("--file is required"))
		}
		if _, err := os.Stat(opts.file); err != nil {
			return withCode(exitUsage, errors.Wrap(err, "--file"))
		}
		return nil
	}

	return cmd
}

// request merges flags over the configured defaults.
func (o importOptions) request(cmd *cobra.Command, cfg *config.Config) application.Request {
	req := application.Request{
		Action:        o.action,
		File:          o.file,
		Supplement:    cfg.Import.Supplement,
		Duplicates:    core.ParseDuplicatePolicy(cfg.Import.Duplicates),
		DocRegisterID: strings.TrimSpace(o.docRegisterID),
		ReportFile:    cfg.Import.ReportFile,
	}
	if cmd.Flags().Changed("supplement") {
		req.Supplement = o.supplement
	}
	if cmd.Flags().Changed("search-doubles") {
		req.Duplicates = core.ParseDuplicatePolicy(o.searchDoubles)
	}
	if o.report != "" {
		req.ReportFile = o.report
	}
	return req
}

func runImport(cmd *cobra.Command, root *rootOptions, opts importOptions) error {
	cfg, closeLog, err := setup(root)
	if err != nil {
		return err
	}
	defer closeLog.Close()
	if opts.layout != "" {
		cfg.Import.LayoutFile = opts.layout
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req := opts.request(cmd, cfg)
	start := time.Now()
	log := logrus.WithFields(logrus.Fields{"action": req.Action, "file": req.File})
	log.Info("process started")
	defer func() {
		log.WithField("elapsed_ms", time.Since(start).Milliseconds()).Info("process stopped")
	}()

	var appOpts []application.Option
	if opts.progress {
		appOpts = append(appOpts, application.WithProgress(newProgressBars(cmd.ErrOrStderr())))
	}
	app, err := application.New(ctx, cfg, appOpts...)
	if err != nil {
		return classify(err)
	}
	defer app.Close()

	report, err := app.Run(ctx, req)
	if err != nil {
		return classify(err)
	}

	sum := report.Summary()
	if err := writeSummary(cmd.OutOrStdout(), req.Action, report); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return withCode(exitValidation, errors.Wrap(ctx.Err(), "import interrupted"))
	}
	if opts.strict && sum.Errors > 0 {
		return withCode(exitValidation, fmt.Errorf("import finished with %d errors", sum.Errors))
	}
	return nil
}

// setup loads configuration and configures logging.
func setup(root *rootOptions) (*config.Config, io.Closer, error) {
	cfg, err := config.Load(root.envFiles...)
	if err != nil {
		return nil, nil, withCode(exitUsage, err)
	}
	closer, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	if err != nil {
		return nil, nil, withCode(exitUsage, err)
	}
	logrus.WithField("config", cfg.String()).Debug("configuration loaded")
	return cfg, closer, nil
}

// classify maps run setup failures to exit codes.
func classify(err error) error {
	switch {
	case errors.Is(err, application.ErrStoreUnavailable):
		return withCode(exitStore, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return withCode(exitValidation, err)
	default:
		if !core.IsUserFacing(err) {
			return withCode(exitUsage, err)
		}
		msg := core.MapError(err)
		return withCode(exitUsage, fmt.Errorf("%s (%s): %w", msg.Message, msg.Code, err))
	}
}

func writeSummary(w io.Writer, action string, report *core.BatchReport) error {
	sum := report.Summary()
	_, err := fmt.Fprintf(w,
		"%s: processed %d, created %d, updated %d, rejected %d, skipped %d, warnings %d, errors %d (%d ms)\n",
		action, sum.Processed, sum.Created, sum.Updated, sum.Rejected, sum.Skipped,
		sum.Warnings, sum.Errors, report.Elapsed().Milliseconds())
	return err
}
