package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/usefold/pkg/config"
	"github.com/Sumatoshi-tech/usefold/pkg/discovery"
	"github.com/Sumatoshi-tech/usefold/pkg/folding"
	"github.com/Sumatoshi-tech/usefold/pkg/language"
	"github.com/Sumatoshi-tech/usefold/pkg/observability"
	"github.com/Sumatoshi-tech/usefold/pkg/render"
	"github.com/Sumatoshi-tech/usefold/pkg/textutil"
	"github.com/Sumatoshi-tech/usefold/pkg/watch"
)

// errWatchStdin is returned for fold --watch on stdin.
var errWatchStdin = errors.New("--watch cannot be used with stdin")

const (
	stdinArg  = "-"
	stdinName = "<stdin>"
	opFold    = "fold"
)

// FoldCommand holds the flags of the fold command.
type FoldCommand struct {
	global *GlobalOptions

	language  string
	format    string
	noColor   bool
	zeroBased bool
	watch     bool
}

// NewFoldCommand creates the fold command.
func NewFoldCommand(global *GlobalOptions) *cobra.Command {
	fc := &FoldCommand{global: global}

	cmd := &cobra.Command{
		Use:   "fold [paths...]",
		Short: "Print import folding ranges",
		Long: `Print the line ranges of consecutive import statements.

Directories are walked using the discovery include and exclude globs; files
named explicitly are always read. Use "-" to read from stdin.`,
		RunE: fc.run,
	}

	cmd.Flags().StringVarP(&fc.language, "language", "l", "", "Force the language of every input (default: detect)")
	cmd.Flags().StringVarP(&fc.format, "format", "f", "", "Output format: text, table, json, yaml (default from config)")
	cmd.Flags().BoolVar(&fc.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&fc.zeroBased, "zero-based", false, "Print 0-based line numbers in text and table output")
	cmd.Flags().BoolVarP(&fc.watch, "watch", "w", false, "Re-print ranges when files change")

	return cmd
}

// folder scans files and records what it did.
type folder struct {
	languages language.Set
	forced    string
	logger    *slog.Logger
	metrics   *observability.FoldMetrics
}

func (fc *FoldCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(fc.global)
	if err != nil {
		return err
	}

	fc.applyOverrides(cmd, cfg)

	if !render.IsKnownFormat(cfg.Output.Format) {
		return fmt.Errorf("%w: %s", render.ErrUnknownFormat, cfg.Output.Format)
	}

	obsCfg, err := observabilityConfig(cfg, fc.global, observability.ModeCLI)
	if err != nil {
		return err
	}

	tel, err := initTelemetry(obsCfg)
	if err != nil {
		return err
	}
	defer tel.shutdown()

	fl := &folder{
		languages: language.NewSet(cfg.Languages...),
		forced:    language.Normalize(fc.language),
		logger:    tel.Logger,
		metrics:   tel.Fold,
	}

	renderOpts := render.Options{
		Format:    cfg.Output.Format,
		Color:     cfg.Output.Color && !color.NoColor,
		ZeroBased: cfg.Output.ZeroBased,
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 1 && args[0] == stdinArg {
		if fc.watch {
			return errWatchStdin
		}

		report, readErr := fl.foldReader(ctx, cmd.InOrStdin())
		if readErr != nil {
			return readErr
		}

		return render.Write(out, []render.FileReport{report}, renderOpts)
	}

	if len(args) == 0 {
		args = []string{"."}
	}

	finder, err := discovery.NewFinder(discovery.Options{
		Include:    cfg.Discovery.Include,
		Exclude:    cfg.Discovery.Exclude,
		SkipVendor: cfg.Discovery.SkipVendor,
	})
	if err != nil {
		return err
	}

	files, err := finder.Find(args)
	if err != nil {
		return err
	}

	start := time.Now()
	reports, err := fl.foldFiles(ctx, files)
	tel.RED.RecordRequest(ctx, opFold, statusOf(err), time.Since(start))

	if err != nil {
		return err
	}

	err = render.Write(out, reports, renderOpts)
	if err != nil {
		return err
	}

	if !fc.watch {
		return nil
	}

	return fc.watchFiles(ctx, fl, files, cfg.Watch.Debounce, out, renderOpts)
}

// applyOverrides lets explicitly set flags win over configuration values.
func (fc *FoldCommand) applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("format") {
		cfg.Output.Format = fc.format
	}

	if fc.noColor {
		cfg.Output.Color = false
	}

	if flags.Changed("zero-based") {
		cfg.Output.ZeroBased = fc.zeroBased
	}

	if fc.language != "" {
		cfg.Languages = append(cfg.Languages, fc.language)
	}
}

func (fc *FoldCommand) watchFiles(
	ctx context.Context,
	fl *folder,
	files []string,
	debounce time.Duration,
	out io.Writer,
	renderOpts render.Options,
) error {
	watcher, err := watch.New(files, debounce, fl.logger)
	if err != nil {
		return err
	}

	names := newPathIndex(files)

	fl.logger.InfoContext(ctx, "watching for changes", "files", len(files))

	return watcher.Run(ctx, func(changed []string) {
		reports, foldErr := fl.foldFiles(ctx, names.originals(changed))
		if foldErr != nil {
			fl.logger.WarnContext(ctx, "refold failed", "error", foldErr)

			return
		}

		renderErr := render.Write(out, reports, renderOpts)
		if renderErr != nil {
			fl.logger.WarnContext(ctx, "render failed", "error", renderErr)
		}
	})
}

func (fl *folder) foldFiles(ctx context.Context, files []string) ([]render.FileReport, error) {
	reports := make([]render.FileReport, 0, len(files))

	for _, path := range files {
		content, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			fl.logger.WarnContext(ctx, "file disappeared, skipping", "path", path)

			continue
		}

		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		report, ok := fl.fold(ctx, path, content)
		if ok {
			reports = append(reports, report)
		}
	}

	return reports, nil
}

// pathIndex maps the absolute paths the watcher reports back to the names
// the files were discovered under.
type pathIndex map[string]string

func newPathIndex(files []string) pathIndex {
	index := make(pathIndex, len(files))

	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			continue
		}

		index[abs] = file
	}

	return index
}

func (idx pathIndex) originals(changed []string) []string {
	out := make([]string, 0, len(changed))

	for _, path := range changed {
		if name, ok := idx[path]; ok {
			path = name
		}

		out = append(out, path)
	}

	return out
}

func (fl *folder) foldReader(ctx context.Context, r io.Reader) (render.FileReport, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return render.FileReport{}, fmt.Errorf("read stdin: %w", err)
	}

	lang := fl.forced
	if lang == "" {
		lang = fl.languages.Default()
	}

	return fl.scan(ctx, stdinName, lang, content), nil
}

// fold scans one file. It reports false for binary files and files whose
// language is not in the configured set.
func (fl *folder) fold(ctx context.Context, path string, content []byte) (render.FileReport, bool) {
	if textutil.IsBinary(content) {
		fl.logger.DebugContext(ctx, "skipping binary file", "path", path)

		return render.FileReport{}, false
	}

	lang := fl.forced
	if lang == "" {
		lang = language.Detect(path, content)
	}

	if !fl.languages.Allows(lang) {
		fl.metrics.RecordSkip(ctx, lang)
		fl.logger.DebugContext(ctx, "skipping file", "path", path, "language", lang)

		return render.FileReport{}, false
	}

	return fl.scan(ctx, path, lang, content), true
}

func (fl *folder) scan(ctx context.Context, path, lang string, content []byte) render.FileReport {
	lines := folding.FromText(string(content))
	ranges := folding.Scan(lines)

	fl.metrics.RecordScan(ctx, lang, lines.LineCount(), len(ranges))

	return render.FileReport{
		Path:     path,
		Language: lang,
		Size:     int64(len(content)),
		Lines:    lines.LineCount(),
		Ranges:   ranges,
	}
}

func statusOf(err error) string {
	if err != nil {
		return observability.StatusError
	}

	return observability.StatusOK
}
