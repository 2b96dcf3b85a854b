package cli

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/smartdocs/internal/infra/report"
	"github.com/bryanwahyu/smartdocs/internal/infra/watch"
)

var (
	watchOutDir   string
	watchFormat   string
	watchExisting bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Analyze every agreement dropped into a folder",
	Long: `Watches a folder and analyzes each new or rewritten .pdf or .txt file.
Results go to --out-dir (default <dir>/results) as <name>.analysis.<format>.
A failed document is logged and the watch keeps going.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchOutDir, "out-dir", "", "directory for results")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "json", "output format: json, html or xlsx")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also analyze files already in the folder")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", time.Second, "quiet period before a file is picked up")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(watchFormat)
	if err != nil {
		return err
	}
	dir := args[0]
	outDir := watchOutDir
	if outDir == "" {
		outDir = filepath.Join(dir, "results")
	}

	ctx := cmd.Context()
	an, closeFn, err := newAnalyzer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	paths, err := watch.Start(ctx, watch.Config{
		Dir:         dir,
		InitialScan: watchExisting,
		Debounce:    watchDebounce,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s, results in %s\n", dir, outDir)

	for path := range paths {
		out := filepath.Join(outDir, resultName(path, format))
		res, err := analyzeFile(cmd, an, path, out, format)
		if err != nil {
			log.Error("watch.analyze_failed", "path", path, "error", err)
			continue
		}
		printSummary(cmd, out, res)
	}
	return nil
}

func resultName(path string, format report.Format) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".analysis" + format.Ext()
}
