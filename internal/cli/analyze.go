package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	appanalysis "github.com/bryanwahyu/smartdocs/internal/application/analysis"
	domain "github.com/bryanwahyu/smartdocs/internal/domain/analysis"
	"github.com/bryanwahyu/smartdocs/internal/infra/report"
)

const defaultOutput = "analysis_output.json"

var (
	analyzeOut    string
	analyzeFormat string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze one loan agreement",
	Long: `Extracts the text of a PDF or .txt agreement, runs the risk review and
writes the result. With --format html or xlsx and no --out, the output
file takes the matching extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", defaultOutput, "output file")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "json", "output format: json, html or xlsx")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(analyzeFormat)
	if err != nil {
		return err
	}
	out := analyzeOut
	if !cmd.Flags().Changed("out") {
		out = strings.TrimSuffix(defaultOutput, filepath.Ext(defaultOutput)) + format.Ext()
	}

	ctx := cmd.Context()
	an, closeFn, err := newAnalyzer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := analyzeFile(cmd, an, args[0], out, format)
	if err != nil {
		return err
	}
	printSummary(cmd, out, res)
	return nil
}

// analyzeFile runs one document and writes its report to out.
func analyzeFile(cmd *cobra.Command, an Analyzer, path, out string, format report.Format) (domain.Result, error) {
	id := uuid.NewString()
	res, err := an.Analyze(cmd.Context(), appanalysis.Request{
		TenantID:   localTenant,
		AnalysisID: id,
		Path:       path,
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("analyze %s (id %s): %w", path, id, err)
	}
	if err := writeReport(out, format, res); err != nil {
		return domain.Result{}, err
	}
	return res, nil
}

func writeReport(path string, format report.Format, res domain.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := report.Write(f, format, res, time.Now()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func printSummary(cmd *cobra.Command, out string, res domain.Result) {
	st := domain.Summarize(res)
	cmd.Printf("Wrote %s\n", out)
	cmd.Printf("%d clauses: %d red, %d amber, %d green (%d missing, %d deviations)\n",
		st.Total, st.Red, st.Amber, st.Green, st.Missing, st.Deviations)
	cmd.Printf("Risk score: %d/100\n", st.RiskScore)
}
