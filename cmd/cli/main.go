package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"marketintel/app"
	"marketintel/domain/insights"
	"marketintel/internal/config"
	"marketintel/internal/container"
	"marketintel/internal/dataset"
	"marketintel/internal/report"
	"marketintel/internal/session"
	"marketintel/internal/testkit"
	"marketintel/ports"
	"marketintel/ui"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "marketintel",
		Short: "Cross-platform app market intelligence: ingest, join, analyze, report",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newFetchCmd(),
		newReportCmd(),
		newServeCmd(),
		newGenerateCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(ctx, cfg)
}

func newAnalyzeCmd() *cobra.Command {
	var androidFile, outDir, exportFormat string
	var queries []string
	var num int

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Ingest a Google Play file, fetch App Store data, join and report",
		Long: `Run the full pipeline once.

Example: marketintel analyze --android googleplaystore.csv --query social --query games --out ./out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			if outDir != "" {
				if c.Reports, err = report.NewFileStore(outDir); err != nil {
					return err
				}
			}
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), c, androidFile, queries, num, exportFormat)
		},
	}

	cmd.Flags().StringVar(&androidFile, "android", "", "Google Play CSV/XLSX file")
	cmd.Flags().StringArrayVar(&queries, "query", nil, "App Store search query (repeatable, results accumulate)")
	cmd.Flags().IntVar(&num, "num", ports.DefaultSearchResults, "Results per query (1-200)")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (defaults to REPORT_DIR)")
	cmd.Flags().StringVar(&exportFormat, "export", dataset.ExportCSV, "Combined dataset format: csv or xlsx")
	_ = cmd.MarkFlagRequired("android")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer, c *container.Container, androidFile string, queries []string, num int, exportFormat string) error {
	sess := session.New()

	ingest := c.Ingestion.IngestAndroidFile(sess, androidFile)
	fmt.Fprintln(out, ingest.Message)

	for _, q := range queries {
		outcome := c.Ingestion.FetchIOS(ctx, sess, ports.SearchRequest{Query: q, Num: num})
		if outcome.Warning != "" {
			fmt.Fprintln(out, "warning:", outcome.Warning)
		}
		fmt.Fprintln(out, outcome.Message)
	}

	result, err := c.Pipeline.Analyze(ctx, sess)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Combined %d cross-platform apps.\n", result.Combined.Len())
	printStages(out, result.Stages)

	f, err := os.Create(filepath.Join(c.Reports.BasePath(), "combined_dataset."+exportFormat))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := dataset.Export(f, result.Combined, exportFormat); err != nil {
		return err
	}

	path, err := c.Reports.SaveInsights(ctx, result.Bundle)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Insights saved to", path)

	for _, format := range []report.Format{report.FormatMarkdown, report.FormatHTML, report.FormatPDF} {
		path, err := c.Reports.SaveReport(ctx, result.Bundle, format)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Report saved to", path)
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, report.Markdown(result.Bundle))
	return nil
}

func printStages(out io.Writer, stages []app.StageTiming) {
	for _, s := range stages {
		fmt.Fprintf(out, "  %-10s %v\n", s.Stage, s.Duration)
	}
}

func newFetchCmd() *cobra.Command {
	var num int
	var country, lang string

	cmd := &cobra.Command{
		Use:   "fetch [query]",
		Short: "Fetch and normalize live App Store search results as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			sess := session.New()
			outcome := c.Ingestion.FetchIOS(cmd.Context(), sess, ports.SearchRequest{
				Query: args[0], Num: num, Country: country, Lang: lang,
			})
			if !outcome.OK {
				return fmt.Errorf("%s", outcome.Message)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sess.IOS.Records)
		},
	}

	cmd.Flags().IntVar(&num, "num", ports.DefaultSearchResults, "Maximum results (1-200)")
	cmd.Flags().StringVar(&country, "country", "us", "Store country code")
	cmd.Flags().StringVar(&lang, "lang", "en", "Language code")

	return cmd
}

func newReportCmd() *cobra.Command {
	var formatName, output string

	cmd := &cobra.Command{
		Use:   "report [insights.json]",
		Short: "Render a saved insight bundle as md, html or pdf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(formatName)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			bundle, err := insights.ParseBundle(raw)
			if err != nil {
				return err
			}
			data, err := report.Render(bundle, format)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0644)
		},
	}

	cmd.Flags().StringVar(&formatName, "format", "md", "Report format: md, html or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyst session over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			server, err := ui.NewApp(c.Pipeline, c.Reports, c.Logger)
			if err != nil {
				return err
			}
			if port == "" {
				port = c.Config.Server.Port
			}
			return server.Start(cmd.Context(), ui.Config{Port: port})
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (defaults to PORT)")

	return cmd
}

func newGenerateCmd() *cobra.Command {
	var apps int
	var seed int64
	var outDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic Google Play export and App Store response for demos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultMarketConfig()
			cfg.AppCount = apps
			cfg.Seed = seed
			market := testkit.NewMarketGenerator(cfg)

			android, err := market.AndroidCSV()
			if err != nil {
				return err
			}
			ios, err := market.IOSJSON()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}
			files := map[string][]byte{
				"googleplaystore_sample.csv": android,
				"appstore_sample.json":       ios,
			}
			for name, data := range files {
				if err := os.WriteFile(filepath.Join(outDir, name), data, 0644); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d apps (%d on both stores) in %s\n", apps, market.OverlapCount(), outDir)
			return nil
		},
	}

	cmd.Flags().IntVar(&apps, "apps", 200, "Number of apps")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")

	return cmd
}
