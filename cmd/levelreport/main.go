// Command levelreport prints the proficiency distribution of a selection
// from an assessment workbook without starting the web server.
//
//	levelreport -file AI_Rapor.xlsx -area math_literacy -school "Atatürk Lisesi"
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"

	"bedep/internal/config"
	"bedep/internal/exporter"
	"bedep/internal/files"
	"bedep/internal/services"
	"bedep/internal/workbook"
	api "bedep/pkg/contracts/api/v1"
)

const envPrefix = "LEVELREPORT"

var errUsage = errors.New("usage")

func main() {
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "levelreport: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("levelreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		file    = fs.String("file", "", "assessment workbook (.xlsx) or a directory of them")
		sheet   = fs.String("sheet", "", "sheet name (default from config)")
		area    = fs.String("area", "", "subject area id")
		school  = fs.String("school", "", "school name, empty for all schools")
		branch  = fs.String("branch", "", "branch within the school")
		chart   = fs.String("chart", "bar", "chart kind: bar or pie")
		guides  = fs.Bool("guides", true, "include guide-line checkpoints")
		format  = fs.String("format", "table", "output format: table, csv or json")
		verbose = fs.Bool("v", false, "log loader progress to stderr")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(envPrefix)); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("%w: -file is required", errUsage)
	}
	switch *format {
	case "table", "csv", "json":
	default:
		return fmt.Errorf("%w: unknown format %q", errUsage, *format)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	path, err := files.NewDiscovery("").ResolveWorkbook(*file)
	if err != nil {
		return err
	}

	cfg := config.Default()
	cfg.Dataset.Path = path
	if *sheet != "" {
		cfg.Dataset.Sheet = *sheet
	}

	res, err := workbook.NewLoader(workbook.LayoutFromConfig(cfg.Dataset), logger).Load(ctx, path)
	if err != nil {
		return err
	}

	svc := services.NewDashboardService(cfg, nil, logger)
	svc.SetDataset(ctx, res, path)

	view, err := svc.Render(ctx, api.DashboardRequest{
		Area:   *area,
		School: *school,
		Branch: *branch,
		Chart:  *chart,
		Guides: guides,
	})
	if err != nil {
		return err
	}

	exp := exporter.NewDashboardExporter()
	switch *format {
	case "csv":
		return exp.ExportCSV(stdout, view, false)
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	default:
		return exp.ExportTable(stdout, view)
	}
}
