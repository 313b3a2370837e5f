package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/locvowork/exposure_sheet_service/internal/logger"
	"github.com/locvowork/exposure_sheet_service/internal/service"
	"github.com/locvowork/exposure_sheet_service/pkg/sheetio"
)

func main() {
	input := flag.String("in", "", "Path to the workbook to process (required)")
	output := flag.String("out", "", "Path for the formatted workbook (default <in>_formatted.xlsx)")
	jsonOut := flag.String("json", "", "Optional path for the parsed trees as JSON")
	sheets := flag.String("sheets", "", "Comma separated sheet names (default all)")
	styleTpl := flag.String("style", "", "Optional YAML style template")
	workers := flag.Int("workers", 4, "Worker count for sheet processing")
	logLevel := flag.String("log-level", "info", "Log level")

	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	logger.InitLogging("", *logLevel)

	styleCfg, err := sheetio.LoadStyleConfig(*styleTpl)
	if err != nil {
		log.Fatalf("failed to load style template: %v", err)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("failed to read workbook: %v", err)
	}

	svc := service.NewProcessService(styleCfg, *workers, nil, nil, nil)

	results, err := svc.ProcessWorkbook(ctx, filepath.Base(*input), data, splitSheets(*sheets))
	if err != nil {
		log.Fatalf("failed to process workbook: %v", err)
	}

	ok, failed := 0, 0
	for _, res := range results {
		if res.Failed() {
			failed++
			fmt.Fprintf(os.Stderr, "sheet %q failed: %s\n", res.SheetName, res.Error)
			continue
		}
		ok++
		fmt.Printf("sheet %q: %d groups, %d warnings\n", res.SheetName, len(res.Tree.Groups), len(res.Warnings))
	}

	if *jsonOut != "" {
		payload, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			log.Fatalf("failed to marshal results: %v", err)
		}
		if err := os.WriteFile(*jsonOut, payload, 0644); err != nil {
			log.Fatalf("failed to write %s: %v", *jsonOut, err)
		}
	}

	if ok > 0 {
		out := *output
		if out == "" {
			out = strings.TrimSuffix(*input, filepath.Ext(*input)) + "_formatted.xlsx"
		}
		rendered, err := svc.RenderWorkbook(results)
		if err != nil {
			log.Fatalf("failed to render workbook: %v", err)
		}
		if err := os.WriteFile(out, rendered, 0644); err != nil {
			log.Fatalf("failed to write %s: %v", out, err)
		}
		fmt.Printf("wrote %s\n", out)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func splitSheets(raw string) []string {
	if raw == "" {
		return nil
	}
	var names []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
