package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/safecity/safecity/internal/gendata"
	"github.com/safecity/safecity/pkg/logger"
)

// Default configuration constants.
const (
	defaultOutputDir = "data"
	defaultBoroughs  = 33
	defaultMonths    = 24
	defaultStart     = "2023-01"
	defaultExtracts  = 2
	defaultTimeout   = 2 * time.Minute
)

func main() {
	var (
		outputDir = flag.String("out", defaultOutputDir, "Output directory for the generated dataset")
		boroughs  = flag.Int("boroughs", defaultBoroughs, "Number of boroughs to generate (max 33)")
		months    = flag.Int("months", defaultMonths, "Number of consecutive months per borough")
		start     = flag.String("start", defaultStart, "First month, YYYY-MM")
		extracts  = flag.Int("extracts", defaultExtracts, "Number of CSV extract files to spread the months over")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	cfg := gendata.NewConfig(*outputDir)
	cfg.Boroughs = *boroughs
	cfg.Months = *months
	cfg.StartMonth = *start
	cfg.Extracts = *extracts

	if err := gendata.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
