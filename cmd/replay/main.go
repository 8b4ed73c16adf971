package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/calibrator"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/logging"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to feedback fixture JSON")
	quiet := flag.Bool("quiet", false, "suppress per-event logging")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--quiet]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *quiet))
}

// #endregion main

// #region run

func run(fixturePath string, quiet bool) int {
	fx, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	logger := logging.NewNop()
	if !quiet {
		l, err := logging.New("dev")
		if err != nil {
			fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
			return 2
		}
		logger = l
		defer logger.Sync()
	}

	summary := replay.Replay(context.Background(), fx, calibrator.DefaultConfig(), logger)

	if fx.Description != "" {
		fmt.Printf("fixture: %s\n", fx.Description)
	}
	fmt.Printf("events: %d dispatched: %d rejected: %d promotions: %d learning_mode: %d\n",
		summary.Events, summary.Dispatched, summary.Rejected, summary.Promotions, summary.LearningModeEvents)
	for _, p := range summary.FinalProfiles {
		fmt.Printf("  %-16s symbolic=%.3f neural=%.3f samples=%d\n",
			p.ContextType, p.SymbolicWeight, p.NeuralWeight, p.SampleCount)
	}

	if !summary.Matches(fx.Expected) {
		fmt.Fprintf(os.Stderr, "MISMATCH: expected promotions=%d learning_mode=%d rejected=%d\n",
			fx.Expected.Promotions, fx.Expected.LearningModeEvents, fx.Expected.Rejected)
		return 1
	}
	return 0
}

// #endregion run
