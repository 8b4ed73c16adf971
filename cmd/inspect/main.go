package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/logging"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to fusion_weights.db")
	last := flag.Int("last", 20, "show N most recent learning events")
	jsonOut := flag.Bool("json", false, "output as JSON instead of tables")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/fusion_weights.db [--last N] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := run(st, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(st *store.Store, last int, jsonOut bool) error {
	ctx := context.Background()

	profiles, err := st.ListProfiles(ctx)
	if err != nil {
		return err
	}
	events, err := logging.NewEventLog(st.DB()).Recent(ctx, last)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(profiles, events)
	}
	printProfiles(profiles)
	printEvents(events)
	return nil
}

func printJSON(profiles []store.ProfileRow, events []logging.LearningEvent) error {
	out := map[string]interface{}{
		"profiles": profiles,
		"events":   events,
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}

// #endregion run

// #region tables

func printProfiles(profiles []store.ProfileRow) {
	fmt.Println("WEIGHT PROFILES")
	fmt.Printf("%-16s %-10s %9s %9s %8s %s\n", "CONTEXT", "ROW", "SYMBOLIC", "NEURAL", "SAMPLES", "UPDATED")
	fmt.Println(strings.Repeat("-", 72))
	for _, r := range profiles {
		row := "production"
		if r.IsCandidate {
			row = "candidate"
		}
		fmt.Printf("%-16s %-10s %9.3f %9.3f %8d %s\n",
			r.Profile.ContextType, row, r.Profile.SymbolicWeight, r.Profile.NeuralWeight,
			r.Profile.SampleCount, r.LastUpdated.Format("2006-01-02 15:04:05"))
	}
	fmt.Println()
}

func printEvents(events []logging.LearningEvent) {
	fmt.Println("RECENT LEARNING EVENTS")
	fmt.Printf("%-24s %-16s %6s %7s %s\n", "TRIGGER", "CONTEXT", "SEEDS", "IMPACT", "AT")
	fmt.Println(strings.Repeat("-", 72))
	for _, ev := range events {
		fmt.Printf("%-24s %-16s %6d %7.2f %s\n",
			ev.TriggerType, ev.ContextType, ev.NewSeeds, ev.Impact,
			ev.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

// #endregion tables
