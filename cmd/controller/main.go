package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/cache"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/calibrator"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/config"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/feedback"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/fusion"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/logging"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/store"
)

// #region request
// request is one JSON input line. Kind selects the payload: "fuse" runs the
// assembler, "hitl" and "reflection" feed the calibrator.
type request struct {
	Kind       string                    `json:"kind"`
	Fusion     *fusion.Context           `json:"fusion,omitempty"`
	HITL       *feedback.HITLEvent       `json:"hitl,omitempty"`
	Reflection *feedback.ReflectionEvent `json:"reflection,omitempty"`
}
// #endregion request

// #region main
func main() {
	configPath := envOr("FUSION_CONFIG", "")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	dbPath := envOr("FUSION_DB", cfg.DBPath)

	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	st, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	weightCache := cache.New(st, cfg.CacheConfig(), logger)
	eventLog := logging.NewEventLog(st.DB())
	cal := calibrator.New(st, weightCache, eventLog, cfg.CalibratorConfig(), logger)
	router := feedback.NewRouter(cal)
	assembler := fusion.New(weightCache, cfg.FusionConfig(), logger)

	fmt.Println("Response Fusion Controller ready.")
	fmt.Printf("  DB: %s\n", dbPath)
	fmt.Println(`Paste a JSON request per line ({"kind":"fuse"|"hitl"|"reflection",...}), or 'quit' to exit:`)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ctx := context.Background()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		handleLine(ctx, line, assembler, router)
	}
}
// #endregion main

// #region handle
func handleLine(ctx context.Context, line string, assembler *fusion.Assembler, router *feedback.Router) {
	var req request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		fmt.Printf("bad request: %v\n", err)
		return
	}

	switch req.Kind {
	case "fuse":
		if req.Fusion == nil {
			fmt.Println("bad request: fuse without fusion payload")
			return
		}
		result := assembler.Assemble(*req.Fusion)
		printJSON(result)

	case "hitl":
		err := router.Dispatch(ctx, feedback.Event{Kind: "hitl", HITL: req.HITL})
		if err != nil {
			fmt.Printf("bad request: %v\n", err)
			return
		}
		fmt.Println("feedback accepted")

	case "reflection":
		err := router.Dispatch(ctx, feedback.Event{Kind: "reflection", Reflection: req.Reflection})
		if err != nil {
			fmt.Printf("bad request: %v\n", err)
			return
		}
		fmt.Println("feedback accepted")

	default:
		fmt.Printf("unknown kind %q\n", req.Kind)
	}
}

func printJSON(v interface{}) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("encode result: %v\n", err)
		return
	}
	fmt.Println(string(raw))
}
// #endregion handle

// #region env
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion env
