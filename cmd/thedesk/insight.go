package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"thedesk/internal/gateway/app"
	"thedesk/internal/gateway/config"
	"thedesk/internal/insight"
	"thedesk/internal/journal"
	"thedesk/internal/util/jsonutil"
)

var (
	insightFile    string
	insightOffline bool
	insightSeed    uint64
	insightTimeout time.Duration
)

var insightCmd = &cobra.Command{
	Use:   "insight",
	Short: "Produce one insight from a JSON file of entries",
	Long: `Reads a JSON array of entries (or {"entries": [...]}) and prints the insight as JSON.

Entries may be in any order; they are sorted most recent first. Remote models are
used when credentials are configured unless --offline is set.`,
	RunE: runInsight,
}

func init() {
	insightCmd.Flags().StringVarP(&insightFile, "file", "f", "", "path to entries JSON (- for stdin)")
	insightCmd.Flags().BoolVar(&insightOffline, "offline", false, "use the rule-based generator only")
	insightCmd.Flags().Uint64Var(&insightSeed, "seed", 0, "seed for rule-based template selection (0 = random)")
	insightCmd.Flags().DurationVar(&insightTimeout, "timeout", 90*time.Second, "overall deadline")
	_ = insightCmd.MarkFlagRequired("file")
}

func readEntries(path string) ([]journal.Entry, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	var entries []journal.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		var wrapped struct {
			Entries []journal.Entry `json:"entries"`
		}
		if json.Unmarshal(raw, &wrapped) != nil {
			return nil, fmt.Errorf("decode entries: %w", err)
		}
		entries = wrapped.Entries
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})
	return entries, nil
}

func runInsight(cmd *cobra.Command, _ []string) error {
	entries, err := readEntries(insightFile)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), insightTimeout)
	defer cancel()

	var rng insight.Rand
	if insightSeed != 0 {
		rng = insight.SeededRand(insightSeed)
	}

	var producer interface {
		Produce(context.Context, []journal.Entry) (journal.Insight, error)
	}
	if insightOffline {
		producer = insight.New(insight.Options{Rand: rng, Logger: logger})
	} else {
		eng, err := app.BuildEngine(ctx, cfg.Insight, app.EngineOptions{Rand: rng, Logger: logger})
		if err != nil {
			return err
		}
		defer eng.Close()
		producer = eng
	}

	in, err := producer.Produce(ctx, entries)
	if err != nil {
		return err
	}
	out, err := jsonutil.MarshalNoEscapeIndent(in, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
