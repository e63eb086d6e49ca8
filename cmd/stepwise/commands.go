package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stepwise-org/stepwise/intent"
	"github.com/stepwise-org/stepwise/parser"
	"github.com/stepwise-org/stepwise/server"
	"github.com/stepwise-org/stepwise/tutor"
)

// ============================================================================
// COMMANDS
// ============================================================================

var (
	voiceInput bool
	jsonOutput bool
	noSteps    bool
	serveAddr  string
	serveMCP   bool

	rootCmd = &cobra.Command{
		Use:   "stepwise",
		Short: "An algebra tutor that turns spoken or typed math into worked derivations",
		Long: `Stepwise normalizes a phrase like "solve x squared plus three x minus
ten equals negative five x" into an expression tree, classifies what is
being asked, and produces the answer together with every rewrite step
it took to get there.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	askCmd = &cobra.Command{
		Use:   "ask [phrase]",
		Short: "Solve one phrase and print the derivation",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, or the MCP tool server with --mcp",
		RunE:  runServe,
	}

	vocabCmd = &cobra.Command{
		Use:   "vocab",
		Short: "Print the embedded spoken vocabulary and verb tables",
		Run:   runVocab,
	}
)

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&voiceInput, "voice", false, "Treat the phrase as a voice transcript")
	askCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full response as JSON")
	askCmd.Flags().BoolVar(&noSteps, "no-steps", false, "Print only the answer, not the derivation")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Serve MCP tools over stdio instead of HTTP")

	rootCmd.AddCommand(vocabCmd)
}

// cliLogger keeps stdout clean for results; warnings and errors go to stderr.
func cliLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runAsk(cmd *cobra.Command, args []string) error {
	phrase := strings.Join(args, " ")
	modality := intent.ModalityTyped
	if voiceInput {
		modality = intent.ModalityVoice
	}

	t := tutor.New(tutor.WithLogger(cliLogger(slog.LevelError)))
	resp, err := t.Ask(cmd.Context(), phrase, modality)
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Print(renderResponse(resp, !noSteps))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := cliLogger(slog.LevelInfo)
	t := tutor.New(tutor.WithLogger(logger))

	if serveMCP {
		return server.ServeMCP(t, version)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting http server", "addr", serveAddr)
	return server.Run(ctx, serveAddr, t, logger)
}

func runVocab(cmd *cobra.Command, args []string) {
	table := intent.DefaultTable()
	fmt.Println(styleTitle.Render(fmt.Sprintf("Verb table (version %d)", table.Version)))
	phrases := table.Phrases()
	ops := make([]string, 0, len(phrases))
	for op := range phrases {
		ops = append(ops, string(op))
	}
	sort.Strings(ops)
	for _, op := range ops {
		fmt.Printf("  %s %s\n",
			styleRule.Render(fmt.Sprintf("%-10s", op)),
			strings.Join(phrases[intent.Op(op)], ", "))
	}

	vocab := parser.DefaultVocabulary()
	fmt.Println()
	fmt.Println(styleTitle.Render(fmt.Sprintf("Spoken vocabulary (version %d)", vocab.Version)))
	printVocabSection("operators", vocab.Operators)
	printVocabSection("functions", vocab.Functions)
	printVocabSection("constants", vocab.Constants)
	printIntSection("numbers", vocab.Numbers)
	printIntSection("suffixes", vocab.Suffixes)
}

func printVocabSection(name string, entries map[string]string) {
	fmt.Printf("  %s\n", styleRule.Render(name))
	for _, phrase := range sortedKeys(entries) {
		fmt.Printf("    %-20s %s\n", phrase, styleMuted.Render(entries[phrase]))
	}
}

func printIntSection(name string, entries map[string]int64) {
	fmt.Printf("  %s\n", styleRule.Render(name))
	for _, phrase := range sortedKeys(entries) {
		fmt.Printf("    %-20s %s\n", phrase, styleMuted.Render(fmt.Sprintf("%d", entries[phrase])))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
