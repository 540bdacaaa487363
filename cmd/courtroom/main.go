package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/openverdict/courtroom/internal/auditlog"
	"github.com/openverdict/courtroom/internal/config"
	"github.com/openverdict/courtroom/internal/debate"
	"github.com/openverdict/courtroom/internal/ingest"
	"github.com/openverdict/courtroom/internal/llm"
	"github.com/openverdict/courtroom/internal/retrieval"
	"github.com/openverdict/courtroom/internal/store"
	"github.com/openverdict/courtroom/internal/verdict"
)

var (
	cfgPath string
	cfg     config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// #region root

var rootCmd = &cobra.Command{
	Use:   "courtroom",
	Short: "Adversarial deliberation engine",
	Long: `courtroom runs structured adversarial proceedings: evidence retrieval
over an embedded knowledge base, a fixed-round prosecutor/defense debate,
and a deterministic rubric-based verdict.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "courtroom.yaml", "config file path")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(retrieveCmd)
	rootCmd.AddCommand(hearCmd)
	rootCmd.AddCommand(inspectCmd)
}

func openStore() (*store.Store, error) {
	return store.NewStore(cfg.DBPath)
}

func newLLMClient() *llm.Client {
	return llm.NewClient(cfg.API.BaseURL, cfg.APIKey(), cfg.API.ChatModel, cfg.API.EmbedModel)
}

// #endregion

// #region ingest

var kbDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Chunk, embed and store a knowledge-base directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ing := ingest.NewIngestor(st, newLLMClient(), cfg.Retrieval.MaxWords)
		n, err := ing.IngestDir(context.Background(), kbDir)
		if err != nil {
			return err
		}
		fmt.Printf("stored %d new fragments\n", n)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&kbDir, "kb", "data/kb", "directory of .txt knowledge files")
}

// #endregion

// #region retrieve

var topK int

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Rank stored fragments against a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		r := retrieval.NewRetriever(st, newLLMClient(), retrieval.DefaultConfig())
		items, err := r.Retrieve(context.Background(), args[0], topK)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("no evidence found")
			return nil
		}
		for i, item := range items {
			fmt.Printf("%2d. [%.4f] %s — %s\n", i+1, item.Score, item.Source, item.Text)
		}
		return nil
	},
}

func init() {
	retrieveCmd.Flags().IntVar(&topK, "top-k", 5, "max evidence items")
}

// #endregion

// #region hear

var (
	hearOffence string
	hearCaseID  string
	hearRounds  int
	hearQuery   string
)

var hearCmd = &cobra.Command{
	Use:   "hear [case facts]",
	Short: "Run a full debate and print the judgement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseFacts := args[0]

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		client := newLLMClient()
		audit := auditlog.NewLogger(st.DB())

		policy := verdict.DefaultPolicy()
		if cfg.PolicyPath != "" {
			policy, err = verdict.LoadPolicy(cfg.PolicyPath)
			if err != nil {
				return err
			}
		}
		engine := verdict.NewEngine(policy, client, audit)

		rounds := hearRounds
		if rounds < 1 {
			rounds = cfg.Debate.Rounds
		}
		o := debate.NewOrchestrator(client, engine, audit, debate.Config{
			LedgerCapacity: cfg.Debate.LedgerCapacity,
		})

		// Ground the debate in retrieved evidence before it starts.
		query := hearQuery
		if query == "" {
			query = caseFacts
		}
		r := retrieval.NewRetriever(st, client, retrieval.DefaultConfig())
		items, err := r.Retrieve(context.Background(), query, cfg.Retrieval.TopK)
		if err != nil {
			return fmt.Errorf("retrieve evidence: %w", err)
		}
		for _, item := range items {
			if err := o.SubmitEvidence(item); err != nil {
				return err
			}
		}

		j, err := o.Run(context.Background(), caseFacts, hearOffence, hearCaseID, rounds)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(j, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal judgement: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	hearCmd.Flags().StringVar(&hearOffence, "offence", "", "offence under consideration")
	hearCmd.Flags().StringVar(&hearCaseID, "case-id", "", "case identifier")
	hearCmd.Flags().IntVar(&hearRounds, "rounds", 0, "debate rounds (default from config)")
	hearCmd.Flags().StringVar(&hearQuery, "query", "", "evidence retrieval query (default: case facts)")
	hearCmd.MarkFlagRequired("case-id")
}

// #endregion

// #region inspect

var inspectLast int

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show recent judgements",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		audit := auditlog.NewLogger(st.DB())
		recs, err := audit.RecentJudgements(inspectLast)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("no judgements recorded")
			return nil
		}
		for _, rec := range recs {
			fmt.Printf("%s  %-28s confidence=%.2f  final=%.2f  (%s)\n",
				rec.DebateID, rec.Verdict, rec.Confidence,
				rec.Scores["final_score"], rec.Timestamp.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectLast, "last", 20, "show N most recent judgements")
}

// #endregion
