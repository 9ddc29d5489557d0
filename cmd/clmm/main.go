package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"clmm/lib/config"
	"clmm/lib/engine"
	"clmm/lib/scenario"
	"clmm/lib/store"
	"clmm/lib/token"
)

func main() {
	root := &cobra.Command{
		Use:          "clmm",
		Short:        "Concentrated liquidity exchange engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a scenario tape against the engine",
		RunE:  runReplay,
	}
	replayCmd.Flags().String("tape", "", "scenario tape JSON path")
	replayCmd.Flags().String("state-dir", "", "LevelDB state directory, empty for in-memory")
	replayCmd.Flags().StringSlice("governance", nil, "accounts holding the governance role (comma-separated)")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(replayCmd)

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "List pools in a state directory",
		RunE:  runPools,
	}
	poolsCmd.Flags().String("state-dir", "", "LevelDB state directory")
	root.AddCommand(poolsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Tape == "" {
		return fmt.Errorf("tape path is required")
	}

	st, err := openStore(cfg.StateDir)
	if err != nil {
		return err
	}
	defer st.Close()

	roles := engine.StaticRoles{}
	for _, account := range cfg.Governance {
		roles[account] = []string{engine.GovernanceRole}
	}

	ledger := token.NewLedger()
	eng := engine.New(st, ledger, roles, logger)

	records, err := scenario.Load(cfg.Tape)
	if err != nil {
		return err
	}

	logger.Info("replay start",
		zap.String("tape", cfg.Tape),
		zap.Int("records", len(records)),
		zap.String("state_dir", cfg.StateDir))

	if err := scenario.NewRunner(eng, ledger, logger).Run(records); err != nil {
		return err
	}

	ids, err := eng.Pools()
	if err != nil {
		return err
	}
	for _, id := range ids {
		p, err := eng.Pool(id)
		if err != nil {
			return err
		}
		logger.Info("pool state",
			zap.String("pool", id),
			zap.String("sqrtPriceX96", p.SqrtPriceX96.Dec()),
			zap.Int("tick", p.Tick),
			zap.String("liquidity", p.Liquidity.Dec()),
			zap.Int("positions", len(p.Positions)))
	}
	return nil
}

func runPools(cmd *cobra.Command, _ []string) error {
	stateDir, _ := cmd.Flags().GetString("state-dir")
	if stateDir == "" {
		return fmt.Errorf("state-dir is required")
	}
	st, err := store.OpenDiskStore(stateDir)
	if err != nil {
		return err
	}
	defer st.Close()

	ids, err := st.List()
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func openStore(stateDir string) (store.Store, error) {
	if stateDir == "" {
		return store.NewMemStore(), nil
	}
	return store.OpenDiskStore(stateDir)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
