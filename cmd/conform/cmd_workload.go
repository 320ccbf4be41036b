package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mughalk/csc301-a2/config"
	"github.com/mughalk/csc301-a2/internal/harness"
	"github.com/mughalk/csc301-a2/internal/workload"
	"github.com/mughalk/csc301-a2/pkg/logger"
)

var workloadFlags struct {
	runtimeFlags

	baseURL    string
	configPath string
}

// conform workload — execute a plain-text workload script against the order
// service (which proxies user/product traffic onward). Routing policy:
// scripts contain deliberate rejections, so any HTTP answer is a pass.
var workloadCmd = &cobra.Command{
	Use:   "workload <script.txt>",
	Short: "Execute a workload script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := workloadFlags.baseURL
		if base == "" {
			cfg, err := config.Load(workloadFlags.configPath)
			if err != nil {
				return err
			}
			ep, err := cfg.Service(config.SectionOrder)
			if err != nil {
				return err
			}
			base = ep.Base()
			if !cmd.Flags().Changed("timeout") {
				workloadFlags.timeout = cfg.Timeout
			}
			if !cmd.Flags().Changed("pause") {
				workloadFlags.pause = cfg.Pause
			}
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open workload: %w", err)
		}
		defer f.Close()

		steps, warnings, err := workload.Parse(f)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			logger.Warn("workload line skipped", "detail", w.String())
		}

		rt, err := newRuntime(&workloadFlags.runtimeFlags)
		if err != nil {
			return err
		}

		h := harness.New(rt.engine, harness.Options{BaseURL: base})
		rt.observe(h)

		logger.Info("starting workload", "target", base, "steps", len(steps), "skipped_lines", len(warnings))

		agg := h.RunSteps(cmd.Context(), steps)
		return rt.finish("workload", base, agg)
	},
}

func init() {
	fl := workloadCmd.Flags()
	fl.StringVar(&workloadFlags.baseURL, "base-url", "", "order service base URL (overrides --config)")
	fl.StringVar(&workloadFlags.configPath, "config", "config.json", "deployment record")
	workloadFlags.attach(workloadCmd)
}
