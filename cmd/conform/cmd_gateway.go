package main

import (
	"github.com/spf13/cobra"

	"github.com/mughalk/csc301-a2/config"
	"github.com/mughalk/csc301-a2/internal/fixture"
	"github.com/mughalk/csc301-a2/internal/harness"
	"github.com/mughalk/csc301-a2/pkg/logger"
)

var gatewayFlags struct {
	runtimeFlags

	baseURL    string
	configPath string
	testcases  []string
}

// conform gateway — replay suites through the gateway under the routing
// policy. Each case targets the service its name starts with; any HTTP
// answer proves the route, only a transport failure fails it.
var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Verify gateway routing with one or more suites",
	RunE: func(cmd *cobra.Command, args []string) error {
		base := gatewayFlags.baseURL
		if base == "" {
			cfg, err := config.Load(gatewayFlags.configPath)
			if err != nil {
				return err
			}
			ep, err := cfg.Service(config.SectionGateway)
			if err != nil {
				return err
			}
			base = ep.Base()
			if !cmd.Flags().Changed("timeout") {
				gatewayFlags.timeout = cfg.Timeout
			}
			if !cmd.Flags().Changed("pause") {
				gatewayFlags.pause = cfg.Pause
			}
		}

		// Suites are concatenated in flag order; within a file, fixture
		// order holds as always.
		var cases fixture.Cases
		for _, path := range gatewayFlags.testcases {
			part, err := fixture.LoadCases(path)
			if err != nil {
				return err
			}
			cases = append(cases, part...)
		}

		rt, err := newRuntime(&gatewayFlags.runtimeFlags)
		if err != nil {
			return err
		}

		h := harness.New(rt.engine, harness.Options{
			BaseURL: base,
			Policy:  harness.Routing,
		})
		rt.observe(h)

		logger.Info("starting gateway run", "target", base, "cases", len(cases))

		agg := h.Run(cmd.Context(), cases, fixture.NewExpected(nil))
		return rt.finish("gateway", base, agg)
	},
}

func init() {
	fl := gatewayCmd.Flags()
	fl.StringVar(&gatewayFlags.baseURL, "base-url", "", "gateway base URL (overrides --config)")
	fl.StringVar(&gatewayFlags.configPath, "config", "config.json", "deployment record")
	fl.StringSliceVar(&gatewayFlags.testcases, "testcases", nil, "test-case fixture file (repeatable)")
	gatewayFlags.attach(gatewayCmd)

	_ = gatewayCmd.MarkFlagRequired("testcases")
}
