package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mughalk/csc301-a2/internal/audit"
	"github.com/mughalk/csc301-a2/internal/engine"
	"github.com/mughalk/csc301-a2/internal/harness"
	"github.com/mughalk/csc301-a2/internal/history"
	"github.com/mughalk/csc301-a2/internal/verdict"
	"github.com/mughalk/csc301-a2/pkg/logger"
	"github.com/mughalk/csc301-a2/pkg/metrics"
	"github.com/mughalk/csc301-a2/pkg/storage"
	"github.com/mughalk/csc301-a2/pkg/token"
)

// runtimeFlags is the plumbing shared by every suite-executing subcommand:
// pacing, auth, report storage, run history, audit trail and metrics.
type runtimeFlags struct {
	timeout time.Duration
	pause   time.Duration

	authSecret string

	reportDriver   string
	reportRoot     string
	reportBucket   string
	reportRegion   string
	reportKey      string
	reportSecret   string
	reportEndpoint string

	historyDriver string
	historyDSN    string

	auditURI        string
	auditDB         string
	auditCollection string

	metricsAddr string
}

func (f *runtimeFlags) attach(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.DurationVar(&f.timeout, "timeout", 3*time.Second, "per-request timeout")
	fl.DurationVar(&f.pause, "pause", 0, "pause after each request")
	fl.StringVar(&f.authSecret, "auth-secret", "", "HS256 secret; mints a bearer token for the run")

	fl.StringVar(&f.reportDriver, "report-driver", "local", "report store: local or s3")
	fl.StringVar(&f.reportRoot, "report-root", "reports", "root directory for the local report store")
	fl.StringVar(&f.reportBucket, "report-bucket", "", "s3 bucket for reports")
	fl.StringVar(&f.reportRegion, "report-region", "", "s3 region")
	fl.StringVar(&f.reportKey, "report-key", "", "s3 access key")
	fl.StringVar(&f.reportSecret, "report-secret", "", "s3 secret key")
	fl.StringVar(&f.reportEndpoint, "report-endpoint", "", "s3-compatible endpoint (MinIO etc.)")

	fl.StringVar(&f.historyDriver, "history-driver", "", "run-history database: sqlite, postgres, mysql or sqlserver (empty disables)")
	fl.StringVar(&f.historyDSN, "history-dsn", "", "run-history DSN")

	fl.StringVar(&f.auditURI, "audit-uri", "", "MongoDB URI for the verdict audit trail (empty disables)")
	fl.StringVar(&f.auditDB, "audit-db", "conform", "MongoDB database for the audit trail")
	fl.StringVar(&f.auditCollection, "audit-collection", "verdicts", "MongoDB collection for the audit trail")

	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "listen address for /metrics (empty disables)")
}

// runtime is the assembled run context.
type runtime struct {
	runID   string
	started time.Time
	engine  *engine.Engine
	flags   *runtimeFlags
	trail   *audit.Trail
}

// newRuntime builds the engine and optional sinks from the flags.
func newRuntime(f *runtimeFlags) (*runtime, error) {
	rt := &runtime{
		runID:   time.Now().Format("20060102-150405"),
		started: time.Now(),
		engine:  engine.New(f.timeout, f.pause),
		flags:   f,
	}

	if f.authSecret != "" {
		signed, err := token.Mint(rt.runID, f.authSecret)
		if err != nil {
			return nil, err
		}
		rt.engine.WithBearer(signed)
	}

	if f.auditURI != "" {
		trail, err := audit.Open(f.auditURI, f.auditDB, f.auditCollection, rt.runID)
		if err != nil {
			return nil, err
		}
		rt.trail = trail
	}

	if f.metricsAddr != "" {
		go func() {
			if err := metrics.Serve(f.metricsAddr); err != nil {
				logger.Warn("metrics listener stopped", "err", err)
			}
		}()
	}

	return rt, nil
}

// observe wires the optional audit trail into a harness.
func (rt *runtime) observe(h *harness.Harness) {
	if rt.trail != nil {
		h.Observe(rt.trail)
	}
}

// finish writes the report, records history, flushes the audit trail and
// turns any failure into a non-zero exit.
func (rt *runtime) finish(service, target string, agg *verdict.Aggregator) error {
	if rt.trail != nil {
		defer rt.trail.Close()
	}

	verdicts := agg.Verdicts()

	disk, err := storage.Open(storage.Options{
		Driver:   rt.flags.reportDriver,
		Root:     rt.flags.reportRoot,
		Bucket:   rt.flags.reportBucket,
		Region:   rt.flags.reportRegion,
		Key:      rt.flags.reportKey,
		Secret:   rt.flags.reportSecret,
		Endpoint: rt.flags.reportEndpoint,
	})
	if err != nil {
		return err
	}
	if err := verdict.WriteReport(disk, rt.runID+"/results.txt", verdicts); err != nil {
		return err
	}

	if rt.flags.historyDriver != "" {
		store, err := history.Open(rt.flags.historyDriver, rt.flags.historyDSN)
		if err != nil {
			return err
		}
		err = store.SaveRun(history.Run{
			RunID:      rt.runID,
			Service:    service,
			Target:     target,
			StartedAt:  rt.started,
			FinishedAt: time.Now(),
		}, verdicts)
		if err != nil {
			return err
		}
	}

	pass, fail, skipped := agg.Counts()
	logger.Info("run complete", "run", rt.runID, "pass", pass, "fail", fail, "skipped", skipped)
	if fail > 0 {
		return fmt.Errorf("%d of %d cases failed", fail, len(verdicts))
	}
	return nil
}
