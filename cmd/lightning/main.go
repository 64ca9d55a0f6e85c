package main

import (
	"flag"
	"log"
	"strconv"
	"strings"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"lightning/internal/event"
	"lightning/internal/feed"
	"lightning/internal/ledger"
	"lightning/internal/match"
	"lightning/internal/ops"
	"lightning/internal/persist"
	"lightning/internal/recorder"
	"lightning/internal/runtime"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	daysFlag := flag.String("days", "", "Comma-separated trading days, overrides config")
	queueSize := flag.Int("queue-size", 4096, "Engine event queue capacity")
	profileAddr := flag.String("profile-addr", "", "Pyroscope server address (empty=disabled)")
	flag.Parse()

	cfg, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	days := cfg.Days
	if *daysFlag != "" {
		if days, err = parseDays(*daysFlag); err != nil {
			log.Fatalf("parse days failed: %v", err)
		}
	}

	if *profileAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "lightning",
			ServerAddress:   *profileAddr,
			Logger:          emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer profiler.Stop()
	}

	var opts runtime.Options
	opts.MaxPosition = cfg.MaxPosition
	if cfg.PersistPath != "" {
		region, err := persist.Open(cfg.PersistPath)
		if err != nil {
			log.Fatalf("open state region failed: %v", err)
		}
		opts.Region = region
	}
	if cfg.RecorderDSN != "" {
		client, err := recorder.New(recorder.Option{ConnString: cfg.RecorderDSN})
		if err != nil {
			log.Fatalf("connect recorder failed: %v", err)
		}
		defer client.Close()
		opts.Recorder = client
	}

	events := event.NewQueue(*queueSize)
	sim := match.NewSimulator(cfg.Match, feed.NewFileLoader(cfg.Source.Pattern), events)
	ctx := runtime.New(sim, events, evaluationCallbacks(), opts)
	ctx.Subscribe(cfg.Codes...)

	if err := ctx.Load(); err != nil {
		log.Fatalf("load session failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- ctx.RunDays(days)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Fatalf("evaluation failed: %v", err)
		}
		acct := ctx.Account()
		logs.Infof("evaluation finished, cash %.2f frozen %.2f", acct.Cash, acct.FrozenMargin)
	case <-sys.Shutdown():
		logs.Info("shutdown signal, stopping session")
		if err := ctx.Stop(); err != nil {
			logs.Errorf("stop session, err: %v", err)
		}
	}
}

// evaluationCallbacks logs the session's order flow. Strategies link
// against the runtime package directly and supply their own.
func evaluationCallbacks() runtime.Callbacks {
	return runtime.Callbacks{
		OnReady: func() {
			logs.Info("session ready")
		},
		OnTrade: func(o ledger.Order) {
			logs.Infof("trade %d %s %d@%.2f", o.ID, o.Code, o.Total, o.Price)
		},
		OnCancel: func(o ledger.Order) {
			logs.Infof("cancel %d %s leaves %d", o.ID, o.Code, o.Leaves)
		},
		OnError: func(code event.ErrorCode, id ledger.OrderID) {
			logs.Errorf("engine error %d, order %d", code, id)
		},
	}
}

func parseDays(s string) ([]uint32, error) {
	parts := strings.Split(s, ",")
	days := make([]uint32, 0, len(parts))
	for _, p := range parts {
		day, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, err
		}
		days = append(days, uint32(day))
	}
	return days, nil
}

type emptyLogger struct{}

func (emptyLogger) Infof(string, ...interface{})  {}
func (emptyLogger) Debugf(string, ...interface{}) {}
func (emptyLogger) Errorf(string, ...interface{}) {}
