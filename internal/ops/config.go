// Package ops loads and validates the session configuration.
package ops

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"lightning/internal/match"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Account  AccountConfig  `json:"account"`
	Contract ContractConfig `json:"contract"`
	Risk     RiskConfig     `json:"risk"`
	Source   SourceConfig   `json:"source"`
	Persist  PersistConfig  `json:"persist"`
	Recorder RecorderConfig `json:"recorder"`
	Codes    []string       `json:"codes"`
	Days     []uint32       `json:"days"`
}

// AccountConfig sets the account's starting state and fee schedule.
type AccountConfig struct {
	InitialCapital float64 `json:"initialCapital"`
	ServiceCharge  float64 `json:"serviceCharge"`
}

// ContractConfig describes the traded contract.
type ContractConfig struct {
	Multiplier uint32  `json:"multiplier"`
	MarginRate float64 `json:"marginRate"`
	SplitLots  bool    `json:"splitLots"`
}

// RiskConfig holds the submission-chain limits.
type RiskConfig struct {
	MaxPosition uint32 `json:"maxPosition"`
}

// SourceConfig selects the tick source.
type SourceConfig struct {
	// Type is "file" for JSONL replay.
	Type string `json:"type"`
	// Pattern locates replay files, with {code} and {day} substituted.
	Pattern string `json:"pattern"`
}

// PersistConfig locates the state region file. Empty disables it.
type PersistConfig struct {
	Path string `json:"path"`
}

// RecorderConfig holds the trade-recorder connection. Empty DSN
// disables recording.
type RecorderConfig struct {
	DSN string `json:"dsn"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Match       match.Config
	MaxPosition uint32
	Source      SourceConfig
	PersistPath string
	RecorderDSN string
	Codes       []string
	Days        []uint32
}

// Load reads a JSON config file and resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return Resolve(cfg)
}

// Resolve validates a FileConfig and builds the Loaded form.
func Resolve(cfg FileConfig) (Loaded, error) {
	if cfg.Account.InitialCapital <= 0 {
		return Loaded{}, fmt.Errorf("initial capital must be > 0")
	}
	if cfg.Account.ServiceCharge < 0 {
		return Loaded{}, fmt.Errorf("service charge must be >= 0")
	}
	if cfg.Contract.Multiplier == 0 {
		return Loaded{}, fmt.Errorf("contract multiplier must be > 0")
	}
	if cfg.Contract.MarginRate <= 0 || cfg.Contract.MarginRate > 1 {
		return Loaded{}, fmt.Errorf("margin rate must be in (0, 1]")
	}
	if err := validateSource(cfg.Source); err != nil {
		return Loaded{}, err
	}
	if len(cfg.Codes) == 0 {
		return Loaded{}, fmt.Errorf("no instrument codes configured")
	}
	if len(cfg.Days) == 0 {
		return Loaded{}, fmt.Errorf("no trading days configured")
	}
	return Loaded{
		Match: match.Config{
			InitialCapital: cfg.Account.InitialCapital,
			ServiceCharge:  cfg.Account.ServiceCharge,
			Multiplier:     cfg.Contract.Multiplier,
			MarginRate:     cfg.Contract.MarginRate,
			SplitLots:      cfg.Contract.SplitLots,
		},
		MaxPosition: cfg.Risk.MaxPosition,
		Source:      cfg.Source,
		PersistPath: cfg.Persist.Path,
		RecorderDSN: cfg.Recorder.DSN,
		Codes:       cfg.Codes,
		Days:        cfg.Days,
	}, nil
}

func validateSource(cfg SourceConfig) error {
	switch cfg.Type {
	case "file":
		if cfg.Pattern == "" {
			return fmt.Errorf("file source needs a pattern")
		}
	default:
		return fmt.Errorf("unknown source type: %q", cfg.Type)
	}
	return nil
}
