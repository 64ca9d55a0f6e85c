package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() FileConfig {
	return FileConfig{
		Account:  AccountConfig{InitialCapital: 1000000, ServiceCharge: 1.5},
		Contract: ContractConfig{Multiplier: 10, MarginRate: 0.1, SplitLots: true},
		Risk:     RiskConfig{MaxPosition: 20},
		Source:   SourceConfig{Type: "file", Pattern: "ticks/{code}-{day}.jsonl"},
		Codes:    []string{"SHFE.rb2301"},
		Days:     []uint32{20220901, 20220902},
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"account":  {"initialCapital": 1000000, "serviceCharge": 1.5},
		"contract": {"multiplier": 10, "marginRate": 0.1, "splitLots": true},
		"risk":     {"maxPosition": 20},
		"source":   {"type": "file", "pattern": "ticks/{code}-{day}.jsonl"},
		"persist":  {"path": "/var/lib/lightning/state.region"},
		"recorder": {"dsn": "postgres://localhost/lightning"},
		"codes":    ["SHFE.rb2301"],
		"days":     [20220901, 20220902]
	}`), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1000000.0, loaded.Match.InitialCapital)
	assert.Equal(t, uint32(10), loaded.Match.Multiplier)
	assert.True(t, loaded.Match.SplitLots)
	assert.Equal(t, uint32(20), loaded.MaxPosition)
	assert.Equal(t, "/var/lib/lightning/state.region", loaded.PersistPath)
	assert.Equal(t, "postgres://localhost/lightning", loaded.RecorderDSN)
	assert.Equal(t, []uint32{20220901, 20220902}, loaded.Days)
}

func TestResolveRejectsInvalidConfig(t *testing.T) {
	for name, mutate := range map[string]func(*FileConfig){
		"zero capital":       func(c *FileConfig) { c.Account.InitialCapital = 0 },
		"negative charge":    func(c *FileConfig) { c.Account.ServiceCharge = -1 },
		"zero multiplier":    func(c *FileConfig) { c.Contract.Multiplier = 0 },
		"margin rate above 1": func(c *FileConfig) { c.Contract.MarginRate = 1.5 },
		"unknown source":     func(c *FileConfig) { c.Source.Type = "csv" },
		"missing pattern":    func(c *FileConfig) { c.Source.Pattern = "" },
		"no codes":           func(c *FileConfig) { c.Codes = nil },
		"no days":            func(c *FileConfig) { c.Days = nil },
	} {
		cfg := validConfig()
		mutate(&cfg)
		_, err := Resolve(cfg)
		assert.Error(t, err, name)
	}
}
