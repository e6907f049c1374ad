package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/benz9527/xtree/bench"
	"github.com/benz9527/xtree/console"
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/lib/workload"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

type LogConfig struct {
	Level   string               `yaml:"level"`
	Encoder string               `yaml:"encoder"`
	File    *xlog.FileCoreConfig `yaml:"file,omitempty"`
}

type ReplConfig struct {
	Engine  string `yaml:"engine"`
	KeyType string `yaml:"keyType"`
}

type BenchConfig struct {
	Engines   []string `yaml:"engines"`
	Workloads []string `yaml:"workloads"`
	Sizes     []int    `yaml:"sizes"`
	Workers   int      `yaml:"workers"`
	Validate  bool     `yaml:"validate"`
	Exporter  string   `yaml:"exporter"`
}

type Config struct {
	Log   LogConfig   `yaml:"log"`
	Repl  ReplConfig  `yaml:"repl"`
	Bench BenchConfig `yaml:"bench"`
}

func defaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:   xlog.LogLevelInfo.String(),
			Encoder: "plaintext",
		},
		Repl: ReplConfig{
			Engine:  string(tree.EngineRB),
			KeyType: string(console.KeyInt),
		},
		Bench: BenchConfig{
			Sizes:    append([]int(nil), bench.DefaultSizes...),
			Validate: true,
			Exporter: string(observability.ExporterNone),
		},
	}
}

// LoadConfig overlays the yaml file at path on the defaults. An empty
// path keeps the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "read config "+path)
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "parse config "+path)
	}
	return cfg, nil
}

func (cfg *LogConfig) newLogger(w io.Writer) (xlog.XLogger, error) {
	enc, err := xlog.ParseLogEncoder(cfg.Encoder)
	if err != nil {
		return nil, err
	}
	opts := []xlog.XLoggerOption{
		xlog.WithXLoggerWriter(w),
		xlog.WithXLoggerEncoder(enc),
	}
	if strings.TrimSpace(cfg.Level) != "" {
		opts = append(opts, xlog.WithXLoggerLevel(xlog.ParseLogLevel(cfg.Level)))
	}
	if cfg.File != nil && cfg.File.Filename != "" {
		opts = append(opts, xlog.WithXLoggerFileWriter(cfg.File))
	}
	return xlog.NewXLogger(opts...)
}

func (cfg *ReplConfig) parse() (tree.Engine, console.KeyType, error) {
	engine, err := tree.ParseEngine(cfg.Engine)
	if err != nil {
		return "", "", err
	}
	keyType, err := console.ParseKeyType(cfg.KeyType)
	if err != nil {
		return "", "", err
	}
	return engine, keyType, nil
}

func (cfg *BenchConfig) runnerConfig() (bench.Config, error) {
	rc := bench.Config{
		Sizes:    cfg.Sizes,
		Workers:  cfg.Workers,
		Validate: cfg.Validate,
	}
	for _, name := range cfg.Engines {
		e, err := tree.ParseEngine(name)
		if err != nil {
			return rc, err
		}
		rc.Engines = append(rc.Engines, e)
	}
	for _, name := range cfg.Workloads {
		k, err := workload.ParseKind(name)
		if err != nil {
			return rc, err
		}
		rc.Workloads = append(rc.Workloads, k)
	}
	return rc, nil
}

func splitLogFile(path string) (dir, name string) {
	return filepath.Dir(path), filepath.Base(path)
}
