package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/console"
	xruntime "github.com/benz9527/xtree/lib/runtime"
	"github.com/benz9527/xtree/xlog"
)

var version = "v0.1.0"

// flagValues are copied over the loaded config only when set.
type flagValues struct {
	configPath string
	logLevel   string
	logEncoder string
	logFile    string

	engine  string
	keyType string

	engines   []string
	workloads []string
	sizes     []int
	workers   int
	validate  bool
	exporter  string
}

type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	flags  flagValues
	cfg    *Config
	logger xlog.XLogger
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.flags.configPath)
	if err != nil {
		return err
	}
	a.applyFlags(cmd, cfg)
	a.cfg = cfg
	if a.logger, err = cfg.Log.newLogger(a.errOut); err != nil {
		return err
	}
	env := xruntime.DetectEnv()
	a.logger.Debug("host env",
		zap.Bool("docker", env.Docker),
		zap.Bool("kubernetes", env.Kubernetes),
		zap.String("containerID", env.ContainerID),
	)
	if _, err = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		a.logger.Logf(zapcore.DebugLevel, format, args...)
	})); err != nil {
		return multierr.Append(err, a.teardown())
	}
	return nil
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *Config) {
	changed := cmd.Flags().Changed
	if changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if changed("log-encoder") {
		cfg.Log.Encoder = a.flags.logEncoder
	}
	if changed("log-file") {
		cfg.Log.File = &xlog.FileCoreConfig{}
		cfg.Log.File.FilePath, cfg.Log.File.Filename = splitLogFile(a.flags.logFile)
	}
	if changed("engine") {
		cfg.Repl.Engine = a.flags.engine
	}
	if changed("key-type") {
		cfg.Repl.KeyType = a.flags.keyType
	}
	if changed("engines") {
		cfg.Bench.Engines = a.flags.engines
	}
	if changed("workloads") {
		cfg.Bench.Workloads = a.flags.workloads
	}
	if changed("sizes") {
		cfg.Bench.Sizes = a.flags.sizes
	}
	if changed("workers") {
		cfg.Bench.Workers = a.flags.workers
	}
	if changed("validate") {
		cfg.Bench.Validate = a.flags.validate
	}
	if changed("exporter") {
		cfg.Bench.Exporter = a.flags.exporter
	}
}

func (a *app) teardown() error {
	if a.logger == nil {
		return nil
	}
	err := a.logger.Close()
	a.logger = nil
	return err
}

// runE closes the logger once fn returns. cobra skips
// PersistentPostRunE when RunE fails.
func (a *app) runE(fn func(cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) (err error) {
		defer func() {
			err = multierr.Append(err, a.teardown())
		}()
		if err = fn(cmd); err != nil {
			a.logger.ErrorStack(err, "command failed", zap.String("cmd", cmd.Name()))
		}
		return err
	}
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	return (&app{in: in, out: out, errOut: errOut}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {

	cmdRepl := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive balanced tree session",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command) error {
			engine, keyType, err := a.cfg.Repl.parse()
			if err != nil {
				return err
			}
			a.logger.Debug("repl started")
			return console.Run(cmd.Context(), engine, keyType, a.in, a.out)
		}),
	}
	cmdRepl.Flags().StringVar(&a.flags.engine, "engine", "rb", "tree engine, avl or rb")
	cmdRepl.Flags().StringVar(&a.flags.keyType, "key-type", "int", "key type, int or float")

	cmdBench := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the tree engines over synthetic workloads",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command) error {
			return runBench(cmd.Context(), a.cfg, a.logger, a.out)
		}),
	}
	cmdBench.Flags().StringSliceVar(&a.flags.engines, "engines", nil, "engines to run, all when empty")
	cmdBench.Flags().StringSliceVar(&a.flags.workloads, "workloads", nil, "workloads to run, all when empty")
	cmdBench.Flags().IntSliceVar(&a.flags.sizes, "sizes", nil, "tree sizes")
	cmdBench.Flags().IntVar(&a.flags.workers, "workers", 0, "concurrent scenarios, GOMAXPROCS when 0")
	cmdBench.Flags().BoolVar(&a.flags.validate, "validate", true, "validate the trees after the delete phase")
	cmdBench.Flags().StringVar(&a.flags.exporter, "exporter", "none", "metrics exporter, none, stdout or prometheus")

	cmdVersion := &cobra.Command{
		Use:   "version",
		Short: "Print xtree version",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command) error {
			_, err := fmt.Fprintln(a.out, version)
			return err
		}),
	}

	rootCmd := &cobra.Command{
		Use:           "xtree",
		Short:         "AVL and red-black tree playground",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.flags.configPath, "config", "", "yaml config file")
	rootCmd.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "info", "log level, debug info warn or error")
	rootCmd.PersistentFlags().StringVar(&a.flags.logEncoder, "log-encoder", "plaintext", "log encoder, json or plaintext")
	rootCmd.PersistentFlags().StringVar(&a.flags.logFile, "log-file", "", "also append logs to this file")
	rootCmd.SetIn(a.in)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)
	rootCmd.AddCommand(cmdRepl, cmdBench, cmdVersion)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		stop()
		os.Exit(1)
	}
}
