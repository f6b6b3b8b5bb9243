// Package cli is the light-evm command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julio4/light-evm/api"
	"github.com/julio4/light-evm/bytecode"
	"github.com/julio4/light-evm/config"
	"github.com/julio4/light-evm/trace"
	"github.com/julio4/light-evm/vm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "0.0.1"

type options struct {
	configPath string
	logLevel   string

	bytecode string
	verbose  bool
	step     bool
	maxSteps uint64
	maxStack int

	addr string
}

type app struct {
	stdout io.Writer
	stderr io.Writer

	// workDir is searched for the default config file.
	workDir      string
	newConfirmer func(key string) (Confirmer, error)

	opts options
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	a := &app{
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		workDir: ".",
		newConfirmer: func(key string) (Confirmer, error) {
			return NewKeyConfirmer(key)
		},
	}
	return a.execute(os.Args[1:])
}

func (a *app) execute(args []string) int {
	// cobra reads os.Args when args is nil
	if args == nil {
		args = []string{}
	}
	root := a.rootCommand()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(a.stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "light-evm",
		Short:   "A minimal EVM interpreter",
		Version: Version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("bytecode") {
				return cmd.Help()
			}
			return a.run(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.opts.configPath, "config", "", "config file (default ./"+config.DefaultFile+" when present)")
	root.PersistentFlags().StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	a.runFlags(root)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute bytecode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd)
		},
	}
	a.runFlags(runCmd)
	runCmd.MarkFlagRequired("bytecode")

	disasmCmd := &cobra.Command{
		Use:   "disasm",
		Short: "Print the instructions of bytecode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.disasm()
		},
	}
	disasmCmd.Flags().StringVarP(&a.opts.bytecode, "bytecode", "b", "", "the bytecode to disassemble (hex)")
	disasmCmd.MarkFlagRequired("bytecode")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd)
		},
	}
	serveCmd.Flags().StringVar(&a.opts.addr, "addr", "", "listen address (default from config)")

	root.AddCommand(runCmd, disasmCmd, serveCmd)
	return root
}

func (a *app) runFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&a.opts.bytecode, "bytecode", "b", "", "the bytecode to be executed (hex)")
	f.BoolVarP(&a.opts.verbose, "verbose", "v", true, "trace each instruction")
	f.BoolVarP(&a.opts.step, "step", "s", true, "wait for the step key before each instruction")
	f.Uint64Var(&a.opts.maxSteps, "max-steps", 0, "stop after this many instructions, 0 for no limit")
	f.IntVar(&a.opts.maxStack, "max-stack", 0, "bound the operand stack depth, 0 for no limit")
}

// loadConfig reads the config file and applies the flags the user set.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(a.opts.configPath, a.workDir)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.Log.Level = a.opts.logLevel
	}
	if f.Changed("verbose") {
		cfg.VM.Trace = a.opts.verbose
	}
	if f.Changed("step") {
		cfg.VM.Step = a.opts.step
	}
	if f.Changed("max-steps") {
		cfg.VM.MaxSteps = a.opts.maxSteps
	}
	if f.Changed("max-stack") {
		cfg.VM.MaxStack = a.opts.maxStack
	}
	if f.Changed("addr") {
		cfg.API.ListenAddr = a.opts.addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) run(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	// bad input fails before anything executes
	code, err := bytecode.ParseHex(a.opts.bytecode)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	opts := []vm.VMOpt{
		vm.LoggerOpt(logger),
		vm.MaxStepsOpt(cfg.VM.MaxSteps),
		vm.MaxStackOpt(cfg.VM.MaxStack),
	}
	if cfg.VM.Trace {
		opts = append(opts, vm.TraceOpt(trace.NewText(a.stdout)))
	}
	if cfg.VM.Step {
		c, err := a.newConfirmer(cfg.VM.StepKey)
		if err != nil {
			return err
		}
		defer c.Close()
		opts = append(opts, vm.StepOpt(c))
		fmt.Fprintf(a.stdout, "Press '%s' to proceed to the next step.\n", cfg.VM.StepKey)
	}

	machine := vm.NewVM(code, opts...)
	logger.Debug("run",
		zap.String("bytecode", bytecode.ToHex(code)),
		zap.Bool("trace", machine.Tracing()),
		zap.Bool("step", machine.Stepping()),
	)
	if err := machine.Run(); err != nil {
		var execErr *vm.ExecError
		if errors.As(err, &execErr) {
			logger.Debug("fault state",
				zap.Int("pc", execErr.State().PC),
				zap.Uint32s("stack", execErr.State().Stack),
			)
		}
		return err
	}

	fmt.Fprintln(a.stdout, "Execution completed successfully")
	return nil
}

func (a *app) disasm() error {
	code, err := bytecode.ParseHex(a.opts.bytecode)
	if err != nil {
		return err
	}
	lines, err := vm.Disassemble(code)
	io.WriteString(a.stdout, vm.Format(lines))
	return err
}

func (a *app) serve(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	s, err := api.NewServer(api.ServerConfig{
		ListenerAddr: cfg.API.ListenAddr,
		Logger:       logger,
		MaxSteps:     cfg.API.MaxSteps,
		MaxStack:     cfg.API.MaxStack,
	})
	if err != nil {
		return err
	}
	return s.Start()
}
