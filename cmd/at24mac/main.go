// Command at24mac reads and writes AT24MAC402/602 EEPROMs on a Linux I2C bus.
//
// Usage:
//
//	at24mac [flags] <command> [args]
//
// Run with -h for the flags and commands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/moffa90/go-at24mac/at24mac"
	"github.com/moffa90/go-at24mac/i2cdev"
	"github.com/moffa90/go-at24mac/protocol"
	"github.com/moffa90/go-at24mac/sim"
)

// errCommandFailed is returned once the logger has reported a command error.
var errCommandFailed = errors.New("command failed")

// cliFlags holds the parsed command line.
type cliFlags struct {
	ConfigPath string
	Bus        string
	Pins       uint
	Model      string
	Simulate   bool
	Debug      bool
	Args       []string

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	f := &cliFlags{set: make(map[string]bool)}

	fs := flag.NewFlagSet("at24mac", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.ConfigPath, "config", "", "Path to YAML configuration file")
	fs.StringVar(&f.Bus, "bus", "", "I2C device node (default /dev/i2c-1)")
	fs.UintVar(&f.Pins, "pins", 0, "A2..A0 address pin strapping, 0-7 (default 4)")
	fs.StringVar(&f.Model, "model", "", "Chip model: 402 or 602 (default 402)")
	fs.BoolVar(&f.Simulate, "simulate", false, "Use a simulated chip instead of the bus")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: at24mac [flags] <command> [args]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\n%s", usageCommands)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	f.Args = fs.Args()
	if len(f.Args) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("missing command")
	}
	return f, nil
}

// apply overrides cfg with the flags given on the command line.
func (f *cliFlags) apply(cfg *Config) {
	if f.set["bus"] {
		cfg.Bus = f.Bus
	}
	if f.set["pins"] {
		if f.Pins > 0xFF {
			f.Pins = 0xFF
		}
		cfg.AddressPins = uint8(f.Pins)
	}
	if f.set["model"] {
		cfg.Model = f.Model
	}
	if f.Debug {
		cfg.Log.Level = "debug"
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) && !errors.Is(err, errCommandFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flags, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	flags.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	bus, closeBus := openBus(cfg, flags.Simulate, sugar)
	defer closeBus()

	opts := append(cfg.deviceOptions(),
		at24mac.WithLogger(zapLogger{s: sugar.Named("at24mac")}),
		at24mac.WithProgressCallback(func(p at24mac.Progress) {
			sugar.Debugw("page", "chunk", p.Chunk, "of", p.TotalChunks, "offset", p.Offset, "skipped", p.Skipped)
		}),
	)
	dev, err := at24mac.New(bus, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{dev: dev, out: stdout, log: sugar}

	if flags.Args[0] == "shell" {
		sh, err := newShell(a)
		if err != nil {
			return err
		}
		sh.Run(ctx)
		return nil
	}

	if err := a.run(ctx, flags.Args); err != nil {
		sugar.Errorw("command failed", "command", flags.Args[0], "error", err)
		return errCommandFailed
	}
	return nil
}

// openBus returns the I2C bus, or a simulated chip when simulate is set.
func openBus(cfg Config, simulate bool, log *zap.SugaredLogger) (at24mac.Bus, func()) {
	if simulate {
		model, _ := protocol.ParseModel(cfg.Model)
		log.Infow("using simulated chip", "model", model.String(), "pins", cfg.AddressPins)
		return sim.New(sim.WithModel(model), sim.WithAddressPins(cfg.AddressPins)), func() {}
	}

	bus := i2cdev.Open(cfg.Bus)
	return bus, func() {
		if err := bus.Close(); err != nil {
			log.Errorw("closing bus", "error", err)
		}
	}
}
