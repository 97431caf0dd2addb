package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pipegen/internal/affinity"
	"pipegen/internal/banner"
	"pipegen/internal/cli"
	"pipegen/internal/fifo"
	"pipegen/internal/logging"
	"pipegen/internal/runner"
)

const (
	maxSeconds = uint64(math.MaxInt64 / int64(time.Second))
	maxMicros  = uint64(math.MaxInt64 / int64(time.Microsecond))
)

func Execute() {
	if err := newRootCmd(viper.New(), affinity.Binder{}).Execute(); err != nil {
		var runErr *cli.Error
		if errors.As(err, &runErr) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper, pinner affinity.Pinner) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "pipegen --name <fifo>",
		Short: "pipegen - synthetic FIFO writer",
		Long: `
pipegen opens (or creates) a named pipe and writes a fixed payload to it
at a fixed interval for a bounded duration. Use it to exercise FIFO
readers: backpressure, throughput limits and latency.

Opening the pipe blocks until a reader attaches.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cmd, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(v)
			if err != nil {
				return err
			}
			// config is valid; anything from here on is a runtime error
			cmd.SilenceUsage = true

			log, err := logging.New(cmd.OutOrStdout(), v.GetString("log-level"))
			if err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}

			_, err = cli.Start(cmd.Context(), cfg, cli.Deps{
				Pinner: pinner,
				Acquire: func(path string) (io.WriteCloser, error) {
					f, err := fifo.Acquire(path, log)
					if err != nil {
						return nil, err
					}
					return f, nil
				},
				Out: cmd.OutOrStdout(),
				Log: log,
			})
			return err
		},
	}

	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		fmt.Fprintln(c.OutOrStdout(), banner.GetString())
		c.Usage()
	})

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file with flag defaults (yaml, toml or json)")

	f := cmd.Flags()
	f.StringP("name", "n", "", "Path of the FIFO to write to (required)")
	f.Uint64P("duration", "t", 10, "Run time in seconds")
	f.Uint64P("count", "c", 1, "Bytes written per iteration")
	f.Uint64P("delay", "d", 1000, "Delay between writes in microseconds")
	f.Uint8P("byte-value", "b", 0, "Value of every payload byte (0-255)")
	f.Uint("core", 0, "CPU core to pin the process to (default: no pinning)")
	f.BoolP("progress", "p", false, "Print a progress line while running")
	f.StringP("out", "o", "", "Output filename prefix for run reports")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")

	return cmd
}

// initConfig binds the flags and, only when --config is given, loads
// defaults from that file. Command-line flags take precedence.
func initConfig(v *viper.Viper, cmd *cobra.Command, cfgFile string) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if cfgFile == "" {
		return nil
	}

	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", cfgFile, err)
	}
	return nil
}

func buildConfig(v *viper.Viper) (runner.Config, error) {
	var cfg runner.Config

	cfg.Name = v.GetString("name")
	if cfg.Name == "" {
		return cfg, errors.New(`required flag(s) "name" not set`)
	}

	duration, err := uintSetting(v, "duration", maxSeconds)
	if err != nil {
		return cfg, err
	}
	count, err := uintSetting(v, "count", math.MaxInt)
	if err != nil {
		return cfg, err
	}
	delay, err := uintSetting(v, "delay", maxMicros)
	if err != nil {
		return cfg, err
	}
	byteValue, err := uintSetting(v, "byte-value", math.MaxUint8)
	if err != nil {
		return cfg, err
	}

	cfg.Duration = time.Duration(duration) * time.Second
	cfg.Count = int(count)
	cfg.Delay = time.Duration(delay) * time.Microsecond
	cfg.ByteValue = byte(byteValue)

	if v.IsSet("core") {
		core, err := uintSetting(v, "core", math.MaxInt32)
		if err != nil {
			return cfg, err
		}
		c := int(core)
		cfg.Core = &c
	}

	cfg.Progress = v.GetBool("progress")
	cfg.OutPrefix = v.GetString("out")
	return cfg, nil
}

func uintSetting(v *viper.Viper, key string, max uint64) (uint64, error) {
	n, err := cast.ToUint64E(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("invalid --%s: %w", key, err)
	}
	if n > max {
		return 0, fmt.Errorf("invalid --%s: %d is out of range (max %d)", key, n, max)
	}
	return n, nil
}
