// cmd/isrsim/run.go
//go:build !rp2040

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"isrcell-go/services/hal"
	"isrcell-go/types"
	"isrcell-go/x/logx"
)

type runFlags struct {
	config     string
	duration   time.Duration
	pressEvery time.Duration
	adc        []string
	adcLatency int
	serial     string
	baud       int
	quiet      bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run [program]",
		Short: "Boot a program and run it for a span of simulated time",
		Long: "Boot a program on the simulated board, inject button presses and ADC samples\n" +
			"while it idles, and print a YAML report of what the hardware saw.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f.config)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Program = types.Program(args[0])
			}
			samples, err := parseSamples(f.adc)
			if err != nil {
				return err
			}

			w, closeLog, err := openLog(cmd, f)
			if err != nil {
				return err
			}
			defer closeLog()

			r, err := hal.Simulate(cfg, hal.SimOptions{
				Duration:   f.duration,
				PressEvery: f.pressEvery,
				ADC:        samples,
				ADCLatency: f.adcLatency,
			}, logx.New(w))
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(r)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "YAML config file (defaults apply to absent keys)")
	fl.DurationVarP(&f.duration, "for", "d", time.Second, "simulated time to run")
	fl.DurationVar(&f.pressEvery, "press-every", 0, "press the button at this interval")
	fl.StringSliceVar(&f.adc, "adc", nil, "ADC samples presented in turn (e.g. 0x300,0x100)")
	fl.IntVar(&f.adcLatency, "adc-latency", 0, "polls before a conversion completes")
	fl.StringVar(&f.serial, "serial", "", "write the log to this serial device instead of stderr")
	fl.IntVar(&f.baud, "baud", 115200, "serial baud rate")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "discard the log")
	return cmd
}

func loadConfig(path string) (types.Config, error) {
	if path == "" {
		return types.DefaultConfig(), nil
	}
	fd, err := os.Open(path)
	if err != nil {
		return types.Config{}, err
	}
	defer fd.Close()
	return types.LoadConfig(fd)
}

func parseSamples(in []string) ([]uint16, error) {
	out := make([]uint16, 0, len(in))
	for _, s := range in {
		v, err := strconv.ParseUint(s, 0, 12)
		if err != nil {
			return nil, fmt.Errorf("adc sample %q: %w", s, err)
		}
		out = append(out, uint16(v))
	}
	return out, nil
}

func openLog(cmd *cobra.Command, f runFlags) (io.Writer, func(), error) {
	switch {
	case f.quiet:
		return io.Discard, func() {}, nil
	case f.serial != "":
		p, err := openSerial(f.serial, f.baud)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	default:
		return cmd.ErrOrStderr(), func() {}, nil
	}
}
