package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"

	"github.com/dudk/myo"
	"github.com/dudk/myo/internal/api"
	"github.com/dudk/myo/mqtt"
	"github.com/dudk/myo/pipe"
	"github.com/dudk/myo/serial"
)

type runCommand struct {
	port     string
	baudRate int
	broker   string
	topic    string
	httpAddr string
	duration time.Duration
	cfg      configFlags
}

// configFlags carries the pipeline settings shared by commands.
type configFlags struct {
	bufferSize  int
	stepSize    int
	sampleRate  int
	lowFreq     float64
	highFreq    float64
	filterOrder int
}

func (cf *configFlags) register(fs *flag.FlagSet) {
	def := myo.DefaultConfig()
	fs.IntVar(&cf.bufferSize, "buffer", def.BufferSize, "rolling window length in samples")
	fs.IntVar(&cf.stepSize, "step", def.StepSize, "window advance in samples")
	fs.IntVar(&cf.sampleRate, "rate", def.SampleRate, "sample rate in Hz")
	fs.Float64Var(&cf.lowFreq, "low", def.LowFreq, "band-pass low cutoff in Hz")
	fs.Float64Var(&cf.highFreq, "high", def.HighFreq, "band-pass high cutoff in Hz")
	fs.IntVar(&cf.filterOrder, "order", def.FilterOrder, "band-pass filter order")
}

func (cf *configFlags) config() myo.Config {
	cfg := myo.DefaultConfig()
	cfg.BufferSize = cf.bufferSize
	cfg.StepSize = cf.stepSize
	cfg.SampleRate = cf.sampleRate
	cfg.LowFreq = cf.lowFreq
	cfg.HighFreq = cf.highFreq
	cfg.FilterOrder = cf.filterOrder
	return cfg
}

func (cmd *runCommand) Name() string {
	return "run"
}

func (cmd *runCommand) Help() string {
	return "Process a live sample stream from a serial port or an MQTT topic"
}

func (cmd *runCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.port, "serial", "", "serial port to read samples from")
	fs.IntVar(&cmd.baudRate, "baud", 115200, "serial baud rate")
	fs.StringVar(&cmd.broker, "broker", "", "mqtt broker url to read samples from")
	fs.StringVar(&cmd.topic, "topic", "sensors/emg", "mqtt topic with samples")
	fs.StringVar(&cmd.httpAddr, "http", "", "address to serve stats and results on")
	fs.DurationVar(&cmd.duration, "duration", 0, "stop after this long, 0 runs until interrupted")
	cmd.cfg.register(fs)
}

func (cmd *runCommand) Run() error {
	source, err := cmd.source()
	if err != nil {
		return err
	}

	p, err := pipe.New(cmd.cfg.config(), source)
	if err != nil {
		source.Close()
		return err
	}
	if err := p.Start(); err != nil {
		source.Close()
		return err
	}

	if cmd.httpAddr != "" {
		go func() {
			logged := handlers.LoggingHandler(os.Stdout, api.NewRouter(p))
			if err := http.ListenAndServe(cmd.httpAddr, logged); err != nil {
				fmt.Printf("http server failed: %v\n", err)
			}
		}()
	}

	watch(p, cmd.duration)

	if err := p.Stop(); err != nil {
		return err
	}
	printStats(p.Stats())
	return p.Err()
}

func (cmd *runCommand) source() (myo.Source, error) {
	switch {
	case cmd.port != "" && cmd.broker != "":
		return nil, fmt.Errorf("use either -serial or -broker, not both")
	case cmd.port != "":
		return serial.Open(cmd.port, cmd.baudRate)
	case cmd.broker != "":
		return mqtt.Open(cmd.broker, cmd.topic, "")
	}
	return nil, fmt.Errorf("a sample source is required, pass -serial or -broker")
}

// watch prints results until the duration elapses, an interrupt arrives
// or the pipe fails.
func watch(p *pipe.Pipe, duration time.Duration) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	var deadline <-chan time.Time
	if duration > 0 {
		deadline = time.After(duration)
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	stats := time.NewTicker(5 * time.Second)
	defer stats.Stop()
	for {
		select {
		case <-interrupt:
			return
		case <-deadline:
			return
		case <-stats.C:
			printStats(p.Stats())
		case <-ticker.C:
			if err := p.Err(); err != nil {
				fmt.Printf("pipe failed: %v\n", err)
				return
			}
			for {
				r, ok := p.Latest()
				if !ok {
					break
				}
				printResult(r)
			}
		}
	}
}

func printResult(r myo.Result) {
	if r.Classified {
		fmt.Printf("%s class=%d mav=%.4f std=%.4f ssc=%.0f zc=%.0f\n",
			r.Time.Format("15:04:05.000"), r.Class,
			r.Features.MAV, r.Features.STD, r.Features.SSC, r.Features.ZC)
		return
	}
	fmt.Printf("%s mav=%.4f std=%.4f ssc=%.0f zc=%.0f\n",
		r.Time.Format("15:04:05.000"),
		r.Features.MAV, r.Features.STD, r.Features.SSC, r.Features.ZC)
}

func printStats(s myo.Stats) {
	fmt.Printf("collected=%d processed=%d dropped=%d\n", s.Collected, s.Processed, s.Dropped)
}
