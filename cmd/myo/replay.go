package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/dudk/myo/pipe"
	"github.com/dudk/myo/wav"
)

type replayCommand struct {
	in  string
	cfg configFlags
}

func (cmd *replayCommand) Name() string {
	return "replay"
}

func (cmd *replayCommand) Help() string {
	return "Process a recorded wav file through the pipeline"
}

func (cmd *replayCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.in, "in", "", "wav file to replay (required)")
	cmd.cfg.register(fs)
}

func (cmd *replayCommand) Run() error {
	if cmd.in == "" {
		return fmt.Errorf("Missing -in required flag")
	}

	source, err := wav.Open(cmd.in)
	if err != nil {
		return err
	}

	cfg := cmd.cfg.config()
	cfg.SampleRate = source.SampleRate()

	p, err := pipe.New(cfg, source)
	if err != nil {
		source.Close()
		return err
	}
	if err := p.Start(); err != nil {
		source.Close()
		return err
	}

	drain(p)

	if err := p.Stop(); err != nil {
		return err
	}
	printStats(p.Stats())
	return p.Err()
}

// drain prints results until the file is exhausted: once the collected
// counter stops moving and no results are pending, the replay is done.
func drain(p *pipe.Pipe) {
	var last uint64
	idle := 0
	for {
		busy := false
		for {
			r, ok := p.Latest()
			if !ok {
				break
			}
			busy = true
			printResult(r)
		}
		if err := p.Err(); err != nil {
			fmt.Printf("pipe failed: %v\n", err)
			return
		}

		s := p.Stats()
		if s.Collected != last {
			last = s.Collected
			busy = true
		}
		if busy {
			idle = 0
		} else {
			idle++
			if idle >= 5 {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
}
