package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgs(t *testing.T) {
	name, args := parseArgs([]string{"myo"})
	assert.Equal(t, "", name)
	assert.Nil(t, args)

	name, args = parseArgs([]string{"myo", "run", "-serial", "/dev/ttyUSB0"})
	assert.Equal(t, "run", name)
	assert.Equal(t, []string{"-serial", "/dev/ttyUSB0"}, args)
}

func TestSourceFlags(t *testing.T) {
	cmd := runCommand{}
	_, err := cmd.source()
	assert.Error(t, err)

	cmd = runCommand{port: "/dev/ttyUSB0", broker: "tcp://localhost:1883"}
	_, err = cmd.source()
	assert.Error(t, err)
}

func TestConfigFlags(t *testing.T) {
	cf := configFlags{
		bufferSize:  250,
		stepSize:    125,
		sampleRate:  1000,
		lowFreq:     20,
		highFreq:    450,
		filterOrder: 4,
	}
	cfg := cf.config()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 250, cfg.BufferSize)
}
