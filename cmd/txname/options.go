// Run option resolution: flags, TXNAME_ environment variables, and an optional config file
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "TXNAME"

type runOptions struct {
	endpoint       string
	protocol       string
	stdout         bool
	signals        string
	compression    string
	serviceName    string
	scope          string
	sampleRatio    float64
	interval       time.Duration
	iterations     int
	runFor         time.Duration
	spanDuration   string
	messagingOrder string
	scenariosPath  string
	metricsAddr    string
	pprofAddr      string
	pyroscopeAddr  string
	logLevel       string
}

// newViper binds the command's flags and the TXNAME_ environment into a
// fresh viper instance and reads the --config file when one is given.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return v, nil
}

func loadRunOptions(cmd *cobra.Command) (runOptions, error) {
	v, err := newViper(cmd)
	if err != nil {
		return runOptions{}, err
	}
	return runOptions{
		endpoint:       v.GetString("endpoint"),
		protocol:       v.GetString("protocol"),
		stdout:         v.GetBool("stdout"),
		signals:        v.GetString("signals"),
		compression:    v.GetString("compression"),
		serviceName:    v.GetString("service-name"),
		scope:          v.GetString("scope"),
		sampleRatio:    v.GetFloat64("sample-ratio"),
		interval:       v.GetDuration("interval"),
		iterations:     v.GetInt("iterations"),
		runFor:         v.GetDuration("duration"),
		spanDuration:   v.GetString("span-duration"),
		messagingOrder: v.GetString("messaging-order"),
		scenariosPath:  v.GetString("scenarios"),
		metricsAddr:    v.GetString("metrics-addr"),
		pprofAddr:      v.GetString("pprof"),
		pyroscopeAddr:  v.GetString("pyroscope"),
		logLevel:       v.GetString("log-level"),
	}, nil
}
