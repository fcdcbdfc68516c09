package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"schelling-ca/internal/core"
)

// Config represents the command-line parameters of the viewer.
type Config struct {
	Sim    string
	Scale  int
	TPS    int
	Seed   int64
	Params map[string]string

	flags *pflag.FlagSet
}

// NewConfig returns a Config populated with the viewer defaults.
func NewConfig() *Config {
	return &Config{Sim: "schelling", Scale: 6, TPS: 10, Seed: 1337, Params: map[string]string{}}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *pflag.FlagSet) {
	c.flags = fs
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "simulation ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.StringToStringVar(&c.Params, "set", c.Params, "simulation parameters, e.g. --set n=80,h=3,move=horizontal")
}

// Build looks up the configured simulation and resets it with the seed. A
// seed given through --set wins over the default but not over --seed.
func (c *Config) Build() (core.Sim, error) {
	factory, ok := core.Sims()[c.Sim]
	if !ok {
		return nil, fmt.Errorf("unknown sim %q (available: %v)", c.Sim, core.SimNames())
	}
	if c.Scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %d", c.Scale)
	}
	if v, ok := c.Params["seed"]; ok && !c.seedFlagSet() {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", v, err)
		}
		c.Seed = seed
	}
	sim := factory(c.Params)
	sim.Reset(c.Seed)
	return sim, nil
}

func (c *Config) seedFlagSet() bool {
	return c.flags != nil && c.flags.Changed("seed")
}
