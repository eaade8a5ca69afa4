package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/garethgeorge/memsim/internal/digest"
	"github.com/garethgeorge/memsim/internal/firstfit"
	"github.com/garethgeorge/memsim/internal/quickfit"
	"gopkg.in/yaml.v3"
)

// Config is fixed for the lifetime of an engine; it is read once at startup.
type Config struct {
	FirstFit FirstFit `yaml:"firstfit"`
	QuickFit QuickFit `yaml:"quickfit"`
	Trace    Trace    `yaml:"trace"`
}

type FirstFit struct {
	// Blocks lists block capacities in KB, in scan order.
	Blocks []int `yaml:"blocks"`
}

type QuickFit struct {
	// Classes lists size class capacities in KB, any order.
	Classes    []int `yaml:"classes"`
	Population int   `yaml:"population"`
	// StrictRelease rejects releases for classes with no outstanding tokens.
	StrictRelease bool `yaml:"strict_release"`
}

type Trace struct {
	Digest string `yaml:"digest"`
}

func Default() Config {
	return Config{
		FirstFit: FirstFit{Blocks: firstfit.DefaultCapacities()},
		QuickFit: QuickFit{
			Classes:    quickfit.DefaultClasses(),
			Population: quickfit.DefaultPopulation,
		},
		Trace: Trace{Digest: string(digest.Default)},
	}
}

// Load reads a YAML file and overlays it on Default. Unknown keys are an error.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs ValidationError

	if len(c.FirstFit.Blocks) == 0 {
		errs.Add("firstfit.blocks", errors.New("at least one block is required"))
	}
	for i, b := range c.FirstFit.Blocks {
		if b <= 0 {
			errs.Add(fmt.Sprintf("firstfit.blocks[%d]", i), fmt.Errorf("capacity %d is not positive", b))
		}
	}

	if len(c.QuickFit.Classes) == 0 {
		errs.Add("quickfit.classes", errors.New("at least one size class is required"))
	}
	for i, cl := range c.QuickFit.Classes {
		if cl <= 0 {
			errs.Add(fmt.Sprintf("quickfit.classes[%d]", i), fmt.Errorf("capacity %d is not positive", cl))
		}
		if slices.Index(c.QuickFit.Classes, cl) != i {
			errs.Add(fmt.Sprintf("quickfit.classes[%d]", i), fmt.Errorf("duplicate size class %d", cl))
		}
	}
	if c.QuickFit.Population < 0 {
		errs.Add("quickfit.population", fmt.Errorf("%d is negative", c.QuickFit.Population))
	}

	if _, err := digest.ParseAlgorithm(c.Trace.Digest); err != nil {
		errs.Add("trace.digest", err)
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

// DigestAlgorithm returns the validated trace digest algorithm.
func (c Config) DigestAlgorithm() digest.Algorithm {
	a, err := digest.ParseAlgorithm(c.Trace.Digest)
	if err != nil {
		return digest.Default
	}
	return a
}

// QuickFitOptions translates the quick-fit section into allocator options.
func (c Config) QuickFitOptions() []quickfit.Option {
	var opts []quickfit.Option
	if c.QuickFit.StrictRelease {
		opts = append(opts, quickfit.WithStrictRelease())
	}
	return opts
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
