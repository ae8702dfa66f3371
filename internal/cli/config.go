package cli

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/LynnColeArt/stream"
)

//go:embed schema.cue
var configSchema string

// FileConfig is the on-disk configuration. Absent fields leave the default
// (or the command-line value) in place.
type FileConfig struct {
	ArrayLength  *int     `yaml:"array_length" json:"array_length,omitempty"`
	Repetitions  *int     `yaml:"repetitions" json:"repetitions,omitempty"`
	Precision    *string  `yaml:"precision" json:"precision,omitempty"`
	Offset       *int     `yaml:"offset" json:"offset,omitempty"`
	Scalar       *float64 `yaml:"scalar" json:"scalar,omitempty"`
	Workers      *int     `yaml:"workers" json:"workers,omitempty"`
	SeedPolicy   *string  `yaml:"seed_policy" json:"seed_policy,omitempty"`
	Seed         *uint64  `yaml:"seed" json:"seed,omitempty"`
	PinCPUs      *bool    `yaml:"pin_cpus" json:"pin_cpus,omitempty"`
	MaxOffenders *int     `yaml:"max_offenders" json:"max_offenders,omitempty"`
	Counters     *bool    `yaml:"counters" json:"counters,omitempty"`
}

// LoadConfigFile reads and schema-checks a YAML configuration file.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, stream.NewConfigurationError("LoadConfigFile", err.Error())
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML, rejecting unknown keys, and validates the result
// against the embedded CUE schema.
func ParseConfig(data []byte) (*FileConfig, error) {
	fc := &FileConfig{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, stream.NewConfigurationError("ParseConfig", fmt.Sprintf("decoding yaml: %v", err))
	}
	if err := checkSchema(fc); err != nil {
		return nil, err
	}
	return fc, nil
}

// checkSchema unifies the decoded file, as JSON, with #Config.
func checkSchema(fc *FileConfig) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(configSchema)
	if err := schema.Err(); err != nil {
		return stream.NewConfigurationError("checkSchema", fmt.Sprintf("compiling schema: %v", err))
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	data, err := json.Marshal(fc)
	if err != nil {
		return stream.NewConfigurationError("checkSchema", fmt.Sprintf("encoding config: %v", err))
	}
	value := ctx.CompileBytes(data)
	if err := value.Err(); err != nil {
		return stream.NewConfigurationError("checkSchema", fmt.Sprintf("encoding config: %v", err))
	}
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return stream.NewConfigurationError("checkSchema", fmt.Sprintf("invalid config: %v", err))
	}
	return nil
}

// Apply overlays the fields present in the file onto cfg.
func (fc *FileConfig) Apply(cfg *stream.Config) error {
	if fc.ArrayLength != nil {
		cfg.ArrayLength = *fc.ArrayLength
	}
	if fc.Repetitions != nil {
		cfg.Repetitions = *fc.Repetitions
	}
	if fc.Precision != nil {
		p, err := stream.ParsePrecision(*fc.Precision)
		if err != nil {
			return err
		}
		cfg.Precision = p
	}
	if fc.Offset != nil {
		cfg.Offset = *fc.Offset
	}
	if fc.Scalar != nil {
		cfg.Scalar = *fc.Scalar
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	if fc.SeedPolicy != nil {
		sp, err := stream.ParseSeedPolicy(*fc.SeedPolicy)
		if err != nil {
			return err
		}
		cfg.SeedPolicy = sp
	}
	if fc.Seed != nil {
		cfg.Seed = *fc.Seed
	}
	if fc.PinCPUs != nil {
		cfg.PinCPUs = *fc.PinCPUs
	}
	if fc.MaxOffenders != nil {
		cfg.MaxOffenders = *fc.MaxOffenders
	}
	return nil
}

// BenchFlags holds the harness flags shared by run and sweep.
type BenchFlags struct {
	ArrayLength  int
	Repetitions  int
	Precision    string
	Offset       int
	Scalar       float64
	Workers      int
	SeedPolicy   string
	Seed         uint64
	PinCPUs      bool
	MaxOffenders int
	Counters     bool
}

// register adds the harness flags to fs with the library defaults.
func (bf *BenchFlags) register(fs *pflag.FlagSet, withLength bool) {
	def := stream.DefaultConfig()
	if withLength {
		fs.IntVarP(&bf.ArrayLength, "length", "n", def.ArrayLength, "elements per array")
	}
	fs.IntVarP(&bf.Repetitions, "reps", "r", def.Repetitions, "repetitions of each kernel (at least 2)")
	fs.StringVarP(&bf.Precision, "precision", "p", def.Precision.String(), "element type (float32|float64)")
	fs.IntVar(&bf.Offset, "offset", def.Offset, "padding elements after each array")
	fs.Float64Var(&bf.Scalar, "scalar", def.Scalar, "scalar for scale and triad")
	fs.IntVarP(&bf.Workers, "workers", "w", def.Workers, "worker goroutines (0 = GOMAXPROCS)")
	fs.StringVar(&bf.SeedPolicy, "seed-policy", def.SeedPolicy.String(), "array initialization (canonical|random)")
	fs.Uint64Var(&bf.Seed, "seed", def.Seed, "random seed for --seed-policy=random")
	fs.BoolVar(&bf.PinCPUs, "pin", def.PinCPUs, "pin workers to CPUs")
	fs.IntVar(&bf.MaxOffenders, "max-offenders", def.MaxOffenders, "failing elements listed per array")
	fs.BoolVar(&bf.Counters, "counters", false, "capture hardware counters around the timed loop")
}

// resolve builds the run configuration: defaults, then the config file, then
// any flags set explicitly on the command line.
func (bf *BenchFlags) resolve(fs *pflag.FlagSet, configPath string) (stream.Config, bool, error) {
	cfg := stream.DefaultConfig()
	counters := bf.Counters

	if configPath != "" {
		fc, err := LoadConfigFile(configPath)
		if err != nil {
			return cfg, false, err
		}
		if err := fc.Apply(&cfg); err != nil {
			return cfg, false, err
		}
		if fc.Counters != nil && !fs.Changed("counters") {
			counters = *fc.Counters
		}
	}

	if fs.Changed("length") {
		cfg.ArrayLength = bf.ArrayLength
	}
	if fs.Changed("reps") {
		cfg.Repetitions = bf.Repetitions
	}
	if fs.Changed("precision") {
		p, err := stream.ParsePrecision(bf.Precision)
		if err != nil {
			return cfg, false, err
		}
		cfg.Precision = p
	}
	if fs.Changed("offset") {
		cfg.Offset = bf.Offset
	}
	if fs.Changed("scalar") {
		cfg.Scalar = bf.Scalar
	}
	if fs.Changed("workers") {
		cfg.Workers = bf.Workers
	}
	if fs.Changed("seed-policy") {
		sp, err := stream.ParseSeedPolicy(bf.SeedPolicy)
		if err != nil {
			return cfg, false, err
		}
		cfg.SeedPolicy = sp
	}
	if fs.Changed("seed") {
		cfg.Seed = bf.Seed
	}
	if fs.Changed("pin") {
		cfg.PinCPUs = bf.PinCPUs
	}
	if fs.Changed("max-offenders") {
		cfg.MaxOffenders = bf.MaxOffenders
	}
	return cfg, counters, nil
}
