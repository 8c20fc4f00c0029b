// Package config holds the settings of the diagnose pipeline, read from a
// YAML file.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/diagnosis/imbalance"
	"github.com/YuminosukeSato/diagnosis/interpret"
	"github.com/YuminosukeSato/diagnosis/model_selection"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
	"github.com/YuminosukeSato/diagnosis/preprocessing"
)

// Config is the full pipeline configuration.
type Config struct {
	Data          DataConfig          `yaml:"data"`
	Split         SplitConfig         `yaml:"split"`
	Preprocessing PreprocessingConfig `yaml:"preprocessing"`
	Model         ModelConfig         `yaml:"model"`
	Interpret     InterpretConfig     `yaml:"interpret"`
	Output        OutputConfig        `yaml:"output"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// DataConfig locates the input CSV.
type DataConfig struct {
	Path string `yaml:"path"`
}

// SplitConfig configures the stratified train/test split.
type SplitConfig struct {
	TestSize    float64 `yaml:"test_size"`
	RandomState int64   `yaml:"random_state"`
}

// PreprocessingConfig selects class balancing and feature scaling.
type PreprocessingConfig struct {
	Sampling   imbalance.SamplingMethod    `yaml:"sampling"` // none, smote, adasyn
	Scaling    preprocessing.ScalingMethod `yaml:"scaling"`  // none, standard, minmax
	KNeighbors int                         `yaml:"k_neighbors"`
}

// ModelConfig configures the LogisticRegression fitted by the pipeline.
type ModelConfig struct {
	C       float64 `yaml:"c"`
	MaxIter int     `yaml:"max_iter"`
}

// InterpretConfig configures the coefficient and SHAP charts.
type InterpretConfig struct {
	TopN           int `yaml:"top_n"`
	WaterfallIndex int `yaml:"waterfall_index"`
}

// OutputConfig configures where charts are written.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // file extension, e.g. png or svg
	DPI    int    `yaml:"dpi"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Data: DataConfig{Path: "data/breast_cancer.csv"},
		Split: SplitConfig{
			TestSize:    model_selection.DefaultTestSize,
			RandomState: model_selection.DefaultRandomState,
		},
		Preprocessing: PreprocessingConfig{
			Sampling:   imbalance.SamplingSMOTE,
			Scaling:    preprocessing.ScalingStandard,
			KNeighbors: imbalance.DefaultKNeighbors,
		},
		Model: ModelConfig{C: 1.0, MaxIter: 1000},
		Interpret: InterpretConfig{
			TopN: interpret.DefaultTopN,
		},
		Output: OutputConfig{
			Dir:    "output",
			Format: "png",
			DPI:    100,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}

// Validate checks every value the pipeline depends on.
func (c *Config) Validate() error {
	switch {
	case c.Data.Path == "":
		return errors.NewValidationError("data.path", "must not be empty", c.Data.Path)
	case c.Split.TestSize <= 0 || c.Split.TestSize >= 1:
		return errors.NewValidationError("split.test_size", "must be in (0, 1)", c.Split.TestSize)
	case c.Preprocessing.KNeighbors < 1:
		return errors.NewValidationError("preprocessing.k_neighbors", "must be at least 1", c.Preprocessing.KNeighbors)
	case c.Model.C <= 0:
		return errors.NewValidationError("model.c", "must be positive", c.Model.C)
	case c.Model.MaxIter < 1:
		return errors.NewValidationError("model.max_iter", "must be at least 1", c.Model.MaxIter)
	case c.Interpret.TopN < 1:
		return errors.NewValidationError("interpret.top_n", "must be at least 1", c.Interpret.TopN)
	case c.Interpret.WaterfallIndex < 0:
		return errors.NewValidationError("interpret.waterfall_index", "must not be negative", c.Interpret.WaterfallIndex)
	case c.Output.Dir == "":
		return errors.NewValidationError("output.dir", "must not be empty", c.Output.Dir)
	case c.Output.Format == "":
		return errors.NewValidationError("output.format", "must not be empty", c.Output.Format)
	case c.Output.DPI < 1:
		return errors.NewValidationError("output.dpi", "must be at least 1", c.Output.DPI)
	}
	if _, err := imbalance.ParseSamplingMethod(c.Preprocessing.Sampling.String()); err != nil {
		return err
	}
	if _, err := preprocessing.ParseScalingMethod(c.Preprocessing.Scaling.String()); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return errors.NewValidationError("logging.level", err.Error(), c.Logging.Level)
	}
	return nil
}

// ChartPath returns the output file for a chart name, e.g. "confusion_matrix".
func (c *Config) ChartPath(name string) string {
	return filepath.Join(c.Output.Dir, name+"."+c.Output.Format)
}
