package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/diagnosis/config"
	"github.com/YuminosukeSato/diagnosis/imbalance"
	"github.com/YuminosukeSato/diagnosis/preprocessing"
)

type runFlags struct {
	configPath     string
	dataPath       string
	outputDir      string
	format         string
	sampling       string
	scaling        string
	testSize       float64
	randomState    int64
	topN           int
	waterfallIndex int
	logLevel       string
}

func newRunCmd() *cobra.Command {
	cmd, _ := buildRunCmd()
	return cmd
}

func buildRunCmd() (*cobra.Command, *runFlags) {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full training, evaluation and interpretation pipeline",
		Long: `Loads the CSV, performs a stratified split, balances the training set,
scales features, fits a logistic regression and writes the classification
report to stdout. Charts (confusion matrix, coefficients, SHAP summary and
waterfall) are written to the output directory.

Flags override values from --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			if err := setupLogging(cmd, cfg.Logging.Level); err != nil {
				return err
			}
			return runPipeline(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "pipeline YAML file")
	fl.StringVar(&f.dataPath, "data", "", "input CSV path")
	fl.StringVarP(&f.outputDir, "output", "o", "", "directory for charts")
	fl.StringVar(&f.format, "format", "", "chart file format (png, svg, pdf, ...)")
	fl.StringVar(&f.sampling, "sampling", "", "class balancing: smote, adasyn or none")
	fl.StringVar(&f.scaling, "scaling", "", "feature scaling: standard, minmax or none")
	fl.Float64Var(&f.testSize, "test-size", 0, "held-out fraction in (0, 1)")
	fl.Int64Var(&f.randomState, "random-state", 0, "seed for split, sampling and explainer")
	fl.IntVar(&f.topN, "top-n", 0, "number of coefficients to chart")
	fl.IntVar(&f.waterfallIndex, "waterfall-index", 0, "test row explained by the waterfall chart")
	fl.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	return cmd, f
}

// resolve loads the config file (or defaults) and applies the flags the
// user set explicitly.
func (f *runFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("data") {
		cfg.Data.Path = f.dataPath
	}
	if changed("output") {
		cfg.Output.Dir = f.outputDir
	}
	if changed("format") {
		cfg.Output.Format = f.format
	}
	if changed("sampling") {
		m, err := imbalance.ParseSamplingMethod(f.sampling)
		if err != nil {
			return nil, err
		}
		cfg.Preprocessing.Sampling = m
	}
	if changed("scaling") {
		m, err := preprocessing.ParseScalingMethod(f.scaling)
		if err != nil {
			return nil, err
		}
		cfg.Preprocessing.Scaling = m
	}
	if changed("test-size") {
		cfg.Split.TestSize = f.testSize
	}
	if changed("random-state") {
		cfg.Split.RandomState = f.randomState
	}
	if changed("top-n") {
		cfg.Interpret.TopN = f.topN
	}
	if changed("waterfall-index") {
		cfg.Interpret.WaterfallIndex = f.waterfallIndex
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
