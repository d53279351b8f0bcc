// Package main provides the thematic CLI.
//
// Every command reads one YAML document (from --input or stdin), runs a single
// analysis operation over it and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/thematic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var (
	// Global flags
	verbose   bool
	inputPath string
	timeout   time.Duration

	// code
	exampleCap int

	logger   *zap.Logger
	unhooks  []func()
	validate = validator.New()
)

// document is the YAML input shared by every command. Each command reads the
// fields it needs and ignores the rest.
type document struct {
	ResearchQuestion string                 `yaml:"researchQuestion"`
	Methodology      string                 `yaml:"methodology" validate:"omitempty,oneof=grounded thematic phenomenology"`
	Paradigm         string                 `yaml:"paradigm"`
	Text             string                 `yaml:"text"`
	Existing         []string               `yaml:"existing" validate:"dive,required"`
	Codes            []thematic.Code        `yaml:"codes" validate:"dive"`
	Themes           []thematic.Theme       `yaml:"themes" validate:"dive"`
	Sources          []thematic.SourceCodes `yaml:"sources" validate:"dive"`
	Theme            *thematic.Theme        `yaml:"theme"`
	Mode             string                 `yaml:"mode" validate:"omitempty,oneof=inductive deductive"`
	Depth            string                 `yaml:"depth" validate:"omitempty,oneof=surface deep"`
	Level            string                 `yaml:"level" validate:"omitempty,oneof=code theme theoretical"`
	Threshold        string                 `yaml:"threshold" validate:"omitempty,oneof=weak moderate strong"`
}

var rootCmd = &cobra.Command{
	Use:   "thematic",
	Short: "Qualitative analysis over interview text and codebooks",
	Long: `thematic codes raw qualitative text, refines codebooks, extracts themes,
finds patterns and negative cases, gauges saturation and builds grounded theories.

Input is a YAML document given with --input (or on stdin); output is JSON.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if verbose {
			unhooks = hookSignals(logger)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		for _, unhook := range unhooks {
			unhook()
		}
		unhooks = nil
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Generate codes from text",
	RunE:  runCode,
}

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Merge overlapping codes in a codebook",
	RunE:  runRefine,
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Extract themes from a codebook",
	RunE:  runThemes,
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Find co-occurrence, contrast and hierarchy patterns",
	RunE:  runPatterns,
}

var saturationCmd = &cobra.Command{
	Use:   "saturation",
	Short: "Judge saturation across ordered sources",
	RunE:  runSaturation,
}

var negativeCmd = &cobra.Command{
	Use:   "negative",
	Short: "Find codes that contradict a theme",
	RunE:  runNegative,
}

var theoryCmd = &cobra.Command{
	Use:   "theory",
	Short: "Build a grounded theory from a codebook",
	RunE:  runTheory,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analysis pipeline over text",
	Long: `Runs coding, refinement, theming, pattern analysis, saturation and theory
building over the document text, then checks every extracted theme for
negative cases and prints every artifact.`,
	RunE: runAnalysis,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log analysis signals")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "", "YAML input document (default: stdin)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Pipeline timeout")

	codeCmd.Flags().IntVar(&exampleCap, "example-cap", 0, "Maximum excerpts kept per code (0 = unbounded)")

	rootCmd.AddCommand(codeCmd)
	rootCmd.AddCommand(refineCmd)
	rootCmd.AddCommand(themesCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(saturationCmd)
	rootCmd.AddCommand(negativeCmd)
	rootCmd.AddCommand(theoryCmd)
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCode(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd)
	if err != nil {
		return err
	}

	var opts []thematic.CodingOption
	if exampleCap > 0 {
		opts = append(opts, thematic.WithExampleCap(exampleCap))
	}
	result := thematic.GenerateCodes(doc.Text, doc.Existing, thematic.Methodology(doc.Methodology), opts...)
	logger.Debug("Generated codes",
		zap.Int("codes", len(result.Codes)),
		zap.Int("segments", len(result.Segments)))

	return writeJSON(cmd.OutOrStdout(), result)
}

func runRefine(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd)
	if err != nil {
		return err
	}

	result := thematic.RefineCodebook(doc.Codes)
	logger.Debug("Refined codebook",
		zap.Int("before", len(doc.Codes)),
		zap.Int("after", len(result.Refined)))

	return writeJSON(cmd.OutOrStdout(), result)
}

func runThemes(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd)
	if err != nil {
		return err
	}

	themes := thematic.ExtractThemes(thematic.ThemeRequest{
		Codes: doc.Codes,
		Mode:  thematic.ThemeMode(doc.Mode),
		Depth: thematic.ThemeDepth(doc.Depth),
	})
	logger.Debug("Extracted themes", zap.Int("themes", len(themes)))

	return writeJSON(cmd.OutOrStdout(), themes)
}

func runPatterns(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd)
	if err != nil {
		return err
	}

	patterns := thematic.AnalyzePatterns(doc.Codes)
	logger.Debug("Analyzed patterns", zap.Int("patterns", len(patterns)))

	return writeJSON(cmd.OutOrStdout(), patterns)
}

func runSaturation(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd)
	if err != nil {
		return err
	}

	level := thematic.SaturationLevel(doc.Level)
	if level == "" {
		level = thematic.LevelCode
	}
	analysis := thematic.DetectSaturation(thematic.SaturationRequest{
		Level:   level,
		Sources: doc.Sources,
	})
	logger.Debug("Detected saturation",
		zap.Bool("saturated", analysis.Saturated),
		zap.Float64("rate", analysis.SaturationRate))

	return writeJSON(cmd.OutOrStdout(), analysis)
}

func runNegative(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd)
	if err != nil {
		return err
	}
	if doc.Theme == nil {
		return fmt.Errorf("negative: document has no theme")
	}

	report := thematic.FindNegativeCases(thematic.NegativeCaseRequest{
		Theme:     *doc.Theme,
		AllCodes:  doc.Codes,
		Threshold: thematic.Strength(doc.Threshold),
	})
	logger.Debug("Found negative cases",
		zap.String("theme", doc.Theme.Name),
		zap.Int("cases", len(report.NegativeCases)))

	return writeJSON(cmd.OutOrStdout(), report)
}

func runTheory(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd)
	if err != nil {
		return err
	}

	theory, err := thematic.BuildGroundedTheory(thematic.TheoryRequest{
		Codes:            doc.Codes,
		Themes:           doc.Themes,
		ResearchQuestion: doc.ResearchQuestion,
		Paradigm:         doc.Paradigm,
	})
	if err != nil {
		return fmt.Errorf("theory: %w", err)
	}
	logger.Debug("Built theory",
		zap.String("core", theory.CoreCategory.Name),
		zap.Float64("completeness", theory.Completeness))

	return writeJSON(cmd.OutOrStdout(), theory)
}

// analysisReport is the output of the run command.
type analysisReport struct {
	StudyID    string                                 `json:"studyId"`
	Codes      []thematic.Code                        `json:"codes"`
	Merges     []thematic.Merge                       `json:"merges"`
	Themes     []thematic.Theme                       `json:"themes"`
	Patterns   []thematic.Pattern                     `json:"patterns"`
	Saturation *thematic.SaturationAnalysis           `json:"saturation,omitempty"`
	Theory     *thematic.GroundedTheoryResult         `json:"theory,omitempty"`
	Negatives  map[string]thematic.NegativeCaseReport `json:"negativeCases"`
	Steps      []thematic.StageRecord                 `json:"steps"`
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	study, err := thematic.NewStudy(ctx, nil, doc.ResearchQuestion)
	if err != nil {
		return err
	}
	if doc.Methodology != "" {
		study.Methodology = thematic.Methodology(doc.Methodology)
	}
	study.Paradigm = doc.Paradigm
	study.SetText(doc.Text)
	study.SetCodes(doc.Codes)
	for _, src := range doc.Sources {
		study.AddSource(src.Source, src.Codes...)
	}

	pipeline := thematic.Analysis("run")
	defer pipeline.Close()

	logger.Info("Running analysis",
		zap.String("study", study.ID),
		zap.String("trace", study.TraceID))

	study, err = pipeline.Process(ctx, study)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	report := analysisReport{
		StudyID:   study.ID,
		Codes:     study.Codes(),
		Merges:    study.Merges(),
		Themes:    study.Themes(),
		Patterns:  study.Patterns(),
		Negatives: make(map[string]thematic.NegativeCaseReport),
	}
	if sat, ok := study.Saturation(); ok {
		report.Saturation = &sat
	}
	if theory, ok := study.Theory(); ok {
		report.Theory = theory
	}

	for _, theme := range report.Themes {
		finder := thematic.NewNegativeCaseFinder("negative", theme.Name)
		if doc.Threshold != "" {
			finder.WithThreshold(thematic.Strength(doc.Threshold))
		}
		study, err = finder.Process(ctx, study)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		if neg, ok := study.NegativeCases(theme.Name); ok {
			report.Negatives[theme.Name] = neg
		}
	}
	report.Steps = study.Steps()

	return writeJSON(cmd.OutOrStdout(), report)
}

// loadDocument reads and validates the input document.
func loadDocument(cmd *cobra.Command) (*document, error) {
	var (
		raw []byte
		err error
	)
	if inputPath == "" || inputPath == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(inputPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	logger.Debug("Loaded input",
		zap.String("path", inputPath),
		zap.Int("codes", len(doc.Codes)),
		zap.Int("sources", len(doc.Sources)))
	return &doc, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// hookSignals routes stage lifecycle signals to log and returns the unhook funcs.
func hookSignals(log *zap.Logger) []func() {
	stageFields := func(e *capitan.Event) []zap.Field {
		name, _ := thematic.FieldStageName.From(e)
		typ, _ := thematic.FieldStageType.From(e)
		trace, _ := thematic.FieldTraceID.From(e)
		return []zap.Field{
			zap.String("stage", name),
			zap.String("type", typ),
			zap.String("trace", trace),
		}
	}

	started := capitan.Hook(thematic.StageStarted, func(_ context.Context, e *capitan.Event) {
		log.Debug("Stage started", stageFields(e)...)
	})
	completed := capitan.Hook(thematic.StageCompleted, func(_ context.Context, e *capitan.Event) {
		fields := stageFields(e)
		if n, ok := thematic.FieldOutputCount.From(e); ok {
			fields = append(fields, zap.Int("outputs", n))
		}
		if d, ok := thematic.FieldStageDuration.From(e); ok {
			fields = append(fields, zap.Duration("duration", d))
		}
		log.Debug("Stage completed", fields...)
	})
	failed := capitan.Hook(thematic.StageFailed, func(_ context.Context, e *capitan.Event) {
		fields := stageFields(e)
		if err, ok := thematic.FieldError.From(e); ok {
			fields = append(fields, zap.Error(err))
		}
		log.Warn("Stage failed", fields...)
	})
	branch := capitan.Hook(thematic.ForkBranchCompleted, func(_ context.Context, e *capitan.Event) {
		name, _ := thematic.FieldBranch.From(e)
		log.Debug("Branch completed", zap.String("branch", name))
	})

	return []func(){
		func() { started.Close() },
		func() { completed.Close() },
		func() { failed.Close() },
		func() { branch.Close() },
	}
}
