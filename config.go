package thematic

// Default configuration for thematic operations.
// The analytic core reads these at call time; change them before running
// analyses, never concurrently with one.
var (
	// DefaultMaxParagraphLength is the paragraph length (in characters) above
	// which segmentation falls back to sentence boundaries.
	DefaultMaxParagraphLength = 500

	// DefaultExampleLength truncates each excerpt attached to a generated code.
	DefaultExampleLength = 100

	// DefaultGerundsPerSegment caps gerund extraction per segment.
	DefaultGerundsPerSegment = 5

	// DefaultQuoteMinLength and DefaultQuoteMaxLength bound quoted in-vivo
	// excerpts (min inclusive, max exclusive).
	DefaultQuoteMinLength = 10
	DefaultQuoteMaxLength = 50

	// DefaultMergeThreshold is the name-token overlap ratio a code must exceed
	// to be merged into an existing cluster during codebook refinement.
	DefaultMergeThreshold = 0.5

	// DefaultMergedExampleCap caps examples carried by a merged code.
	DefaultMergedExampleCap = 5

	// DefaultThemeThreshold is the minimum name-token overlap ratio for two
	// codes to share an inductive theme.
	DefaultThemeThreshold = 0.3

	// DefaultThemeExampleCap caps pooled examples per theme.
	DefaultThemeExampleCap = 3

	// DefaultSubThemeMinCodes is the member count a theme must exceed before a
	// deep extraction groups it into sub-themes.
	DefaultSubThemeMinCodes = 5

	// DefaultSaturationWindow is how many trailing sources feed the saturation rate.
	DefaultSaturationWindow = 3

	// DefaultSaturationScale is the new-codes-per-source mean that maps to a
	// saturation rate of zero.
	DefaultSaturationScale = 5.0

	// DefaultSaturationThreshold is the rate a dataset must exceed to be saturated.
	DefaultSaturationThreshold = 0.85

	// DefaultNearSaturation is the rate above which saturation is approaching.
	DefaultNearSaturation = 0.7

	// DefaultCategoryProperties caps salient properties retained per category.
	DefaultCategoryProperties = 5

	// DefaultCategoryExampleCap caps examples retained per category.
	DefaultCategoryExampleCap = 3
)
