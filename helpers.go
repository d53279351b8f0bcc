package thematic

import (
	"context"
	"time"

	"github.com/zoobzio/pipz"
)

// -----------------------------------------------------------------------------
// Adapter Functions - wrap functions to create Study processors
// -----------------------------------------------------------------------------

// Do creates a processor from a custom function that can fail.
//
// Example:
//
//	load := thematic.Do("load-transcript", func(ctx context.Context, s *thematic.Study) (*thematic.Study, error) {
//	    raw, err := os.ReadFile("interview-01.txt")
//	    if err != nil {
//	        return s, err
//	    }
//	    s.SetText(string(raw))
//	    return s, nil
//	})
func Do(name string, fn func(context.Context, *Study) (*Study, error)) pipz.Processor[*Study] {
	return pipz.Apply(pipz.NewIdentity(name, "Custom study processor"), fn)
}

// Effect creates a processor that observes a study without modifying it.
//
// Example:
//
//	report := thematic.Effect("report", func(ctx context.Context, s *thematic.Study) error {
//	    fmt.Printf("%d codes, %d themes\n", len(s.Codes()), len(s.Themes()))
//	    return nil
//	})
func Effect(name string, fn func(context.Context, *Study) error) pipz.Processor[*Study] {
	return pipz.Effect(pipz.NewIdentity(name, "Study side effect"), fn)
}

// -----------------------------------------------------------------------------
// Connectors
// -----------------------------------------------------------------------------

// Sequence creates a sequential pipeline of study stages.
// Each stage receives the output of the previous one.
//
// Example:
//
//	pipeline := thematic.Sequence("analysis",
//	    thematic.NewCoder("code"),
//	    thematic.NewRefiner("refine"),
//	    thematic.NewThemer("themes"),
//	    thematic.NewTheorist("theory"),
//	)
func Sequence(name string, processors ...pipz.Chainable[*Study]) *pipz.Sequence[*Study] {
	return pipz.NewSequence(pipz.NewIdentity(name, "Sequential study stages"), processors...)
}

// Timeout bounds the execution time of a stage or pipeline.
//
// Example:
//
//	bounded := thematic.Timeout("bounded-theory", thematic.NewTheorist("theory"), 5*time.Second)
func Timeout(name string, processor pipz.Chainable[*Study], duration time.Duration) *pipz.Timeout[*Study] {
	return pipz.NewTimeout(pipz.NewIdentity(name, "Study stage timeout"), processor, duration)
}

// Analysis builds the standard pipeline: code the text, refine the codebook,
// then run theming and theory in parallel branches.
func Analysis(name string) *pipz.Sequence[*Study] {
	return Sequence(name,
		NewCoder("code"),
		NewRefiner("refine"),
		NewFork("analyze",
			Sequence("theming",
				NewThemer("themes"),
				NewPatternFinder("patterns"),
				NewSaturationGauge("saturation"),
			),
			NewTheorist("theory"),
		),
	)
}
