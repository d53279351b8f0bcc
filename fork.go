package thematic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Fork is a parallel execution primitive that implements pipz.Chainable[*Study].
// It runs each branch concurrently on its own clone of the study, then merges
// the artifacts every branch produced back into the original in branch order.
//
// A branch contributes the artifacts of the stages it ran: a themes stage
// contributes themes, a theory stage the theory, and so on. When two branches
// produce the same artifact, the later branch wins. If any branch fails, the
// study is left untouched and the joined branch errors are returned.
//
// Example:
//
//	fork := thematic.NewFork("analysis",
//	    thematic.Sequence("theming",
//	        thematic.NewThemer("themes"),
//	        thematic.NewPatternFinder("patterns"),
//	    ),
//	    thematic.NewTheorist("theory"),
//	)
//	study, err := fork.Process(ctx, study)
type Fork struct {
	identity pipz.Identity
	key      string
	branches []pipz.Chainable[*Study]
	mu       sync.RWMutex
}

// NewFork creates a parallel execution primitive.
func NewFork(key string, branches ...pipz.Chainable[*Study]) *Fork {
	return &Fork{
		identity: pipz.NewIdentity(key, "Parallel study branches"),
		key:      key,
		branches: branches,
	}
}

// branchResult captures the outcome of a single parallel branch.
type branchResult struct {
	index  int
	name   string
	result *Study
	err    error
}

// Process implements pipz.Chainable[*Study].
func (f *Fork) Process(ctx context.Context, s *Study) (*Study, error) {
	branches := f.Branches()
	if len(branches) == 0 {
		return s, nil
	}

	err := runStage(ctx, s, f.key, "fork", func() (stageOutput, error) {
		baseSteps := len(s.Steps())
		results := f.run(ctx, s, branches)

		var branchErrors []error
		for _, br := range results {
			if br.err != nil {
				branchErrors = append(branchErrors, fmt.Errorf("branch %q: %w", br.name, br.err))
			}
		}
		if len(branchErrors) > 0 {
			return stageOutput{}, errors.Join(branchErrors...)
		}

		for _, br := range results {
			mergeBranch(s, br.result, baseSteps)
		}
		return stageOutput{outputs: len(results)}, nil
	})
	if err != nil {
		return s, fmt.Errorf("fork: %w", err)
	}
	return s, nil
}

// run executes every branch on a clone and returns results in branch order.
func (f *Fork) run(ctx context.Context, s *Study, branches []pipz.Chainable[*Study]) []branchResult {
	results := make([]branchResult, len(branches))
	var wg sync.WaitGroup
	wg.Add(len(branches))

	for i, branch := range branches {
		go func(i int, p pipz.Chainable[*Study]) {
			defer wg.Done()
			name := p.Identity().Name()

			capitan.Emit(ctx, ForkBranchStarted,
				FieldTraceID.Field(s.TraceID),
				FieldStageName.Field(f.key),
				FieldBranch.Field(name),
			)

			result, err := p.Process(ctx, s.Clone())

			capitan.Emit(ctx, ForkBranchCompleted,
				FieldTraceID.Field(s.TraceID),
				FieldStageName.Field(f.key),
				FieldBranch.Field(name),
				FieldError.Field(err),
			)

			results[i] = branchResult{index: i, name: name, result: result, err: err}
		}(i, branch)
	}

	wg.Wait()
	return results
}

// mergeBranch copies the artifacts of the stages a branch ran into s.
// baseSteps is the number of steps s had before the branch was cloned.
func mergeBranch(s, branch *Study, baseSteps int) {
	steps := branch.Steps()
	if len(steps) <= baseSteps {
		return
	}
	fresh := steps[baseSteps:]

	s.update(func(s *Study) {
		for _, step := range fresh {
			switch step.Type {
			case "coding":
				s.codes = branch.Codes()
				s.segments = branch.Segments()
				if summary, ok := branch.CodingSummary(); ok {
					s.summary = &summary
				}
			case "refine":
				s.codes = branch.Codes()
				s.merges = branch.Merges()
			case "themes":
				s.themes = branch.Themes()
			case "patterns":
				s.patterns = branch.Patterns()
			case "saturation":
				if analysis, ok := branch.Saturation(); ok {
					s.saturation = &analysis
				}
			case "negative_cases":
				if s.negatives == nil {
					s.negatives = make(map[string]NegativeCaseReport)
				}
				branch.mu.RLock()
				for theme, report := range branch.negatives {
					s.negatives[theme] = report
				}
				branch.mu.RUnlock()
			case "theory":
				if theory, ok := branch.Theory(); ok {
					s.theory = theory
				}
			}
		}
		s.steps = append(s.steps, fresh...)
	})
}

// Identity implements pipz.Chainable[*Study].
func (f *Fork) Identity() pipz.Identity {
	return f.identity
}

// Schema implements pipz.Chainable[*Study].
func (f *Fork) Schema() pipz.Node {
	return pipz.Node{Identity: f.identity, Type: "fork"}
}

// Close implements pipz.Chainable[*Study].
// Propagates Close to all branches.
func (f *Fork) Close() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var errs []error
	for _, p := range f.branches {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("branch %q: %w", p.Identity().Name(), err))
		}
	}
	return errors.Join(errs...)
}

// AddBranch appends a branch.
func (f *Fork) AddBranch(branch pipz.Chainable[*Study]) *Fork {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.branches = append(f.branches, branch)
	return f
}

// Branches returns a copy of the current branch list.
func (f *Fork) Branches() []pipz.Chainable[*Study] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	branches := make([]pipz.Chainable[*Study], len(f.branches))
	copy(branches, f.branches)
	return branches
}
