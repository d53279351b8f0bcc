package thematic

import "github.com/zoobzio/capitan"

// Signal definitions for thematic analysis events.
// Signals follow the pattern: thematic.<entity>.<event>.
var (
	// Study lifecycle signals.
	StudyCreated = capitan.NewSignal(
		"thematic.study.created",
		"New study initiated with research question and trace ID",
	)

	// Stage execution signals.
	StageStarted = capitan.NewSignal(
		"thematic.stage.started",
		"Analysis stage began execution",
	)
	StageCompleted = capitan.NewSignal(
		"thematic.stage.completed",
		"Analysis stage finished successfully",
	)
	StageFailed = capitan.NewSignal(
		"thematic.stage.failed",
		"Analysis stage encountered an error",
	)

	// Fork signals.
	ForkBranchStarted = capitan.NewSignal(
		"thematic.fork.branch.started",
		"Parallel branch began on a cloned study",
	)
	ForkBranchCompleted = capitan.NewSignal(
		"thematic.fork.branch.completed",
		"Parallel branch finished",
	)

	// Archive signals.
	CodesArchived = capitan.NewSignal(
		"thematic.codes.archived",
		"Codebook persisted to the study archive",
	)
	TheoryArchived = capitan.NewSignal(
		"thematic.theory.archived",
		"Grounded theory persisted to the study archive",
	)
)

// Field keys for thematic event data.
var (
	// Study metadata.
	FieldResearchQuestion = capitan.NewStringKey("research_question")
	FieldTraceID          = capitan.NewStringKey("trace_id")
	FieldStudyID          = capitan.NewStringKey("study_id")

	// Stage metadata.
	FieldStageName = capitan.NewStringKey("stage_name")
	FieldStageType = capitan.NewStringKey("stage_type") // coding, refine, themes, patterns, saturation, negative_cases, theory
	FieldBranch    = capitan.NewStringKey("branch")

	// Stage outputs.
	FieldCodeCount   = capitan.NewIntKey("code_count")
	FieldOutputCount = capitan.NewIntKey("output_count") // artifacts produced by the stage
	FieldScore       = capitan.NewFloat32Key("score")    // saturation rate or theory completeness

	// Timing.
	FieldStageDuration = capitan.NewDurationKey("stage_duration")

	// Error information.
	FieldError = capitan.NewErrorKey("error")
)
