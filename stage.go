package thematic

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// stageOutput is what a stage reports on completion.
type stageOutput struct {
	outputs int
	score   float32
}

// runStage executes fn as a named stage against s. It emits the started,
// completed and failed signals and appends a StageRecord to the study.
func runStage(ctx context.Context, s *Study, key, stageType string, fn func() (stageOutput, error)) error {
	start := time.Now()
	codeCount := len(s.Codes())

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(s.TraceID),
		FieldStageName.Field(key),
		FieldStageType.Field(stageType),
		FieldCodeCount.Field(codeCount),
	)

	out, err := fn()
	duration := time.Since(start)

	s.addStep(StageRecord{
		Name:      key,
		Type:      stageType,
		Duration:  duration,
		Timestamp: start,
		Error:     err,
	})

	if err != nil {
		capitan.Error(ctx, StageFailed,
			FieldTraceID.Field(s.TraceID),
			FieldStageName.Field(key),
			FieldStageType.Field(stageType),
			FieldStageDuration.Field(duration),
			FieldError.Field(err),
		)
		return err
	}

	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(s.TraceID),
		FieldStageName.Field(key),
		FieldStageType.Field(stageType),
		FieldStageDuration.Field(duration),
		FieldOutputCount.Field(out.outputs),
		FieldScore.Field(out.score),
	)
	return nil
}
