package workflows

import (
	"time"

	"revmatch/internal/activities"
	"revmatch/internal/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetBuildProgress = "GetBuildProgress"

// CorpusBuildWorkflow rebuilds the paper database from the corpus root.
// Papers are processed strictly sequentially in enumeration order, so the
// saved record order matches a direct synchronous build. A paper whose
// embedding keeps failing after retries ends up as a degraded record,
// counted instead of dropped, and the batch carries on.
func CorpusBuildWorkflow(ctx workflow.Context, input CorpusBuildInput) (CorpusBuildResult, error) {
	progress := CorpusBuildProgress{
		BatchID:  input.BatchID,
		PerPaper: map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetBuildProgress, func() (CorpusBuildProgress, error) {
		return progress, nil
	}); err != nil {
		return CorpusBuildResult{}, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var listOut activities.ListCorpusPapersOutput
	if err := workflow.ExecuteActivity(ctx, "ListCorpusPapersActivity", activities.ListCorpusPapersInput{CorpusRoot: input.CorpusRoot}).Get(ctx, &listOut); err != nil {
		return CorpusBuildResult{}, err
	}
	progress.Total = len(listOut.Papers)

	records := make([]models.PaperRecord, 0, len(listOut.Papers))
	for _, ref := range listOut.Papers {
		progress.PerPaper[ref.Paper] = "processing"
		var out activities.ProcessPaperOutput
		err := workflow.ExecuteActivity(ctx, "ProcessPaperActivity", activities.ProcessPaperInput{Ref: ref}).Get(ctx, &out)
		if err != nil {
			// Embedding never came back; the paper stays in the
			// database with both embeddings absent.
			records = append(records, models.PaperRecord{Author: ref.Author, Paper: ref.Paper})
			progress.Done++
			progress.Degraded++
			progress.PerPaper[ref.Paper] = "degraded"
			continue
		}
		records = append(records, out.Record)
		progress.Done++
		if out.Record.Degraded() {
			progress.Degraded++
			progress.PerPaper[ref.Paper] = "degraded"
		} else {
			progress.PerPaper[ref.Paper] = "processed"
		}
	}

	if err := workflow.ExecuteActivity(ctx, "SaveDatabaseActivity", activities.SaveDatabaseInput{Records: records}).Get(ctx, nil); err != nil {
		return CorpusBuildResult{}, err
	}

	var manifestOut activities.WriteBuildManifestOutput
	if err := workflow.ExecuteActivity(ctx, "WriteBuildManifestActivity", activities.WriteBuildManifestInput{
		BatchID:    input.BatchID,
		CorpusRoot: input.CorpusRoot,
		Records:    records,
	}).Get(ctx, &manifestOut); err != nil {
		return CorpusBuildResult{}, err
	}

	return CorpusBuildResult{
		BatchID:      input.BatchID,
		Records:      len(records),
		Degraded:     progress.Degraded,
		ManifestPath: manifestOut.Path,
	}, nil
}
