package workflows

import (
	"context"
	"errors"
	"testing"

	"revmatch/internal/activities"
	"revmatch/internal/corpus"
	"revmatch/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerBuildActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "ListCorpusPapersActivity", func(context.Context, activities.ListCorpusPapersInput) (activities.ListCorpusPapersOutput, error) {
		return activities.ListCorpusPapersOutput{}, nil
	})
	registerActivityName(env, "ProcessPaperActivity", func(context.Context, activities.ProcessPaperInput) (activities.ProcessPaperOutput, error) {
		return activities.ProcessPaperOutput{}, nil
	})
	registerActivityName(env, "SaveDatabaseActivity", func(context.Context, activities.SaveDatabaseInput) error { return nil })
	registerActivityName(env, "WriteBuildManifestActivity", func(context.Context, activities.WriteBuildManifestInput) (activities.WriteBuildManifestOutput, error) {
		return activities.WriteBuildManifestOutput{}, nil
	})
}

func TestCorpusBuildWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(CorpusBuildWorkflow)
	registerBuildActivities(env)

	refs := []corpus.PaperRef{
		{Author: "alice", Paper: "alice__deep.pdf", Path: "/corpus/alice/deep.pdf"},
		{Author: "bob", Paper: "bob__survey.pdf", Path: "/corpus/bob/survey.pdf"},
	}
	env.OnActivity("ListCorpusPapersActivity", mock.Anything, activities.ListCorpusPapersInput{CorpusRoot: "/corpus"}).
		Return(activities.ListCorpusPapersOutput{Papers: refs}, nil)
	env.OnActivity("ProcessPaperActivity", mock.Anything, mock.Anything).
		Return(func(_ context.Context, in activities.ProcessPaperInput) (activities.ProcessPaperOutput, error) {
			return activities.ProcessPaperOutput{Record: models.PaperRecord{
				Author:  in.Ref.Author,
				Paper:   in.Ref.Paper,
				Focused: models.Embedding{Vector: []float32{0.1}},
				Full:    models.Embedding{Vector: []float32{0.2}},
			}}, nil
		})
	env.OnActivity("SaveDatabaseActivity", mock.Anything, mock.MatchedBy(func(in activities.SaveDatabaseInput) bool {
		return len(in.Records) == 2 && in.Records[0].Paper == "alice__deep.pdf" && in.Records[1].Paper == "bob__survey.pdf"
	})).Return(nil)
	env.OnActivity("WriteBuildManifestActivity", mock.Anything, mock.Anything).
		Return(activities.WriteBuildManifestOutput{Path: "/data/build_manifest.json"}, nil)

	env.ExecuteWorkflow(CorpusBuildWorkflow, CorpusBuildInput{BatchID: "batch1", CorpusRoot: "/corpus"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out CorpusBuildResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "batch1", out.BatchID)
	require.Equal(t, 2, out.Records)
	require.Equal(t, 0, out.Degraded)
	require.Equal(t, "/data/build_manifest.json", out.ManifestPath)
}

func TestCorpusBuildWorkflowDegradesFailedPaper(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(CorpusBuildWorkflow)
	registerBuildActivities(env)

	refs := []corpus.PaperRef{
		{Author: "alice", Paper: "alice__deep.pdf", Path: "/corpus/alice/deep.pdf"},
		{Author: "bob", Paper: "bob__broken.pdf", Path: "/corpus/bob/broken.pdf"},
	}
	env.OnActivity("ListCorpusPapersActivity", mock.Anything, mock.Anything).
		Return(activities.ListCorpusPapersOutput{Papers: refs}, nil)
	env.OnActivity("ProcessPaperActivity", mock.Anything, mock.Anything).
		Return(func(_ context.Context, in activities.ProcessPaperInput) (activities.ProcessPaperOutput, error) {
			if in.Ref.Author == "bob" {
				return activities.ProcessPaperOutput{}, errors.New("embedding provider unavailable")
			}
			return activities.ProcessPaperOutput{Record: models.PaperRecord{
				Author:  in.Ref.Author,
				Paper:   in.Ref.Paper,
				Focused: models.Embedding{Vector: []float32{0.1}},
			}}, nil
		})
	// The failed paper must still be saved, as a degraded record in its
	// enumeration position.
	env.OnActivity("SaveDatabaseActivity", mock.Anything, mock.MatchedBy(func(in activities.SaveDatabaseInput) bool {
		return len(in.Records) == 2 && in.Records[1].Paper == "bob__broken.pdf" && in.Records[1].Degraded()
	})).Return(nil)
	env.OnActivity("WriteBuildManifestActivity", mock.Anything, mock.Anything).
		Return(activities.WriteBuildManifestOutput{Path: "/data/build_manifest.json"}, nil)

	env.ExecuteWorkflow(CorpusBuildWorkflow, CorpusBuildInput{BatchID: "batch2", CorpusRoot: "/corpus"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out CorpusBuildResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, 2, out.Records)
	require.Equal(t, 1, out.Degraded)
}

func TestCorpusBuildWorkflowListFailureAborts(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(CorpusBuildWorkflow)
	registerBuildActivities(env)

	env.OnActivity("ListCorpusPapersActivity", mock.Anything, mock.Anything).
		Return(activities.ListCorpusPapersOutput{}, errors.New("corpus root not found"))

	env.ExecuteWorkflow(CorpusBuildWorkflow, CorpusBuildInput{BatchID: "batch3", CorpusRoot: "/missing"})
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}
