package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ListCorpusPapersActivity)
	w.RegisterActivity(a.ProcessPaperActivity)
	w.RegisterActivity(a.SaveDatabaseActivity)
	w.RegisterActivity(a.WriteBuildManifestActivity)
}
