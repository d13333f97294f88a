package engine

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// InitializeSchedules starts all the cron jobs (currently just one)
func (serverHandler *ServerHandler) InitializeSchedules() {
	interval := serverHandler.ServerConfig.GenerateInterval
	if interval <= 0 {
		Logger.Info("No generation interval configured, scheduled batches disabled")
		return
	}

	// Run a batch immediately at startup in a goroutine
	Logger.Info("Running batch generation at startup")
	go serverHandler.batchJobFunc()

	c := cron.New()
	var batchJob cron.Job
	batchJob = cron.FuncJob(func() { serverHandler.batchJobFunc() })
	batchJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(batchJob) //ensure we don't kick off another if old one is still running
	c.AddJob(fmt.Sprintf("@every %dm", interval), batchJob)
	Logger.Info("Adding batch generation scheduler", "interval_minutes", interval)
	c.Start()
}
