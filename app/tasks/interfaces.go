package tasks

import (
	"context"

	"github.com/benbrougher/benbrougher-tech/app/content"
)

// TaskSchedulerInterface is how the rest of the application drives
// background post syncing.
//
//	scheduler := NewScheduler(loader, postRepo, nil, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueSync()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueSync() (string, error)
}

// PostLoader reads the post sources from disk.
type PostLoader interface {
	Run(ctx context.Context) ([]content.Post, error)
	Dir() string
}
