package llm

import (
	"golang.org/x/sync/semaphore"
)

var (
	TextWeight   = int64(5)
	TextSem      = semaphore.NewWeighted(TextWeight)
	ImageWeight  = int64(2)
	ImageSem     = semaphore.NewWeighted(ImageWeight)
	SearchWeight = int64(3)
	SearchSem    = semaphore.NewWeighted(SearchWeight)
)
