package batch

import (
	"github.com/robfig/cron/v3"
)

// Scheduler is the part of *cron.Cron jobs register against.
type Scheduler interface {
	AddFunc(spec string, cmd func()) (cron.EntryID, error)
}

var _ Scheduler = (*cron.Cron)(nil)
