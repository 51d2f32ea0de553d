package domain

import "errors"

var (
	ErrDatabaseUnreachable     = errors.New("database unreachable")
	ErrBackupExecutionFailed   = errors.New("backup execution failed")
	ErrIntegrityCheckFailed    = errors.New("integrity check failed")
	ErrRetentionDeletionFailed = errors.New("retention deletion failed")
	ErrFatalStartup            = errors.New("fatal startup error")
)

// Event values for the "event" log field.
const (
	EventStartup             = "startup"
	EventWaiting             = "waiting"
	EventConnected           = "connected"
	EventCycleStarted        = "cycle-started"
	EventCycleFinished       = "cycle-finished"
	EventBackupStarted       = "backup-started"
	EventBackupCompleted     = "backup-completed"
	EventBackupFailed        = "backup-failed"
	EventIntegrityOK         = "integrity-ok"
	EventIntegrityFailed     = "integrity-failed"
	EventArtifactQuarantined = "artifact-quarantined"
	EventRetentionDeleted    = "retention-deleted"
	EventRetentionFailed     = "retention-failed"
	EventRetentionCompleted  = "retention-completed"
	EventCycleStats          = "cycle-stats"
	EventNotifyFailed        = "notify-failed"
	EventNextRun             = "next-run"
	EventShutdown            = "shutdown"
	EventPartialRemoved      = "partial-removed"
)
