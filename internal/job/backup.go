package job

import (
	"context"
	"fmt"

	"github.com/HardPulse/mazpan/internal/backup"
)

// BackupJob snapshots the database on a schedule.
type BackupJob struct {
	backups *backup.Service
}

func NewBackupJob(backups *backup.Service) *BackupJob {
	return &BackupJob{backups: backups}
}

func (j *BackupJob) Name() string { return "database.backup" }

func (j *BackupJob) Run(ctx context.Context) error {
	if j == nil || j.backups == nil {
		return fmt.Errorf("backup job dependencies not configured / 备份任务依赖未配置")
	}
	_, err := j.backups.Run(ctx)
	return err
}
