package storage

import (
	"errors"

	"gorm.io/gorm"

	"clipforge/internal/types"
)

func SaveExportJob(job *types.ExportJob) error {
	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing types.ExportJob
	result := DB.Where("job_id = ?", job.JobId).First(&existing)
	if result.Error == nil {
		job.Id = existing.Id
		return DB.Save(job).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(job).Error
	}
	return result.Error
}

func GetExportJob(jobId string) (*types.ExportJob, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var job types.ExportJob
	if err := DB.Where("job_id = ?", jobId).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func GetExportHistory(sessionId string, limit int) ([]types.ExportJob, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var jobs []types.ExportJob
	if err := DB.Where("session_id = ?", sessionId).Order("create_time desc, id desc").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkStaleJobs fails every export job still marked running. Called on
// startup to clean up jobs a previous process left behind.
func MarkStaleJobs() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&types.ExportJob{}).
		Where("status = ?", types.ExportJobStatusRunning).
		Updates(map[string]interface{}{
			"status":      types.ExportJobStatusFailed,
			"fail_reason": "服务重启，任务被中断 Job interrupted by server restart",
		})
	return result.RowsAffected, result.Error
}
