package storage

import (
	"errors"

	"gorm.io/gorm"

	"clipforge/internal/types"
)

func SaveSession(session *types.SessionRecord) error {
	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing types.SessionRecord
	result := DB.Where("session_id = ?", session.SessionId).First(&existing)
	if result.Error == nil {
		session.Id = existing.Id
		return DB.Save(session).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(session).Error
	}
	return result.Error
}

func GetSession(sessionId string) (*types.SessionRecord, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var session types.SessionRecord
	if err := DB.Where("session_id = ?", sessionId).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func SaveClip(clip *types.ClipRecord) error {
	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing types.ClipRecord
	result := DB.Where("clip_id = ?", clip.ClipId).First(&existing)
	if result.Error == nil {
		clip.Id = existing.Id
		return DB.Save(clip).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(clip).Error
	}
	return result.Error
}

// ListClips returns a session's clips in timeline order.
func ListClips(sessionId string) ([]types.ClipRecord, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var clips []types.ClipRecord
	if err := DB.Where("session_id = ?", sessionId).Order("position asc").Find(&clips).Error; err != nil {
		return nil, err
	}
	return clips, nil
}

func GetClip(clipId string) (*types.ClipRecord, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var clip types.ClipRecord
	if err := DB.Where("clip_id = ?", clipId).First(&clip).Error; err != nil {
		return nil, err
	}
	return &clip, nil
}

func DeleteClip(clipId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Where("clip_id = ?", clipId).Delete(&types.ClipRecord{}).Error
}

// ReplaceSessionClips rewrites a session's clip rows to match the in-memory
// ordering in one transaction.
func ReplaceSessionClips(sessionId string, clips []types.Clip) error {
	if DB == nil {
		return errors.New("database not initialized")
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionId).Delete(&types.ClipRecord{}).Error; err != nil {
			return err
		}
		for i, clip := range clips {
			rec := types.RecordFromClip(clip, i)
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
