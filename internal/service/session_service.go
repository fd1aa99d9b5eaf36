package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"clipforge/internal/clips"
	"clipforge/internal/dto"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	apperrors "clipforge/pkg/errors"
	"clipforge/pkg/util"
)

// CreateSession opens a new empty editing session.
func (s *Service) CreateSession() (dto.CreateSessionResData, error) {
	sessionId := uuid.New().String()
	if err := storage.SaveSession(&types.SessionRecord{SessionId: sessionId}); err != nil {
		return dto.CreateSessionResData{}, apperrors.Wrap(apperrors.CodeDBError, apperrors.ErrDBError.Message, err)
	}
	return dto.CreateSessionResData{SessionId: sessionId}, nil
}

// GetSession returns the session's timeline in display form.
func (s *Service) GetSession(sessionId string) (dto.SessionResData, error) {
	col, err := s.loadCollection(sessionId)
	if err != nil {
		return dto.SessionResData{}, err
	}
	return s.sessionData(sessionId, col), nil
}

func (s *Service) loadCollection(sessionId string) (*clips.Collection, error) {
	session, err := storage.GetSession(sessionId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeDBError, apperrors.ErrDBError.Message, err)
	}

	rows, err := storage.ListClips(sessionId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, apperrors.ErrDBError.Message, err)
	}

	restored := lo.Map(rows, func(row types.ClipRecord, _ int) types.Clip {
		return types.ClipFromRecord(row)
	})
	return clips.NewCollection(restored, session.SelectedClipId), nil
}

func (s *Service) persistCollection(sessionId string, col *clips.Collection) error {
	if err := storage.ReplaceSessionClips(sessionId, col.Clips()); err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, apperrors.ErrDBError.Message, err)
	}
	if err := storage.SaveSession(&types.SessionRecord{
		SessionId:      sessionId,
		SelectedClipId: col.SelectedID(),
	}); err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, apperrors.ErrDBError.Message, err)
	}
	return nil
}

func (s *Service) sessionData(sessionId string, col *clips.Collection) dto.SessionResData {
	selected := col.SelectedID()
	items := lo.Map(col.Clips(), func(clip types.Clip, _ int) dto.ClipItem {
		return dto.NewClipItem(clip, clip.ID == selected)
	})

	total := col.TotalDuration()
	return dto.SessionResData{
		SessionId:         sessionId,
		SelectedClipId:    selected,
		TotalDuration:     total,
		TotalDurationText: util.FormatClock(total),
		ExportReady:       col.HasValidClips(),
		Clips:             items,
	}
}
