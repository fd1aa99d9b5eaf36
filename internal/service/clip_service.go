package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"clipforge/config"
	"clipforge/internal/clips"
	"clipforge/internal/dto"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
	"clipforge/pkg/util"
)

var videoExtensions = []string{".mp4", ".m4v", ".mov", ".mkv", ".webm", ".avi"}

func isVideoUpload(name, contentType string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "video/") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	return lo.Contains(videoExtensions, ext)
}

func maxUploadBytes() int64 {
	return config.Conf.App.MaxUploadMB * 1024 * 1024
}

// AddClips ingests a batch of uploaded files. Non-video and oversized files
// are rejected individually; the rest join the end of the timeline.
func (s *Service) AddClips(ctx context.Context, sessionId string, files []*multipart.FileHeader) (dto.AddClipsResData, error) {
	col, err := s.loadCollection(sessionId)
	if err != nil {
		return dto.AddClipsResData{}, err
	}

	res := dto.AddClipsResData{
		Added:    []dto.ClipItem{},
		Rejected: []dto.RejectedFile{},
	}
	var added []types.Clip

	for _, file := range files {
		contentType := file.Header.Get("Content-Type")
		if !isVideoUpload(file.Filename, contentType) {
			res.Rejected = append(res.Rejected, dto.RejectedFile{
				Name:   file.Filename,
				Reason: apperrors.ErrNotVideo.Message,
			})
			continue
		}
		if file.Size > maxUploadBytes() {
			res.Rejected = append(res.Rejected, dto.RejectedFile{
				Name:   file.Filename,
				Reason: apperrors.New(apperrors.CodeMediaTooLarge, "文件过大 File too large").Message,
			})
			continue
		}

		data, err := readUpload(file)
		if err != nil {
			res.Rejected = append(res.Rejected, dto.RejectedFile{Name: file.Filename, Reason: err.Error()})
			continue
		}

		clip, err := s.intakeClip(ctx, sessionId, file.Filename, data)
		if err != nil {
			log.GetLogger().Warn("clip intake failed",
				zap.String("session_id", sessionId),
				zap.String("file", file.Filename),
				zap.Error(err))
			res.Rejected = append(res.Rejected, dto.RejectedFile{
				Name:   file.Filename,
				Reason: apperrors.GetMessage(err),
			})
			continue
		}

		col.Add(clip)
		added = append(added, clip)
	}

	if len(added) > 0 {
		if err := s.persistCollection(sessionId, col); err != nil {
			return dto.AddClipsResData{}, err
		}
	}

	selected := col.SelectedID()
	for _, clip := range added {
		res.Added = append(res.Added, dto.NewClipItem(clip, clip.ID == selected))
	}
	return res, nil
}

// AddClipFromURL downloads a remote video and appends it to the timeline.
func (s *Service) AddClipFromURL(ctx context.Context, sessionId string, req dto.AddClipFromURLReq) (dto.ClipItem, error) {
	col, err := s.loadCollection(sessionId)
	if err != nil {
		return dto.ClipItem{}, err
	}

	resp, err := s.HttpClient.R().SetContext(ctx).Get(req.Url)
	if err != nil {
		return dto.ClipItem{}, apperrors.Wrap(apperrors.CodeMediaDownload, apperrors.ErrMediaDownload.Message, err)
	}
	if resp.StatusCode() != 200 {
		return dto.ClipItem{}, apperrors.WrapWithDetail(apperrors.CodeMediaDownload, apperrors.ErrMediaDownload.Message,
			fmt.Sprintf("status %d", resp.StatusCode()), nil)
	}

	name := req.Name
	if name == "" {
		name = nameFromURL(req.Url)
	}
	if !isVideoUpload(name, resp.Header().Get("Content-Type")) {
		return dto.ClipItem{}, apperrors.ErrNotVideo
	}

	body := resp.Body()
	if int64(len(body)) > maxUploadBytes() {
		return dto.ClipItem{}, apperrors.New(apperrors.CodeMediaTooLarge, "文件过大 File too large")
	}

	clip, err := s.intakeClip(ctx, sessionId, name, body)
	if err != nil {
		return dto.ClipItem{}, err
	}

	col.Add(clip)
	if err := s.persistCollection(sessionId, col); err != nil {
		return dto.ClipItem{}, err
	}
	return dto.NewClipItem(clip, clip.ID == col.SelectedID()), nil
}

// intakeClip stores the media bytes under a preview handle, probes the
// duration and builds the clip with a full trim window.
func (s *Service) intakeClip(ctx context.Context, sessionId, name string, data []byte) (types.Clip, error) {
	clipId := util.GenerateClipID()
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".mp4"
	}

	key := sessionId + "/" + clipId + ext
	handle, err := s.Blobs.AcquireBytes(key, data)
	if err != nil {
		return types.Clip{}, apperrors.Wrap(apperrors.CodeFileWriteError, "媒体写入失败 Failed to store media", err)
	}

	// An unreadable duration does not reject the clip: whether the engine
	// fails to load or the probe fails, the clip joins with a collapsed
	// window and blocks export until fixed or removed.
	var duration float64
	if eng, err := s.EnsureEngine(ctx); err != nil {
		log.GetLogger().Warn("media engine unavailable at intake",
			zap.String("clip", name),
			zap.Error(err))
	} else if duration, err = eng.ProbeDuration(ctx, handle.Path()); err != nil {
		log.GetLogger().Warn("duration probe failed",
			zap.String("clip", name),
			zap.Error(err))
		duration = 0
	}

	return types.Clip{
		ID:         clipId,
		SessionID:  sessionId,
		Name:       name,
		MediaPath:  handle.Path(),
		PreviewKey: handle.Key(),
		Duration:   duration,
		Start:      0,
		End:        duration,
	}, nil
}

// UpdateClip applies a partial trim-window patch.
func (s *Service) UpdateClip(clipId string, req dto.UpdateClipReq) (dto.ClipItem, error) {
	sessionId, col, err := s.loadClipSession(clipId)
	if err != nil {
		return dto.ClipItem{}, err
	}

	patch := types.WindowPatch{Duration: req.Duration, Start: req.Start, End: req.End}
	if !col.Update(clipId, patch) {
		return dto.ClipItem{}, apperrors.ErrNotFound
	}
	if err := s.persistCollection(sessionId, col); err != nil {
		return dto.ClipItem{}, err
	}

	clip, _ := col.Get(clipId)
	return dto.NewClipItem(clip, clip.ID == col.SelectedID()), nil
}

// RemoveClip deletes the clip, releases its preview handle and forgets its
// playhead position.
func (s *Service) RemoveClip(clipId string) (dto.SessionResData, error) {
	sessionId, col, err := s.loadClipSession(clipId)
	if err != nil {
		return dto.SessionResData{}, err
	}

	removed, ok := col.Remove(clipId)
	if !ok {
		return dto.SessionResData{}, apperrors.ErrNotFound
	}

	if handle, ok := s.Blobs.Get(removed.PreviewKey); ok {
		if err := handle.Release(); err != nil {
			log.GetLogger().Warn("failed to release preview handle",
				zap.String("clip_id", clipId),
				zap.String("key", removed.PreviewKey),
				zap.Error(err))
		}
	}
	s.Playheads.Clear(clipId)

	if err := s.persistCollection(sessionId, col); err != nil {
		return dto.SessionResData{}, err
	}
	return s.sessionData(sessionId, col), nil
}

// MoveClip shifts the clip one position up or down the timeline. Moves past
// a boundary leave the order unchanged.
func (s *Service) MoveClip(clipId string, direction string) (dto.SessionResData, error) {
	dir := types.MoveDirection(strings.ToLower(strings.TrimSpace(direction)))
	if dir != types.MoveUp && dir != types.MoveDown {
		return dto.SessionResData{}, apperrors.ErrInvalidParams
	}

	sessionId, col, err := s.loadClipSession(clipId)
	if err != nil {
		return dto.SessionResData{}, err
	}

	if col.Move(clipId, dir) {
		if err := s.persistCollection(sessionId, col); err != nil {
			return dto.SessionResData{}, err
		}
	}
	return s.sessionData(sessionId, col), nil
}

// ReportPlayhead records the last playback position of a clip's preview.
func (s *Service) ReportPlayhead(clipId string, seconds float64) error {
	if _, err := storage.GetClip(clipId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(apperrors.CodeDBError, apperrors.ErrDBError.Message, err)
	}
	if seconds < 0 {
		seconds = 0
	}
	s.Playheads.Report(clipId, seconds)
	return nil
}

// SetBoundaryFromPlayhead moves the clip's start or end edge to the last
// reported playhead position. With no reported position the clip is
// returned unchanged.
func (s *Service) SetBoundaryFromPlayhead(clipId string, edge string) (dto.ClipItem, error) {
	field := types.BoundaryField(strings.ToLower(strings.TrimSpace(edge)))
	if field != types.BoundaryStart && field != types.BoundaryEnd {
		return dto.ClipItem{}, apperrors.ErrInvalidParams
	}

	pos, ok := s.Playheads.Position(clipId)
	if !ok {
		return s.UpdateClip(clipId, dto.UpdateClipReq{})
	}

	patch := dto.UpdateClipReq{}
	if field == types.BoundaryStart {
		patch.Start = &pos
	} else {
		patch.End = &pos
	}
	return s.UpdateClip(clipId, patch)
}

func (s *Service) loadClipSession(clipId string) (string, *clips.Collection, error) {
	rec, err := storage.GetClip(clipId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.ErrNotFound
		}
		return "", nil, apperrors.Wrap(apperrors.CodeDBError, apperrors.ErrDBError.Message, err)
	}

	col, err := s.loadCollection(rec.SessionId)
	if err != nil {
		return "", nil, err
	}
	return rec.SessionId, col, nil
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("打开上传文件失败 failed to open upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func nameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "remote.mp4"
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "remote.mp4"
	}
	return name
}
