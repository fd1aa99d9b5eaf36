package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"clipforge/config"
	"clipforge/internal/dto"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
	"clipforge/pkg/util"
)

// StartExport validates the session's timeline and registers a new export
// job. The actual pipeline runs through the task runner; a session can only
// have one export in flight.
func (s *Service) StartExport(sessionId string) (dto.StartExportResData, error) {
	col, err := s.loadCollection(sessionId)
	if err != nil {
		return dto.StartExportResData{}, err
	}
	if col.Len() == 0 {
		return dto.StartExportResData{}, apperrors.ErrExportNoClips
	}
	if !col.HasValidClips() {
		return dto.StartExportResData{}, apperrors.ErrExportInvalidClips
	}

	jobId := uuid.New().String()
	total := col.Len() + 1 // one trim per clip plus the concatenation

	st, err := s.exportState().begin(sessionId, jobId, total)
	if err != nil {
		return dto.StartExportResData{}, err
	}

	if err := storage.SaveExportJob(lo.ToPtr(st.record())); err != nil {
		s.exportState().end(sessionId, jobId)
		return dto.StartExportResData{}, apperrors.Wrap(apperrors.CodeDBError, apperrors.ErrDBError.Message, err)
	}

	return dto.StartExportResData{JobId: jobId}, nil
}

// RunExport drives a registered job through the trim/concat pipeline. It is
// invoked by the task runner, never by handlers directly.
func (s *Service) RunExport(ctx context.Context, jobId string) error {
	st, ok := s.exportState().get(jobId)
	if !ok {
		return apperrors.ErrNotFound
	}
	defer s.exportState().end(st.sessionId, jobId)

	if err := s.runPipeline(ctx, st); err != nil {
		log.GetLogger().Error("export pipeline failed",
			zap.String("job_id", jobId),
			zap.String("session_id", st.sessionId),
			zap.Error(err))
		st.fail(apperrors.ErrExportFailed.Message)
		s.persistJob(st)
		return err
	}

	s.persistJob(st)
	return nil
}

func (s *Service) runPipeline(ctx context.Context, st *jobState) error {
	col, err := s.loadCollection(st.sessionId)
	if err != nil {
		return err
	}
	if col.Len() == 0 {
		return apperrors.ErrExportNoClips
	}
	if !col.HasValidClips() {
		return apperrors.ErrExportInvalidClips
	}

	eng, err := s.EnsureEngine(ctx)
	if err != nil {
		return err
	}

	observer := &exportObserver{state: st}
	runId := strings.ReplaceAll(uuid.New().String(), "-", "")
	timeline := col.Clips()

	st.setStage(types.ExportStageTrimming)
	segments := make([]string, 0, len(timeline))
	for i, clip := range timeline {
		data, err := os.ReadFile(clip.MediaPath)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeFileNotFound, apperrors.ErrFileNotFound.Message, err)
		}

		inName := fmt.Sprintf("%s_in_%d%s", runId, i, mediaExt(clip.MediaPath))
		if err := eng.WriteFile(inName, data); err != nil {
			return apperrors.Wrap(apperrors.CodeEngineStorage, "引擎存储写入失败 Engine storage write failed", err)
		}

		segName := fmt.Sprintf("%s_trim_%d.mp4", runId, i)
		if err := eng.Exec(ctx, trimOp(inName, segName, clip, observer)); err != nil {
			return apperrors.Wrap(apperrors.CodeEngineExec, "片段裁剪失败 Clip trim failed", err)
		}

		segments = append(segments, segName)
		st.advance(i + 1)
		s.persistJob(st)
	}

	manifestName := runId + "_concat.txt"
	if err := eng.WriteFile(manifestName, concatManifest(segments)); err != nil {
		return apperrors.Wrap(apperrors.CodeEngineStorage, "引擎存储写入失败 Engine storage write failed", err)
	}

	st.setStage(types.ExportStageConcatenating)
	finalName := runId + "_export.mp4"
	if err := eng.Exec(ctx, concatOp(manifestName, finalName, col.TotalDuration(), observer)); err != nil {
		return apperrors.Wrap(apperrors.CodeEngineExec, "片段合并失败 Clip concatenation failed", err)
	}
	st.advance(st.total)

	output, err := eng.ReadFile(finalName)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeEngineStorage, "引擎存储读取失败 Engine storage read failed", err)
	}

	// The file name inside the key doubles as the download attachment name.
	resultKey := st.sessionId + "/exports/" + st.jobId + "/montage.mp4"
	handle, err := s.Blobs.AcquireBytes(resultKey, output)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "导出结果写入失败 Failed to store export result", err)
	}

	// A newer result supersedes the session's previous one.
	if previous, had := s.exportState().swapResult(st.sessionId, resultKey); had && previous != resultKey {
		if old, ok := s.Blobs.Get(previous); ok {
			if err := old.Release(); err != nil {
				log.GetLogger().Warn("failed to release superseded export result",
					zap.String("session_id", st.sessionId),
					zap.String("key", previous),
					zap.Error(err))
			}
		}
	}

	st.succeed(resultKey, handle.Path())
	return nil
}

// ExportStatus reports a job's progress, falling back to the persisted row
// once the live state is gone (e.g. after a restart).
func (s *Service) ExportStatus(jobId string) (dto.ExportStatusResData, error) {
	if st, ok := s.exportState().get(jobId); ok {
		data := st.snapshot()
		s.fillDownloadUrl(&data)
		return data, nil
	}

	row, err := storage.GetExportJob(jobId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExportStatusResData{}, apperrors.ErrNotFound
		}
		return dto.ExportStatusResData{}, apperrors.Wrap(apperrors.CodeDBError, apperrors.ErrDBError.Message, err)
	}
	return statusFromRow(*row), nil
}

const exportHistoryLimit = 20

// ExportHistory lists a session's persisted export jobs, newest first.
func (s *Service) ExportHistory(sessionId string) (dto.ExportHistoryResData, error) {
	if _, err := s.loadCollection(sessionId); err != nil {
		return dto.ExportHistoryResData{}, err
	}

	rows, err := storage.GetExportHistory(sessionId, exportHistoryLimit)
	if err != nil {
		return dto.ExportHistoryResData{}, apperrors.Wrap(apperrors.CodeDBError, apperrors.ErrDBError.Message, err)
	}

	res := dto.ExportHistoryResData{Jobs: make([]dto.ExportStatusResData, 0, len(rows))}
	for _, row := range rows {
		// A job still in flight has fresher live state than its last
		// persisted snapshot.
		if st, ok := s.exportState().get(row.JobId); ok {
			data := st.snapshot()
			s.fillDownloadUrl(&data)
			res.Jobs = append(res.Jobs, data)
			continue
		}
		res.Jobs = append(res.Jobs, statusFromRow(row))
	}
	return res, nil
}

func statusFromRow(row types.ExportJob) dto.ExportStatusResData {
	data := dto.ExportStatusResData{
		JobId:          row.JobId,
		SessionId:      row.SessionId,
		Status:         row.Status,
		Stage:          row.Stage,
		ProcessPercent: row.ProcessPct,
		Step:           row.Step,
		Total:          row.Total,
		FailReason:     row.FailReason,
	}
	if row.LogTail != "" {
		data.LogTail = strings.Split(row.LogTail, "\n")
	}
	if row.Status == types.ExportJobStatusSuccess && row.OutputPath != "" {
		if rel, err := resolveDownloadPath(row.OutputPath); err == nil {
			data.DownloadUrl = "/api/file/" + rel
		}
	}
	return data
}

// CancelExport fails a registered job that never ran, e.g. when submission
// to the worker queue failed, and frees its session for the next attempt.
func (s *Service) CancelExport(jobId, reason string) {
	st, ok := s.exportState().get(jobId)
	if !ok {
		return
	}
	st.fail(reason)
	s.persistJob(st)
	s.exportState().end(st.sessionId, jobId)
}

// SubscribeExport attaches an event channel to a live job. The returned
// cancel must be called when the subscriber goes away.
func (s *Service) SubscribeExport(jobId string) (<-chan dto.ExportEvent, func(), error) {
	st, ok := s.exportState().get(jobId)
	if !ok {
		return nil, nil, apperrors.ErrNotFound
	}
	ch, cancel := st.subscribe()
	return ch, cancel, nil
}

func (s *Service) persistJob(st *jobState) {
	if err := storage.SaveExportJob(lo.ToPtr(st.record())); err != nil {
		log.GetLogger().Warn("failed to persist export job",
			zap.String("job_id", st.jobId),
			zap.Error(err))
	}
}

func (s *Service) fillDownloadUrl(data *dto.ExportStatusResData) {
	if data.ResultKey == "" {
		return
	}
	handle, ok := s.Blobs.Get(data.ResultKey)
	if !ok {
		return
	}
	if rel, err := resolveDownloadPath(handle.Path()); err == nil {
		data.DownloadUrl = "/api/file/" + rel
	}
}

type exportObserver struct {
	state *jobState
}

func (o *exportObserver) OnEngineLog(line string) {
	o.state.appendLog(line)
}

func (o *exportObserver) OnEngineProgress(fraction float64) {
	o.state.setSub(fraction)
}

func trimOp(inName, outName string, clip types.Clip, obs types.EngineObserver) types.EngineOp {
	export := config.Conf.Export
	return types.EngineOp{
		Observer: obs,
		Args: []string{
			"-i", inName,
			"-ss", util.FormatSeconds(clip.Start),
			"-t", util.FormatSeconds(clip.TrimmedSeconds()),
			"-vf", fmt.Sprintf("scale=%d:-2", export.MaxWidth),
			"-c:v", "libx264",
			"-preset", export.Preset,
			"-crf", strconv.Itoa(export.Crf),
			"-c:a", "aac",
			"-b:a", export.AudioBitrate,
			"-movflags", "+faststart",
			outName,
		},
		ExpectedSeconds: clip.TrimmedSeconds(),
	}
}

func concatOp(manifestName, outName string, totalSeconds float64, obs types.EngineObserver) types.EngineOp {
	return types.EngineOp{
		Observer: obs,
		Args: []string{
			"-f", "concat",
			"-safe", "0",
			"-i", manifestName,
			"-c", "copy",
			outName,
		},
		ExpectedSeconds: totalSeconds,
	}
}

// concatManifest renders the concat demuxer's file list. Segment names are
// engine-generated and never contain quotes.
func concatManifest(segments []string) []byte {
	var b strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&b, "file '%s'\n", seg)
	}
	return []byte(b.String())
}

func mediaExt(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ".mp4"
	}
	return ext
}
