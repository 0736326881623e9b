package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/burnsub/burnsub/pkg/caption"
	"github.com/burnsub/burnsub/pkg/logger"
	"github.com/burnsub/burnsub/pkg/media"
	"github.com/burnsub/burnsub/pkg/pipeline"
	"github.com/burnsub/burnsub/pkg/session"
)

// Request headers carrying session routing, mirroring the upload client
const (
	headerSessionID        = "X-Session-Id"
	headerVideoFilename    = "X-Video-Filename"
	headerSubtitleFilename = "X-Subtitle-Filename"
)

// Handlers serves the captioning API over session workspaces
type Handlers struct {
	sessions       *session.Store
	pipeline       pipeline.Pipeline
	maxUploadBytes int64
}

// NewHandlers creates the API handlers
func NewHandlers(sessions *session.Store, pipe pipeline.Pipeline, maxUploadMB int64) *Handlers {
	if maxUploadMB <= 0 {
		maxUploadMB = 512
	}
	return &Handlers{
		sessions:       sessions,
		pipeline:       pipe,
		maxUploadBytes: maxUploadMB << 20,
	}
}

// Health reports service liveness
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Backend is running",
	})
}

// Upload stores a video file in the caller's session workspace under a
// fresh opaque name
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).WithComponent("upload")

	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse upload form.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A video file is required.")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "video/") {
		writeError(w, http.StatusBadRequest, "Only video files are allowed.")
		return
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".mp4"
	}
	videoID := uuid.NewString()
	name := videoID + ext

	savedPath, err := ws.Path(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filename.")
		return
	}

	out, err := os.Create(savedPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create upload file")
		writeError(w, http.StatusInternalServerError, "Failed to store upload.")
		return
	}
	defer out.Close()

	written, err := io.Copy(out, file)
	if err != nil {
		_ = os.Remove(savedPath)
		log.Error().Err(err).Msg("Failed to write upload file")
		writeError(w, http.StatusInternalServerError, "Failed to store upload.")
		return
	}

	log.Info().
		Str("session_id", ws.ID).
		Str("filename", name).
		Int64("size_bytes", written).
		Msg("Video uploaded")

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"message":  "Video uploaded successfully.",
		"video_id": videoID,
		"filename": name,
	})
}

// GenerateCaptions runs audio extraction and chunked transcription,
// writing the subtitle file into the session workspace
func (h *Handlers) GenerateCaptions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).WithComponent("captions")

	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	videoPath, ok := h.workspaceFile(w, ws, r.Header.Get(headerVideoFilename), "Video not found for this session.")
	if !ok {
		return
	}

	subtitlePath, err := h.pipeline.ExtractAndTranscribe(r.Context(), videoPath, ws)
	if err != nil {
		log.Error().Err(err).Str("session_id", ws.ID).Msg("Caption generation failed")
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"message":       "Subtitles generated successfully.",
		"subtitle_file": filepath.Base(subtitlePath),
	})
}

// GenerateCaptionedVideo burns the subtitle file into the video with the
// requested style
func (h *Handlers) GenerateCaptionedVideo(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).WithComponent("burn")

	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	videoPath, ok := h.workspaceFile(w, ws, r.Header.Get(headerVideoFilename), "Video not found.")
	if !ok {
		return
	}
	subtitlePath, ok := h.workspaceFile(w, ws, r.Header.Get(headerSubtitleFilename), "Subtitle file not found.")
	if !ok {
		return
	}

	// Malformed style values degrade to defaults; they never fail the
	// request.
	styleInput := caption.StyleInput{
		FontSize:  r.FormValue("font_size"),
		FontColor: r.FormValue("font_color"),
	}

	outputPath, err := h.pipeline.Burn(r.Context(), videoPath, subtitlePath, styleInput, ws, "")
	if err != nil {
		log.Error().Err(err).Str("session_id", ws.ID).Msg("Caption burn failed")
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"message":     "Captioned video generated successfully.",
		"output_file": filepath.Base(outputPath),
	})
}

// Download streams a file out of the session workspace
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	filename := r.URL.Query().Get("filename")
	if sessionID == "" || filename == "" {
		writeError(w, http.StatusBadRequest, "session_id and filename are required.")
		return
	}

	ws, err := h.sessions.Workspace(sessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session id.")
		return
	}

	filePath, ok := h.workspaceFile(w, ws, filename, "File not found.")
	if !ok {
		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": filename,
	}))
	http.ServeFile(w, r, filePath)
}

// workspace resolves the caller's session workspace from the request
func (h *Handlers) workspace(w http.ResponseWriter, r *http.Request) (*session.Workspace, bool) {
	sessionID := r.Header.Get(headerSessionID)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, headerSessionID+" header is required.")
		return nil, false
	}
	ws, err := h.sessions.Workspace(sessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session id.")
		return nil, false
	}
	return ws, true
}

// workspaceFile resolves a filename within the workspace and requires it
// to exist
func (h *Handlers) workspaceFile(w http.ResponseWriter, ws *session.Workspace, name, missingMsg string) (string, bool) {
	if name == "" {
		writeError(w, http.StatusBadRequest, "Filename is required.")
		return "", false
	}
	path, err := ws.Path(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filename.")
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, missingMsg)
		return "", false
	}
	return path, true
}

// writePipelineError maps pipeline failures to user-facing statuses.
// Timeouts get their own message so the caller can suggest a shorter
// video rather than a broken one.
func writePipelineError(w http.ResponseWriter, err error) {
	var timeoutErr *media.TimeoutError
	if errors.As(err, &timeoutErr) {
		writeError(w, http.StatusGatewayTimeout, "Processing timed out. Try a shorter video.")
		return
	}
	var procErr *media.ProcessingError
	if errors.As(err, &procErr) {
		writeError(w, http.StatusUnprocessableEntity, "Video processing failed.")
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal server error.")
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
