package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"captioner/internal/captioning"
	"captioner/internal/domain"
)

const multipartMemoryLimit = 32 << 20

// Captions runs one captioning batch over an uploaded archive and streams the
// output archive back. Form fields mirror the batch options; absent fields
// fall back to configured defaults.
func (a *App) Captions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart request"})
		return
	}
	file, _, err := r.FormFile("archive")
	if err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "archive file is required"})
		return
	}
	defer func() {
		_ = file.Close()
	}()
	raw, err := io.ReadAll(file)
	if err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "failed to read archive upload"})
		return
	}

	opts := captioning.BatchOptions{
		Model:            r.FormValue("model"),
		CaptionPrefix:    r.FormValue("caption_prefix"),
		CaptionSuffix:    r.FormValue("caption_suffix"),
		Resize:           formBool(r, "resize_for_captioning", a.Cfg.ResizeImages),
		MaxDimension:     formInt(r, "max_dimension"),
		IncludeOriginals: formBool(r, "include_original_images", a.Cfg.IncludeOriginals),
		SystemPrompt:     r.FormValue("system_prompt"),
		UserPrompt:       r.FormValue("user_message_prompt"),
	}

	batch, err := a.Runner.Run(r.Context(), raw, opts)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrMissingCredential),
			errors.Is(err, domain.ErrUnsupportedModel),
			errors.Is(err, domain.ErrArchive):
			code = http.StatusBadRequest
		}
		a.Logger.Error().Err(err).Msg("captions: batch failed")
		a.json(w, code, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="captions_and_csv.zip"`)
	w.Header().Set("X-Batch-ID", batch.ID)
	w.Header().Set("X-Caption-Failures", strconv.Itoa(len(batch.Failures)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(batch.Archive); err != nil {
		a.Logger.Warn().Err(err).Str("batch_id", batch.ID).Msg("captions: writing response failed")
	}
}

func formBool(r *http.Request, key string, fallback bool) bool {
	v := r.FormValue(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func formInt(r *http.Request, key string) int {
	v := r.FormValue(key)
	if v == "" {
		return 0
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return i
}
