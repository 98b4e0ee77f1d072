package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"captioner/internal/captioning"
	"captioner/internal/domain"
	"captioner/internal/infra"
)

type fakeRunner struct {
	run func(ctx context.Context, raw []byte, opts captioning.BatchOptions) (*captioning.BatchResult, error)
}

func (f fakeRunner) Run(ctx context.Context, raw []byte, opts captioning.BatchOptions) (*captioning.BatchResult, error) {
	return f.run(ctx, raw, opts)
}

func testApp(runner BatchRunner) *App {
	cfg := &infra.Config{
		ResizeImages:   true,
		MaxUploadBytes: 8 << 20,
	}
	return NewApp(cfg, zerolog.Nop(), runner)
}

func multipartRequest(t *testing.T, fields map[string]string, archive []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if archive != nil {
		fw, err := mw.CreateFormFile("archive", "images.zip")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(archive); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/captions", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCaptionsReturnsArchive(t *testing.T) {
	var gotOpts captioning.BatchOptions
	var gotRaw []byte
	app := testApp(fakeRunner{run: func(ctx context.Context, raw []byte, opts captioning.BatchOptions) (*captioning.BatchResult, error) {
		gotRaw = raw
		gotOpts = opts
		return &captioning.BatchResult{
			ID:      "batch-1",
			Archive: []byte("zip-bytes"),
			Rows:    []domain.ManifestRow{{Caption: "a dog", ImageFile: "dog.png"}},
			Failures: []captioning.Failure{
				{Filename: "cat.png", Attempts: 3, Reason: "exhausted"},
			},
		}, nil
	}})

	req := multipartRequest(t, map[string]string{
		"model":                   "claude-3-haiku",
		"caption_prefix":          "TOK",
		"resize_for_captioning":   "false",
		"max_dimension":           "512",
		"include_original_images": "true",
	}, []byte("fake zip"))
	rec := httptest.NewRecorder()
	app.Captions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if string(gotRaw) != "fake zip" {
		t.Fatalf("runner received %q", gotRaw)
	}
	if gotOpts.Model != "claude-3-haiku" || gotOpts.CaptionPrefix != "TOK" {
		t.Fatalf("opts = %#v", gotOpts)
	}
	if gotOpts.Resize || gotOpts.MaxDimension != 512 || !gotOpts.IncludeOriginals {
		t.Fatalf("opts = %#v", gotOpts)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/zip" {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("X-Batch-ID"); got != "batch-1" {
		t.Fatalf("X-Batch-ID = %q", got)
	}
	if got := rec.Header().Get("X-Caption-Failures"); got != "1" {
		t.Fatalf("X-Caption-Failures = %q", got)
	}
	if rec.Body.String() != "zip-bytes" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestCaptionsDefaultsResizeFromConfig(t *testing.T) {
	var gotOpts captioning.BatchOptions
	app := testApp(fakeRunner{run: func(ctx context.Context, raw []byte, opts captioning.BatchOptions) (*captioning.BatchResult, error) {
		gotOpts = opts
		return &captioning.BatchResult{ID: "batch-2", Archive: []byte("zip")}, nil
	}})

	req := multipartRequest(t, nil, []byte("fake zip"))
	rec := httptest.NewRecorder()
	app.Captions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !gotOpts.Resize {
		t.Fatal("resize default not taken from config")
	}
}

func TestCaptionsRequiresArchive(t *testing.T) {
	app := testApp(fakeRunner{run: func(ctx context.Context, raw []byte, opts captioning.BatchOptions) (*captioning.BatchResult, error) {
		t.Fatal("runner must not be called")
		return nil, nil
	}})

	req := multipartRequest(t, map[string]string{"model": "gpt-4o"}, nil)
	rec := httptest.NewRecorder()
	app.Captions(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCaptionsMapsBatchErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: no openai api key configured", domain.ErrMissingCredential), http.StatusBadRequest},
		{fmt.Errorf("%w: %q", domain.ErrUnsupportedModel, "mistral"), http.StatusBadRequest},
		{fmt.Errorf("%w: zip: not a valid zip file", domain.ErrArchive), http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		app := testApp(fakeRunner{run: func(ctx context.Context, raw []byte, opts captioning.BatchOptions) (*captioning.BatchResult, error) {
			return nil, tc.err
		}})
		req := multipartRequest(t, nil, []byte("fake zip"))
		rec := httptest.NewRecorder()
		app.Captions(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("status for %v = %d, want %d", tc.err, rec.Code, tc.want)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		if body["error"] == "" {
			t.Fatal("error body missing message")
		}
	}
}
