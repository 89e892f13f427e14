package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/site"
	"github.com/goliatone/go-contactform/pkg/submit"
)

const (
	// attachmentField is the multipart field carrying uploaded files.
	attachmentField    = "files"
	maxMultipartMemory = 32 << 20
)

// maxUploadBytes bounds one upload request: every allowed file plus room for
// the multipart framing.
const maxUploadBytes = int64(submit.MaxAttachments)*submit.MaxAttachmentSize + 1<<20

type attachmentView struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	SizeText string `json:"sizeText"`
}

type attachmentsResponse struct {
	Files  []attachmentView `json:"files"`
	Errors []string         `json:"errors,omitempty"`
}

func attachmentViews(files []model.Attachment) []attachmentView {
	out := make([]attachmentView, 0, len(files))
	for _, file := range files {
		out = append(out, attachmentView{
			Name:     file.Name,
			Size:     file.Size,
			SizeText: site.FormatFileSize(file.Size),
		})
	}
	return out
}

func (s *Server) handleAttachments(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	writeJSON(w, http.StatusOK, attachmentsResponse{Files: attachmentViews(ws.Controller.Attachments())})
}

func (s *Server) handleAttach(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Maximum %d files allowed.", submit.MaxAttachments))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var problems []string
	added := 0
	for _, header := range r.MultipartForm.File[attachmentField] {
		file, err := readAttachment(header)
		if err != nil {
			s.logger.Warn("read attachment", zap.Error(err))
			problems = append(problems, "Could not read \""+header.Filename+"\".")
			continue
		}
		if err := ws.Controller.Attach(file); err != nil {
			if errors.Is(err, submit.ErrInFlight) {
				writeError(w, http.StatusConflict, "the form is being sent")
				return
			}
			problems = append(problems, err.Error())
			continue
		}
		added++
	}

	status := http.StatusOK
	if added == 0 && len(problems) > 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, attachmentsResponse{
		Files:  attachmentViews(ws.Controller.Attachments()),
		Errors: problems,
	})
}

// readAttachment loads an uploaded file. Oversized files are returned without
// their content so the size rule can refuse them.
func readAttachment(header *multipart.FileHeader) (model.Attachment, error) {
	file := model.Attachment{
		Name:        filepath.Base(strings.ReplaceAll(header.Filename, "\\", "/")),
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}
	if file.Name == "." || file.Name == "/" {
		file.Name = ""
	}
	if header.Size > submit.MaxAttachmentSize {
		return file, nil
	}
	src, err := header.Open()
	if err != nil {
		return model.Attachment{}, fmt.Errorf("server: open upload: %w", err)
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, submit.MaxAttachmentSize+1))
	if err != nil {
		return model.Attachment{}, fmt.Errorf("server: read upload: %w", err)
	}
	file.Data = data
	return file, nil
}

func (s *Server) handleDetach(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file name")
		return
	}
	removed, err := ws.Controller.Detach(name)
	if errors.Is(err, submit.ErrInFlight) {
		writeError(w, http.StatusConflict, "the form is being sent")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "unknown file")
		return
	}
	writeJSON(w, http.StatusOK, attachmentsResponse{Files: attachmentViews(ws.Controller.Attachments())})
}
