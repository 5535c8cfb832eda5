package http

import (
	"io"
	"net/http"

	"github.com/i9parcerias/demandas/internal/storage"
)

// Limite de 10 MiB por evidência.
const maxUploadBytes = 10 << 20

// Upload recebe arquivo de evidência multipart e devolve a URL persistida.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "arquivo inválido ou grande demais", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "campo file é obrigatório", nil)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "não foi possível ler o arquivo", nil)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.uploader.Upload(r.Context(), storage.UploadInput{
		Key:         storage.EvidenceKey(header.Filename),
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"url": result.URL})
}
