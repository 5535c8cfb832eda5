package storage

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// UploadInput representa uma operação de upload simples.
type UploadInput struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

// UploadResult descreve o artefato persistido. URL é a referência opaca que
// o núcleo guarda como evidência; os bytes nunca voltam a ser lidos por aqui.
type UploadResult struct {
	URL  string
	ETag string
}

// Uploader define comportamento básico para armazenar blobs de evidência.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}

// EvidenceKey monta chave única para o arquivo de evidência enviado.
func EvidenceKey(filename string) string {
	sanitized := strings.ReplaceAll(strings.TrimSpace(filename), " ", "-")
	if sanitized == "" {
		sanitized = "arquivo"
	}
	return "evidencias/" + uuid.NewString() + "-" + sanitized
}
