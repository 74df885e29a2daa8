package handler

import (
	"encoding/json"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Collections ---

type collectionRequest struct {
	Name string `json:"name" validate:"notblank"`
}

type collectionResponse struct {
	Message    string             `json:"message"`
	Collection *domain.Collection `json:"collection"`
}

type collectionListResponse struct {
	Message     string              `json:"message"`
	Collections []domain.Collection `json:"collections"`
	Count       int                 `json:"count"`
}

// collectionDetail always renders requests, even when empty.
type collectionDetail struct {
	domain.Collection
	Requests []domain.APIRequest `json:"requests"`
}

type collectionDetailResponse struct {
	Message    string           `json:"message"`
	Collection collectionDetail `json:"collection"`
}

// --- Saved requests ---

type createRequestBody struct {
	Name           string            `json:"name"`
	URL            string            `json:"url"`
	Method         string            `json:"method"`
	Headers        map[string]string `json:"headers"`
	Authentication *domain.AuthSpec  `json:"authentication"`
	Body           json.RawMessage   `json:"body" swaggertype:"object"`
}

// updateRequestBody is decoded by hand so absent and null fields can be told apart.
type updateRequestBody struct {
	Name           *string           `json:"name"`
	URL            *string           `json:"url"`
	Method         *string           `json:"method"`
	Headers        map[string]string `json:"headers"`
	Authentication *domain.AuthSpec  `json:"authentication"`
	Body           json.RawMessage   `json:"body" swaggertype:"object"`
}

type apiResponse struct {
	Message string             `json:"message"`
	API     *domain.APIRequest `json:"api"`
}

type apiListResponse struct {
	Message string              `json:"message"`
	API     []domain.APIRequest `json:"api"`
	Count   int                 `json:"count"`
}

type apiUpdatedResponse struct {
	Message    string             `json:"message"`
	UpdatedAPI *domain.APIRequest `json:"updatedApi"`
}

// --- Execute ---

type executeRequest struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Auth    *domain.AuthSpec  `json:"auth"`
	Body    json.RawMessage   `json:"body" swaggertype:"object"`
}

type executeMetadata struct {
	Duration    string `json:"duration"`
	DurationMs  int64  `json:"durationMs"`
	Size        int64  `json:"size"`
	SizeHuman   string `json:"sizeHuman"`
	Truncated   bool   `json:"truncated,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Timestamp   string `json:"timestamp"`
	ExecutionID string `json:"executionId"`
}

type executeResponse struct {
	Success      bool              `json:"success"`
	StatusCode   int               `json:"statusCode"`
	StatusText   string            `json:"statusText"`
	Headers      map[string]string `json:"headers"`
	Data         json.RawMessage   `json:"data" swaggertype:"object"`
	DataEncoding string            `json:"dataEncoding,omitempty"`
	Metadata     executeMetadata   `json:"metadata"`
}

type executeFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}
