package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anadolubroker/sigorta-backend/api/middleware"
	"github.com/anadolubroker/sigorta-backend/api/responses"
	"github.com/anadolubroker/sigorta-backend/internal/documents"
	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgerrors "github.com/anadolubroker/sigorta-backend/pkg/errors"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
)

type documentView struct {
	ID          int64                  `json:"id"`
	Category    enums.DocumentCategory `json:"category"`
	DisplayName string                 `json:"display_name"`
	FileName    string                 `json:"file_name"`
	FileURL     string                 `json:"file_url"`
	FileType    enums.FileType         `json:"file_type"`
	FileSize    *int64                 `json:"file_size,omitempty"`
	Status      enums.DocumentStatus   `json:"status"`
	CustomerID  *int64                 `json:"customer_id,omitempty"`
	PolicyID    *int64                 `json:"policy_id,omitempty"`
	UploadedAt  time.Time              `json:"uploaded_at"`
}

func newDocumentView(doc models.Document) documentView {
	return documentView{
		ID:          doc.ID,
		Category:    doc.Category,
		DisplayName: doc.Category.DisplayName(),
		FileName:    doc.FileName,
		FileURL:     doc.FileURL,
		FileType:    doc.FileType,
		FileSize:    doc.FileSize,
		Status:      doc.Status,
		CustomerID:  doc.CustomerID,
		PolicyID:    doc.PolicyID,
		UploadedAt:  doc.UploadedAt,
	}
}

// DocumentList returns documents visible to the actor, optionally
// filtered by customer or policy.
func DocumentList(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		params := documents.ListParams{}
		if id, err := optionalQueryID(r, "customer_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if id != nil {
			params.CustomerID = id
		}
		if id, err := optionalQueryID(r, "policy_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if id != nil {
			params.PolicyID = id
		}

		rows, err := svc.ListDocuments(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]documentView, 0, len(rows))
		for _, doc := range rows {
			views = append(views, newDocumentView(doc))
		}
		responses.WriteSuccess(w, views)
	}
}

func optionalQueryID(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a positive id").WithDetails(map[string]any{"field": key})
	}
	return &id, nil
}
