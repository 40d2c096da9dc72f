package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/promoavail/internal/apperrors"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/mw"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/respond"
	"github.com/MrSnakeDoc/promoavail/internal/ingest"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
	"github.com/MrSnakeDoc/promoavail/internal/utils"
)

type refreshResponse struct {
	Status     string `json:"status"`
	Products   int    `json:"products"`
	Synonyms   int    `json:"synonyms"`
	New        int    `json:"new"`
	Updated    int    `json:"updated"`
	Unchanged  int    `json:"unchanged"`
	Removed    int    `json:"removed"`
	DurationMs int64  `json:"durationMs"`
}

// Refresh handles POST /api/admin/refresh. The previous snapshot stays live on failure.
func Refresh(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditAdmin(d, r, "refresh")

		res, err := d.Refresher.Refresh(r.Context())
		if err != nil {
			respond.Error(w, r, d.Logger, apperrors.Upstream("catalog refresh failed, previous catalog still served", err))
			return
		}
		respond.JSON(w, http.StatusOK, refreshResponse{
			Status:     "refreshed",
			Products:   res.Products,
			Synonyms:   res.Synonyms,
			New:        res.Stats.New,
			Updated:    res.Stats.Updated,
			Unchanged:  res.Stats.Unchanged,
			Removed:    res.Stats.Removed,
			DurationMs: res.Duration.Milliseconds(),
		})
	}
}

// Ingest handles POST /api/admin/ingest with a multipart "file" field.
// dryRun may come from the query string or a form field.
func Ingest(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Importer == nil {
			respond.Code(w, http.StatusNotFound, apperrors.CodeNotFound, "ingestion is not enabled")
			return
		}
		auditAdmin(d, r, "ingest")

		if d.MaxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, d.MaxUploadBytes)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respond.Error(w, r, d.Logger, apperrors.Validation("upload exceeds %d bytes", tooLarge.Limit))
				return
			}
			respond.Error(w, r, d.Logger, apperrors.Validation("multipart field \"file\" is required"))
			return
		}
		defer utils.CloseLogged(file, "upload", d.Logger)

		dryRun := false
		if raw := r.FormValue("dryRun"); raw != "" {
			if dryRun, err = strconv.ParseBool(raw); err != nil {
				respond.Error(w, r, d.Logger, apperrors.Validation("dryRun must be a boolean"))
				return
			}
		}

		report, err := d.Importer.Import(r.Context(), header.Filename, file, ingest.Options{DryRun: dryRun})
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, report)
	}
}

type flushResponse struct {
	Deleted int `json:"deleted"`
}

// FlushCache handles POST /api/admin/cache/flush
func FlushCache(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.CacheFlusher == nil {
			respond.Code(w, http.StatusNotFound, apperrors.CodeNotFound, "extraction cache is not configured")
			return
		}
		auditAdmin(d, r, "cache_flush")

		n, err := d.CacheFlusher.FlushExtractions(r.Context())
		if err != nil {
			respond.Error(w, r, d.Logger, apperrors.Upstream("could not flush the extraction cache", err))
			return
		}
		respond.JSON(w, http.StatusOK, flushResponse{Deleted: n})
	}
}

func auditAdmin(d deps.Deps, r *http.Request, action string) {
	subject := "unknown"
	if p, ok := mw.PrincipalFrom(r.Context()); ok {
		subject = p.Subject
	}
	d.Logger.Info("admin action",
		logger.String("action", action),
		logger.String("principal", subject),
		logger.String("client_ip", utils.ClientIP(r, d.TrustProxy)))
}
