package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
	"github.com/dmitrijs2005/valuationdesk/internal/server/models"
	"github.com/dmitrijs2005/valuationdesk/internal/server/services"
)

func parseListQuery(r *http.Request) services.ListQuery {
	q := services.ListQuery{Status: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))}
	if v := strings.TrimSpace(r.URL.Query().Get("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Page = n
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Limit = n
		}
	}
	return q
}

func (s *Server) handleList(collection string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := s.records.List(r.Context(), principalFrom(r.Context()), collection, parseListQuery(r))
		if err != nil {
			s.respondError(r.Context(), w, err)
			return
		}

		docs := make([]map[string]any, 0, len(page.Records))
		for _, rec := range page.Records {
			docs = append(docs, rec.Document())
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    docs,
			"pagination": map[string]any{
				"page":       page.Page,
				"limit":      page.Limit,
				"total":      page.Total,
				"totalPages": page.TotalPages,
			},
		})
	})
}

func respondRecord(w http.ResponseWriter, rec *models.Record) {
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": rec.Document()})
}

func (s *Server) handleGet(collection string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, err := s.records.Get(r.Context(), principalFrom(r.Context()), collection, r.PathValue("id"))
		if err != nil {
			s.respondError(r.Context(), w, err)
			return
		}
		respondRecord(w, rec)
	})
}

func (s *Server) handleSave(collection string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var data map[string]any
		if err := decodeBody(r, &data); err != nil {
			s.respondError(r.Context(), w, err)
			return
		}
		uniqueID, _ := data["uniqueId"].(string)

		rec, err := s.records.Save(r.Context(), principalFrom(r.Context()), collection, uniqueID, data)
		if err != nil {
			s.respondError(r.Context(), w, err)
			return
		}
		respondRecord(w, rec)
	})
}

func (s *Server) handleSetStatus(collection string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Status string `json:"status"`
		}
		if err := decodeBody(r, &in); err != nil {
			s.respondError(r.Context(), w, err)
			return
		}

		p := principalFrom(r.Context())
		rec, err := s.records.SetStatus(r.Context(), p, collection, r.PathValue("id"), in.Status)
		if err != nil {
			s.respondError(r.Context(), w, err)
			return
		}
		s.log.Info(r.Context(), "record status changed",
			"collection", collection, "uniqueId", rec.UniqueID, "status", rec.Status, "by", p.Username)
		respondRecord(w, rec)
	})
}

func (s *Server) handleRework(collection string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			ReworkComments string `json:"reworkComments"`
		}
		if err := decodeBody(r, &in); err != nil {
			s.respondError(r.Context(), w, err)
			return
		}

		p := principalFrom(r.Context())
		rec, err := s.records.RequestRework(r.Context(), p, collection, r.PathValue("id"), in.ReworkComments)
		if err != nil {
			s.respondError(r.Context(), w, err)
			return
		}
		s.log.Info(r.Context(), "record sent to rework",
			"collection", collection, "uniqueId", rec.UniqueID, "by", p.Username)
		respondRecord(w, rec)
	})
}

func (s *Server) handlePresignUpload(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FileName string `json:"fileName"`
	}
	if err := decodeBody(r, &in); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	key, url, err := s.exports.PresignUpload(r.Context(), principalFrom(r.Context()), in.FileName)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url, "key": key})
}

func (s *Server) handlePresignDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		s.respondError(r.Context(), w, fmt.Errorf("%w: key is required", common.ErrorValidation))
		return
	}

	url, err := s.exports.PresignDownload(r.Context(), principalFrom(r.Context()), key)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
