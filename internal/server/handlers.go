package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/tayloree/skinrec/internal/catalog"
	"github.com/tayloree/skinrec/internal/detect"
	"github.com/tayloree/skinrec/internal/display"
	"github.com/tayloree/skinrec/internal/metrics"
	"github.com/tayloree/skinrec/internal/recommend"
	"github.com/tayloree/skinrec/internal/request"
)

type healthResponse struct {
	Status   string `json:"status"`
	Products int    `json:"products"`
	Version  uint64 `json:"version"`
}

type detectResponse struct {
	Concerns []string `json:"concerns"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Fields  []request.FieldError `json:"fields,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	c := s.store.Load()
	if c == nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "loading"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Products: c.Len(), Version: s.store.Version()})
}

func (s *Server) handleConcerns(w http.ResponseWriter, _ *http.Request) {
	c, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, display.Concerns(c))
}

func (s *Server) handleRecommendationsGet(w http.ResponseWriter, r *http.Request) {
	req, err := request.FromValues(r.URL.Query())
	if err != nil {
		writeRequestError(w, err)
		return
	}
	s.recommend(w, req)
}

func (s *Server) handleRecommendationsPost(w http.ResponseWriter, r *http.Request) {
	var req request.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "request body must be a JSON object: "+err.Error(), nil)
		return
	}
	s.recommend(w, req)
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", "image exceeds upload limit", nil)
		return
	}
	img, err := detect.Decode(body)
	if err != nil {
		if errors.Is(err, detect.ErrUnsupportedImage) {
			writeError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_IMAGE", "upload a JPEG, PNG or GIF image", nil)
			return
		}
		writeError(w, http.StatusBadRequest, "BAD_IMAGE", err.Error(), nil)
		return
	}

	concerns := s.detector.DetectConcerns(img)
	if concerns == nil {
		concerns = []string{}
	}
	writeJSON(w, http.StatusOK, detectResponse{Concerns: concerns})
}

func (s *Server) recommend(w http.ResponseWriter, req request.Request) {
	c, ok := s.snapshot(w)
	if !ok {
		return
	}

	if req.SkinType == "" {
		req.SkinType = s.opts.DefaultSkinType
	}
	if req.Sort == "" {
		req.Sort = s.opts.DefaultSort
	}
	if req.Limit == 0 {
		req.Limit = s.opts.DefaultLimit
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		writeRequestError(w, err)
		return
	}

	res := recommend.Recommend(c, req.Query())
	metrics.RecordRecommendation(res.Tier.String())
	s.log.Debug().
		Str("skin_type", req.SkinType).
		Strs("concerns", req.Concerns).
		Str("tier", res.Tier.String()).
		Int("matches", len(res.Products)).
		Msg("recommendation")
	writeJSON(w, http.StatusOK, display.NewRecommendationJSON(res, req.Limit))
}

func (s *Server) snapshot(w http.ResponseWriter) (*catalog.Catalog, bool) {
	c := s.store.Load()
	if c == nil {
		writeError(w, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "catalog is not loaded yet", nil)
		return nil, false
	}
	return c, true
}

func writeRequestError(w http.ResponseWriter, err error) {
	var verr *request.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), verr.Fields)
		return
	}
	writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
}

func writeError(w http.ResponseWriter, status int, code, message string, fields []request.FieldError) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message, Fields: fields}})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // HTTP response write errors are not recoverable
	json.NewEncoder(w).Encode(data)
}
