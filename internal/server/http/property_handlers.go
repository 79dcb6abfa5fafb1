package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helixir/property-service/internal/domain"
	"github.com/helixir/property-service/internal/observability"
	"github.com/helixir/property-service/internal/repository"
)

const maxRequestBodySize = 1 << 20 // 1 MB limit for request bodies

// listProperties handles GET /properties.
func (s *Server) listProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := s.properties.List(r.Context(), parseListQuery(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if properties == nil {
		properties = []*domain.Property{}
	}
	writeJSON(w, http.StatusOK, properties)
}

// getProperty handles GET /properties/{id}.
func (s *Server) getProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r, "get")
	if !ok {
		return
	}

	property, err := s.properties.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

// createProperty handles POST /properties.
func (s *Server) createProperty(w http.ResponseWriter, r *http.Request) {
	in, ok := s.parseBody(w, r, "create", domain.CreateRequiredFields...)
	if !ok {
		return
	}

	property, err := s.properties.Create(r.Context(), in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

// updateProperty handles PUT /properties/{id}. Only supplied fields change.
func (s *Server) updateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r, "update")
	if !ok {
		return
	}
	in, ok := s.parseBody(w, r, "update")
	if !ok {
		return
	}

	property, err := s.properties.Update(r.Context(), id, in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

// deleteProperty handles DELETE /properties/{id}. Success has an empty body.
func (s *Server) deleteProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r, "delete")
	if !ok {
		return
	}

	if err := s.properties.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// parseID validates the {id} path parameter, writing the error response
// when it cannot identify a property.
func (s *Server) parseID(w http.ResponseWriter, r *http.Request, operation string) (int64, bool) {
	id, err := domain.ParsePropertyID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidID) {
			s.metrics.RecordValidationFailure(operation)
		}
		s.writeDomainError(w, r, err)
		return 0, false
	}
	return id, true
}

// parseBody reads and validates a property payload.
func (s *Server) parseBody(w http.ResponseWriter, r *http.Request, operation string, required ...string) (domain.PropertyInput, bool) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgBodyUnreadable)
		return domain.PropertyInput{}, false
	}

	in, err := domain.ParsePropertyInput(body, required...)
	if err != nil {
		s.metrics.RecordValidationFailure(operation)
		s.writeDomainError(w, r, err)
		return domain.PropertyInput{}, false
	}
	return in, true
}

// parseListQuery builds the list filter from page, limit and type.
// Unusable page and limit values fall back to their defaults.
func parseListQuery(r *http.Request) repository.PropertyFilter {
	q := r.URL.Query()

	page := 1
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	limit := repository.DefaultPageLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}

	var propertyType *string
	if values := q["type"]; len(values) == 1 {
		propertyType = &values[0]
	}

	return repository.NewPageFilter(page, limit, propertyType)
}

// writeDomainError maps domain errors to HTTP status codes and writes a JSON
// error response. Internal error details are logged, never returned.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	var verrs domain.ValidationErrors
	var verr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, msgInvalidID)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, domain.ErrMalformedBody):
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
	case errors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, verrs.Error())
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
	default:
		logger := observability.LoggerFromContext(r.Context(), s.logger)
		logger.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("property store failure")
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}
