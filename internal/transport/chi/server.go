package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/permission"
	"github.com/kailas-cloud/curator/internal/domain/query"
	"github.com/kailas-cloud/curator/internal/domain/rule"
	"github.com/kailas-cloud/curator/internal/transport/dto"
	batchuc "github.com/kailas-cloud/curator/internal/usecase/batch"
	curationuc "github.com/kailas-cloud/curator/internal/usecase/curation"
	feeduc "github.com/kailas-cloud/curator/internal/usecase/feed"
	healthuc "github.com/kailas-cloud/curator/internal/usecase/health"
	"github.com/kailas-cloud/curator/internal/version"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes = 8 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// errorMapping binds a sentinel error to its HTTP status and error code.
type errorMapping struct {
	sentinel error
	status   int
	code     dto.ErrorCode
	// detailed errors describe caller input, so their full text is returned.
	detailed bool
}

var errorMappings = []errorMapping{
	{domain.ErrInvalidCriteria, http.StatusBadRequest, dto.ErrorCodeInvalidCriteria, true},
	{domain.ErrInvalidRecord, http.StatusBadRequest, dto.ErrorCodeInvalidRecord, true},
	{domain.ErrDuplicateRecord, http.StatusBadRequest, dto.ErrorCodeDuplicateRecord, true},
	{domain.ErrInvalidFeed, http.StatusBadRequest, dto.ErrorCodeInvalidFeed, true},
	{domain.ErrTooManyRecords, http.StatusRequestEntityTooLarge, dto.ErrorCodeTooManyRecords, true},
	{domain.ErrBatchTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodeBatchTooLarge, true},
	{domain.ErrFeedNotFound, http.StatusNotFound, dto.ErrorCodeFeedNotFound, false},
	{domain.ErrStorageDisabled, http.StatusNotImplemented, dto.ErrorCodeStorageDisabled, false},
}

// Server implements ServerInterface.
type Server struct {
	curation      *curationuc.Service
	feeds         *feeduc.Service
	batch         *batchuc.Service
	health        *healthuc.Service
	domain        permission.Domain
	limits        query.Limits
	maxBodyBytes  int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server. feeds is nil when feed storage is disabled.
func NewServer(
	curation *curationuc.Service,
	feeds *feeduc.Service,
	batch *batchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		curation:     curation,
		feeds:        feeds,
		batch:        batch,
		health:       health,
		domain:       permission.Default(),
		limits:       query.DefaultLimits(),
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       logger,
	}
	s.errorHandlers = make([]errorHandler, 0, len(errorMappings))
	for _, m := range errorMappings {
		s.errorHandlers = append(s.errorHandlers, sentinelHandler(m.sentinel, m.status, m.code))
	}
	return s
}

// WithDomain sets the permission domain used to resolve levels.
func (s *Server) WithDomain(dom permission.Domain) *Server {
	s.domain = dom
	return s
}

// WithLimits sets the result count limits.
func (s *Server) WithLimits(l query.Limits) *Server {
	s.limits = l
	return s
}

// WithMaxBodyBytes sets the request body size limit.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Curate handles POST /curate.
func (s *Server) Curate(w http.ResponseWriter, r *http.Request) {
	var req dto.CurateRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}

	records, err := dto.ToRecords(s.domain, req.Records)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	q, err := req.Query.ToQuery(s.limits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	c, err := q.Criteria(s.domain)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out, err := s.curation.Curate(r.Context(), records, c)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromOutcome(s.domain, out, q.AsOf()))
}

// CurateFeed handles POST /feeds/{feed}/curate. The body is optional.
func (s *Server) CurateFeed(w http.ResponseWriter, r *http.Request, feed FeedName, params CurateFeedParams) {
	var req dto.Query
	if !s.decodeJSON(w, r, &req, true) {
		return
	}

	q, err := req.ToQuery(s.limits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	c, err := q.Criteria(s.domain)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if params.Limit != nil {
		c = c.WithMaxCount(s.limits.Clamp(params.Limit))
	}

	out, err := s.curation.CurateFeed(r.Context(), feed, c)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromOutcome(s.domain, out, q.AsOf()))
}

// CurateBatch handles POST /curate/batch.
func (s *Server) CurateBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}

	items := make([]batchuc.Item, len(req.Items))
	asOf := make([]time.Time, len(req.Items))
	for i, it := range req.Items {
		items[i].Feed = it.Feed
		q, err := it.Query.ToQuery(s.limits)
		if err != nil {
			items[i].Invalid = err
			continue
		}
		items[i].Query = q
		asOf[i] = q.AsOf()
	}

	results, err := s.batch.Curate(r.Context(), items)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := dto.BatchResponse{Items: make([]dto.BatchResultItem, len(results))}
	for i, res := range results {
		item := dto.BatchResultItem{Feed: res.ID(), Status: string(res.Status())}
		if res.Err() != nil {
			resp.Failed++
			item.Error = &dto.ErrorResponse{
				Code:    errorCode(res.Err()),
				Message: safeDomainMessage(res.Err()),
			}
		} else {
			out := dto.FromOutcome(s.domain, res.Value(), asOf[res.Index()])
			item.Result = &out
		}
		resp.Items[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListFeeds handles GET /feeds.
func (s *Server) ListFeeds(w http.ResponseWriter, r *http.Request) {
	if s.feeds == nil {
		s.handleDomainError(w, domain.ErrStorageDisabled)
		return
	}
	names, err := s.feeds.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, dto.FeedList{Items: names})
}

// PutFeed handles PUT /feeds/{feed}.
func (s *Server) PutFeed(w http.ResponseWriter, r *http.Request, feed FeedName) {
	if s.feeds == nil {
		s.handleDomainError(w, domain.ErrStorageDisabled)
		return
	}
	var req dto.PutFeedRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}

	records, err := dto.ToRecords(s.domain, req.Records)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	f, err := s.feeds.Put(r.Context(), feed, records)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Feed{Name: f.Name(), UpdatedAt: f.UpdatedAt(), Count: f.Len()})
}

// GetFeed handles GET /feeds/{feed}.
func (s *Server) GetFeed(w http.ResponseWriter, r *http.Request, feed FeedName) {
	if s.feeds == nil {
		s.handleDomainError(w, domain.ErrStorageDisabled)
		return
	}
	f, err := s.feeds.Get(r.Context(), feed)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Feed{
		Name:      f.Name(),
		UpdatedAt: f.UpdatedAt(),
		Count:     f.Len(),
		Records:   dto.FromRecords(s.domain, f.Records()),
	})
}

// DeleteFeed handles DELETE /feeds/{feed}.
func (s *Server) DeleteFeed(w http.ResponseWriter, r *http.Request, feed FeedName) {
	if s.feeds == nil {
		s.handleDomainError(w, domain.ErrStorageDisabled)
		return
	}
	if err := s.feeds.Delete(r.Context(), feed); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRules handles GET /rules.
func (s *Server) ListRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dto.Rules{
		Rules:           rule.Names(),
		Permission:      dto.FromDomain(s.domain),
		DefaultMaxCount: s.limits.DefaultMaxCount,
		MaxCountCap:     s.limits.MaxCountCap,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, dto.Health{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeJSON reads a size-limited JSON body into v. With optional set an empty
// body leaves v untouched. On failure the error response is already written.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	err := json.NewDecoder(body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, dto.ErrorCodeRequestTooLarge, "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, dto.ErrorCodeBadRequest, "invalid request body: "+err.Error())
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code dto.ErrorCode, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing error message without exposing internals.
// Input validation errors keep their full text; other sentinels only their own.
func safeDomainMessage(err error) string {
	for _, m := range errorMappings {
		if !errors.Is(err, m.sentinel) {
			continue
		}
		if m.detailed {
			return err.Error()
		}
		return m.sentinel.Error()
	}
	return "internal error"
}

// errorCode returns the error code for err, internal_error when unmapped.
func errorCode(err error) dto.ErrorCode {
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			return m.code
		}
	}
	return dto.ErrorCodeInternalError
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code dto.ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, dto.ErrorCodeInternalError, "internal error")
}
