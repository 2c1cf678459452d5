package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"scoring-api/internal/common/apierrors"
	"scoring-api/internal/common/logger"
	"scoring-api/internal/common/metrics"
	"scoring-api/internal/common/observability"

	"github.com/google/uuid"
)

// Server is the HTTP boundary: one POST route, JSON envelopes in and out.
type Server struct {
	dispatcher *Dispatcher
	obs        *observability.Observability
	log        logger.Logger
}

func NewServer(dispatcher *Dispatcher, obs *observability.Observability, log logger.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		obs:        obs,
		log:        log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Handler returns the route table. Anything but POST /method is an
// unknown-route 404.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/method", s.handleMethod)
	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeReply(w, nil, apierrors.StatusNotFound)
}

func (s *Server) handleMethod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeReply(w, nil, apierrors.StatusNotFound)
		return
	}

	start := time.Now()
	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	diag := DiagContext{"request_id": requestID}
	log := s.log.WithFields(map[string]interface{}{"request_id": requestID})

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.WithError(err).Warn("malformed request body", nil)
		s.record(r, "", apierrors.StatusBadRequest, start)
		writeReply(w, nil, apierrors.StatusBadRequest)
		return
	}

	methodName, _ := body["method"].(string)

	payload, code := s.safeDispatch(r, log, body, diag)

	s.record(r, methodName, code, start)
	log.Info("request processed", map[string]interface{}{
		"method":   methodName,
		"code":     code,
		"duration": time.Since(start).String(),
		"diag":     map[string]interface{}(diag),
	})
	writeReply(w, payload, code)
}

// safeDispatch converts a handler panic into an internal error instead of
// tearing down the connection.
func (s *Server) safeDispatch(r *http.Request, log logger.Logger, body map[string]interface{}, diag DiagContext) (payload interface{}, code int) {
	defer func() {
		if rec := recover(); rec != nil {
			log.WithError(apierrors.NewInternalError(fmt.Errorf("panic: %v", rec))).Error("panic in dispatch", nil)
			payload, code = nil, apierrors.StatusInternalError
		}
	}()
	return s.dispatcher.Dispatch(r.Context(), body, diag)
}

func (s *Server) record(r *http.Request, methodName string, code int, start time.Time) {
	if methodName == "" {
		methodName = "unknown"
	}
	elapsed := time.Since(start)
	metrics.RequestsTotal.WithLabelValues(methodName, strconv.Itoa(code)).Inc()
	metrics.RequestDuration.WithLabelValues(methodName).Observe(elapsed.Seconds())
	if s.obs != nil {
		s.obs.RecordRequest(r.Context(), methodName, code)
		s.obs.RecordRequestDuration(r.Context(), elapsed, methodName)
	}
}

// writeReply shapes the wire envelope: {"response", "code"} on success,
// {"error", "code"} on failure with the canonical status text when the
// payload carries no message of its own.
func writeReply(w http.ResponseWriter, payload interface{}, code int) {
	var reply map[string]interface{}
	if apierrors.IsErrorStatus(code) {
		errPayload := payload
		if errPayload == nil {
			errPayload = apierrors.StatusText(code)
		}
		reply = map[string]interface{}{"error": errPayload, "code": code}
	} else {
		reply = map[string]interface{}{"response": payload, "code": code}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(reply)
}
