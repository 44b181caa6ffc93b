package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response is the envelope of every analysis endpoint
type Response struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
}

// writeJSON encodes v as the response body with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads at most MaxBodyBytes of the request and decodes it into v.
// On failure it returns the HTTP status to answer with.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) (int, error) {
	body := r.Body
	if s.config.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return http.StatusBadRequest, fmt.Errorf("error reading request body: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return http.StatusBadRequest, errors.New("invalid request body")
	}
	return http.StatusOK, nil
}

// successResponse writes a success envelope and records request metrics
func (s *Server) successResponse(w http.ResponseWriter, endpoint string, start time.Time, data any) {
	if s.metrics != nil {
		s.metrics.requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		s.metrics.requestCounter.WithLabelValues(endpoint, "success").Inc()
	}

	writeJSON(w, http.StatusOK, Response{
		StatusCode: http.StatusOK,
		Status:     "success",
		Data:       data,
	})
}

// errorResponse logs and writes an error envelope
func (s *Server) errorResponse(w http.ResponseWriter, endpoint string, statusCode int, errorMsg string) {
	s.log.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   statusCode,
	}).Warn(errorMsg)

	if s.metrics != nil {
		s.metrics.requestCounter.WithLabelValues(endpoint, "error").Inc()
	}

	writeJSON(w, statusCode, Response{
		StatusCode: statusCode,
		Status:     "error",
		Error:      errorMsg,
	})
}
