/*
	This file contains functions useful for testing the portal in other packages.
	They are exported so test files in external packages can use them.
*/

package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/janelia-flyem/ngportal/catalog"
)

// NewTestService returns a service for the given datasets with default settings.
func NewTestService(t *testing.T, datasets ...*catalog.Dataset) *Service {
	cat, err := catalog.New(datasets...)
	if err != nil {
		t.Fatalf("can't create test catalog: %v\n", err)
	}
	s, err := NewService(cat, nil)
	if err != nil {
		t.Fatalf("can't create test service: %v\n", err)
	}
	return s
}

// TestHTTPResponse returns a response from a test run of the service.
// Use TestHTTP if you just want the response body bytes.
func TestHTTPResponse(t *testing.T, s *Service, method, urlStr string, payload io.Reader) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, urlStr, payload)
	if err != nil {
		t.Fatalf("Unsuccessful %s on %q: %v\n", method, urlStr, err)
	}
	resp := httptest.NewRecorder()
	s.Handler().ServeHTTP(resp, req)
	return resp
}

// TestHTTP returns the response body bytes for a test request, making sure any response has
// status OK.
func TestHTTP(t *testing.T, s *Service, method, urlStr string, payload io.Reader) []byte {
	resp := TestHTTPResponse(t, s, method, urlStr, payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("Bad server response (%d) to %s on %q: %s\n", resp.Code, method, urlStr, resp.Body.String())
	}
	return resp.Body.Bytes()
}

// TestBadHTTP expects a HTTP response with the given error status code.
func TestBadHTTP(t *testing.T, s *Service, method, urlStr string, payload io.Reader, status int) {
	resp := TestHTTPResponse(t, s, method, urlStr, payload)
	if resp.Code != status {
		t.Fatalf("Expected status %d for %s on %q, got %d instead.\n", status, method, urlStr, resp.Code)
	}
}
