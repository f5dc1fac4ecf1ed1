package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeocode_Hit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		if q := r.URL.Query().Get("q"); q != "Beirut, Lebanon" {
			t.Errorf("Expected query 'Beirut, Lebanon', got %q", q)
		}
		fmt.Fprint(w, `[{"lat":"33.8938","lon":"35.5018"}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", nil)
	lat, lon, ok := client.Geocode(context.Background(), "Beirut, Lebanon")
	if !ok {
		t.Fatal("Expected geocode to succeed")
	}
	if lat != 33.8938 || lon != 35.5018 {
		t.Errorf("Expected 33.8938/35.5018, got %f/%f", lat, lon)
	}
}

func TestGeocode_MissDegradesToUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", nil)
	if _, _, ok := client.Geocode(context.Background(), "Nowhereville"); ok {
		t.Error("Expected unknown location to geocode as a miss")
	}
}

func TestGeocode_ServerErrorDegradesToUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", nil)
	if _, _, ok := client.Geocode(context.Background(), "Beirut"); ok {
		t.Error("Expected server error to degrade to a miss")
	}
}

func TestGeocode_EmptyQuery(t *testing.T) {
	client := NewClient("http://unused", "test-agent", nil)
	if _, _, ok := client.Geocode(context.Background(), ""); ok {
		t.Error("Expected empty query to be a miss without a network call")
	}
}
