package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler, retryMax int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(models.APIConfig{
		BaseURL:  srv.URL,
		Timeout:  5 * time.Second,
		RetryMax: retryMax,
	}, logging.Nop())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     models.APIConfig
		want    string
		wantErr bool
	}{
		{"us region", models.APIConfig{Region: "us"}, regionURLs[models.RegionUS], false},
		{"region is case insensitive", models.APIConfig{Region: "EU"}, regionURLs[models.RegionEU], false},
		{"override wins", models.APIConfig{Region: "us", BaseURL: "http://localhost:8080/api/"}, "http://localhost:8080/api", false},
		{"unknown region", models.APIConfig{Region: "mars"}, "", true},
		{"relative override", models.APIConfig{BaseURL: "/api"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BaseURL(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BaseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("request = %s %s, want POST /auth/login", r.Method, r.URL.Path)
		}
		if r.Header.Get(requestIDHeader) == "" {
			t.Error("missing request id header")
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "lockbar/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}

		var body loginRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Username != "driver" || body.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_credentials","message":"bad username or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"session_id":"tok1"}`))
	}), 0)

	token, err := client.Login(context.Background(), "driver", "hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token != "tok1" {
		t.Errorf("Login() = %q, want tok1", token)
	}

	_, err = client.Login(context.Background(), "driver", "wrong")
	if !IsUnauthorized(err) {
		t.Fatalf("Login() error = %v, want unauthorized", err)
	}
	if !strings.Contains(err.Error(), "bad username or password") {
		t.Errorf("Login() error = %q, want service message", err.Error())
	}
	if StatusCode(err) != http.StatusUnauthorized {
		t.Errorf("StatusCode() = %d, want 401", StatusCode(err))
	}
}

func TestLoginSessionFromHeader(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(sessionHeader, "hdr-token")
		_, _ = w.Write([]byte(`{}`))
	}), 0)

	token, err := client.Login(context.Background(), "a", "b")
	if err != nil || token != "hdr-token" {
		t.Errorf("Login() = %q, %v; want hdr-token, nil", token, err)
	}
}

func TestLoginEmptySession(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}), 0)

	if _, err := client.Login(context.Background(), "a", "b"); !errors.Is(err, ErrEmptySession) {
		t.Errorf("Login() error = %v, want ErrEmptySession", err)
	}
}

func TestListVehicles(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(sessionHeader) != "tok1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"vehicles":[
			{"vehicle_key":"k1","nick_name":"Blue","model_name":"Ioniq 5","trim":"SEL"},
			{"vehicle_key":"k2","nick_name":"Red","model_name":"Kona","trim":"N Line"}
		]}`))
	}), 0)

	vehicles, err := client.ListVehicles(context.Background(), "tok1")
	if err != nil {
		t.Fatalf("ListVehicles() error = %v", err)
	}
	if len(vehicles) != 2 || vehicles[0].Key != "k1" || vehicles[1].NickName != "Red" {
		t.Errorf("ListVehicles() = %+v", vehicles)
	}
	if got := vehicles[0].Label(); got != "Blue - Ioniq 5 (SEL)" {
		t.Errorf("Label() = %q", got)
	}

	if _, err := client.ListVehicles(context.Background(), "stale"); !IsUnauthorized(err) {
		t.Errorf("ListVehicles(stale) error = %v, want unauthorized", err)
	}
}

func TestListVehiclesEmpty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}), 0)

	vehicles, err := client.ListVehicles(context.Background(), "tok1")
	if err != nil {
		t.Fatalf("ListVehicles() error = %v", err)
	}
	if vehicles == nil || len(vehicles) != 0 {
		t.Errorf("ListVehicles() = %#v, want empty non-nil slice", vehicles)
	}
}

func TestLockAndUnlock(t *testing.T) {
	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		paths = append(paths, r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	}), 0)

	ctx := context.Background()
	if err := client.Lock(ctx, "tok1", "k1"); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if err := client.Unlock(ctx, "tok1", "key/with space"); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := client.Lock(ctx, "tok1", ""); err == nil {
		t.Error("Lock() with empty key error = nil")
	}

	want := []string{"/vehicles/k1/lock", "/vehicles/key%2Fwith%20space/unlock"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}), 2)

	if err := client.Lock(context.Background(), "tok1", "k1"); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestServerErrorAfterRetries(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}), 0)

	err := client.Unlock(context.Background(), "tok1", "k1")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Unlock() error = %v, want *Error", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "upstream down" {
		t.Errorf("error = %+v", apiErr)
	}
	if apiErr.RequestID == "" {
		t.Error("error has no request id")
	}
}
