package httpkit

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestUserAgentInjected(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := NewClient(WithUserAgent("RobotCLI-test/1.0"))
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	DrainAndClose(resp.Body, 1024)

	if got != "RobotCLI-test/1.0" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestUserAgentNotOverwritten(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := NewClient(WithUserAgent("default-ua"))
	req, _ := http.NewRequest("GET", srv.URL, nil)
	req.Header.Set("User-Agent", "caller-ua")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	DrainAndClose(resp.Body, 1024)

	if got != "caller-ua" {
		t.Errorf("User-Agent = %q, want caller's value kept", got)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"ECONNREFUSED", syscall.ECONNREFUSED, true},
		{"EHOSTUNREACH", syscall.EHOSTUNREACH, true},
		{"ENETUNREACH wrapped in OpError", &net.OpError{Op: "dial", Err: syscall.ENETUNREACH}, true},
		// Can occur after the server processed the request; never retry.
		{"ECONNRESET", syscall.ECONNRESET, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryAgainstRefusedPort(t *testing.T) {
	// Reserve a port and close the listener so connections are refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	client := NewClient(WithRetry(2, 10*time.Millisecond), WithTimeout(2*time.Second))

	start := time.Now()
	_, err = client.Get("http://" + addr)
	if err == nil {
		t.Fatal("expected connection error")
	}
	// Two retry delays must have elapsed.
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("returned after %v, retries did not run", elapsed)
	}
}

func TestReadErrorBody(t *testing.T) {
	body := io.NopCloser(strings.NewReader("something went wrong with a long tail"))
	got := ReadErrorBody(body, 22)
	if got != "something went wrong w" {
		t.Errorf("ReadErrorBody = %q", got)
	}

	if got := ReadErrorBody(nil, 10); got != "" {
		t.Errorf("nil body = %q", got)
	}
}
