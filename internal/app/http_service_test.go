package app

import (
	"net/http"
	"testing"
)

func TestNewHTTPServiceAddrFallback(t *testing.T) {
	cases := []struct {
		name string
		addr string
		want string
	}{
		{"empty", "", defaultHTTPAddr},
		{"host missing port", ":", defaultHTTPAddr},
		{"explicit", "127.0.0.1:9000", "127.0.0.1:9000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewHTTPService(tc.addr, http.NewServeMux())
			if svc.Addr() != tc.want {
				t.Fatalf("want addr %q got %q", tc.want, svc.Addr())
			}
		})
	}
}

func TestHTTPServiceNilSafety(t *testing.T) {
	var svc *HTTPService
	if svc.Name() != "http" {
		t.Fatalf("nil service must still report its name")
	}
	if svc.Addr() != "" {
		t.Fatalf("nil service must report empty addr")
	}
	if err := svc.Stop(t.Context()); err != nil {
		t.Fatalf("nil service stop must be a no-op: %v", err)
	}
}
