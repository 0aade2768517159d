package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("refused") }

	cases := []struct {
		name        string
		checks      []Check
		path        string
		want        int
		wantFailing []string
	}{
		{name: "healthz ok", checks: []Check{{Name: "store", Ping: down}}, path: "/healthz", want: 200},
		{name: "readyz ok", checks: []Check{{Name: "store", Ping: ok}, {Name: "redis", Ping: ok}}, path: "/readyz", want: 200},
		{name: "readyz no checks", path: "/readyz", want: 200},
		{name: "readyz degraded", checks: []Check{{Name: "store", Ping: ok}, {Name: "redis", Ping: down}}, path: "/readyz", want: 503, wantFailing: []string{"redis"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler(tc.checks...).Register(r)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("want %d got %d", tc.want, w.Code)
			}
			if tc.wantFailing != nil {
				var body struct {
					Failing []string `json:"failing"`
				}
				_ = json.Unmarshal(w.Body.Bytes(), &body)
				if len(body.Failing) != 1 || body.Failing[0] != tc.wantFailing[0] {
					t.Fatalf("failing = %v", body.Failing)
				}
			}
		})
	}
}
