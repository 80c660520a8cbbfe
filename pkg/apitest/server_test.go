package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

func get(t *testing.T, s *Server, path string, header map[string]string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.APIURL()+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := s.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestServer_StubAndLog(t *testing.T) {
	api := New(t)
	api.Mock("GET", "/organizations").
		RespondJSON([]map[string]any{{"id": 1, "name": "Acme"}}).
		Reply()

	if !strings.HasSuffix(api.APIURL(), APIPrefix) {
		t.Errorf("APIURL() = %s, want suffix %s", api.APIURL(), APIPrefix)
	}

	resp, body := get(t, api, "/organizations", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(body, `"Acme"`) {
		t.Errorf("body = %s", body)
	}

	api.AssertCalled(t, "GET", "/organizations")
	api.AssertCalledTimes(t, "GET", "/organizations", 1)
	api.AssertNotCalled(t, "POST", "/organizations")

	reqs := api.Requests()
	if len(reqs) != 1 || reqs[0].Matched != "GET /organizations" {
		t.Errorf("Requests() = %+v", reqs)
	}
}

func TestServer_Unmatched(t *testing.T) {
	api := New(t)

	resp, body := get(t, api, "/nothing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if doc["message"] != "no stub for GET /nothing" {
		t.Errorf("message = %v", doc["message"])
	}
	if api.Requests()[0].Matched != "" {
		t.Error("unmatched request should have no stub name")
	}
}

func TestServer_PathParamsAndTimes(t *testing.T) {
	api := New(t)
	api.Mock("GET", "/{org}/projects").RespondUnauthorized().Once().Reply()
	api.Mock("GET", "/{org}/projects").RespondJSON([]any{}).Reply()

	first, _ := get(t, api, "/acme/projects", nil)
	second, _ := get(t, api, "/acme/projects", nil)

	if first.StatusCode != http.StatusUnauthorized {
		t.Errorf("first status = %d, want 401", first.StatusCode)
	}
	if second.StatusCode != http.StatusOK {
		t.Errorf("second status = %d, want 200", second.StatusCode)
	}
	api.AssertCalledTimes(t, "GET", "/{org}/projects", 2)
	api.AssertCalledTimes(t, "GET", "/acme/projects", 2)
}

func TestServer_RequestMatchers(t *testing.T) {
	api := New(t)
	api.Mock("GET", "/auth/me").WithBearer("T2").RespondJSON(map[string]any{"id": 1}).Reply()
	api.Mock("GET", "/auth/me").WithoutAuth().RespondError(http.StatusForbidden, "no auth").Reply()
	api.Mock("GET", "/auth/me").RespondUnauthorized().Reply()
	api.Mock("GET", "/auth/register/verify").WithQueryParam("token", "tok123").RespondJSON(map[string]any{}).Reply()

	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{"bearer matches", "/auth/me", map[string]string{"Authorization": "Bearer T2"}, http.StatusOK},
		{"no header", "/auth/me", nil, http.StatusForbidden},
		{"wrong bearer", "/auth/me", map[string]string{"Authorization": "Bearer T1"}, http.StatusUnauthorized},
		{"query matches", "/auth/register/verify?token=tok123", nil, http.StatusOK},
		{"query mismatch", "/auth/register/verify?token=bad", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := get(t, api, tt.path, tt.header)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	last := api.LastRequest(t, "GET", "/auth/me")
	if last.Bearer() != "T1" || !last.HasAuthorization() {
		t.Errorf("LastRequest() bearer = %q", last.Bearer())
	}
}

func TestServer_BodyMatcherAndJSONAssertion(t *testing.T) {
	api := New(t)
	api.Mock("POST", "/auth/login").WithBodyContains(`"a@b.com"`).RespondJSON(map[string]any{"access_token": "T1"}).Reply()

	resp, err := api.Client().Post(api.APIURL()+"/auth/login", "application/json",
		strings.NewReader(`{"email":"a@b.com","password":"secret123"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	req := api.LastRequest(t, "POST", "/auth/login")
	req.AssertJSONBody(t, map[string]string{"email": "a@b.com", "password": "secret123"})
}

func TestServer_Reset(t *testing.T) {
	api := New(t)
	api.Mock("GET", "/organizations").RespondJSON([]any{}).Reply()
	get(t, api, "/organizations", nil)

	api.Reset()

	if len(api.Requests()) != 0 {
		t.Error("Reset() should clear the request log")
	}
	resp, _ := get(t, api, "/organizations", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status after Reset() = %d, want 404", resp.StatusCode)
	}
}

func TestBuilder_InvalidJSON(t *testing.T) {
	api := New(t)
	b := api.Mock("GET", "/x").WithJSON(make(chan int))
	if b.Err() == nil {
		t.Error("WithJSON should record a marshal error")
	}
}

func TestMatchesPath(t *testing.T) {
	tests := []struct {
		actual, expected string
		want             bool
	}{
		{"/organizations", "/organizations", true},
		{"/organizations/7", "/organizations/{id}", true},
		{"/acme/shop/users/records", "/{org}/{project}/{schema}/records", true},
		{"/acme/shop", "/{org}/projects", false},
		{"/acme/projects/x", "/{org}/projects", false},
	}
	for _, tt := range tests {
		if got := matchesPath(tt.actual, tt.expected); got != tt.want {
			t.Errorf("matchesPath(%q, %q) = %v, want %v", tt.actual, tt.expected, got, tt.want)
		}
	}
}

func TestRequestLog_MethodsOnReturnedValues(t *testing.T) {
	api := New(t)
	api.Mock("GET", "/auth/me").RespondJSON(map[string]any{"id": 1}).Reply()

	get(t, api, "/auth/me", map[string]string{"Authorization": "Bearer T9"})
	get(t, api, "/auth/me", nil)

	if got := api.LastRequest(t, "GET", "/auth/me").Bearer(); got != "" {
		t.Errorf("LastRequest().Bearer() = %q, want empty", got)
	}
	if api.LastRequest(t, "GET", "/auth/me").HasAuthorization() {
		t.Error("LastRequest().HasAuthorization() = true, want false")
	}
	if got := api.Calls("GET", "/auth/me")[0].Bearer(); got != "T9" {
		t.Errorf("Calls()[0].Bearer() = %q, want T9", got)
	}
}
