package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	gwerrors "github.com/campaignstack/ai-gateway/internal/gateway/errors"
	"github.com/campaignstack/ai-gateway/internal/gateway/providers"
)

type stubGenerator struct {
	resp         *providers.Response
	err          error
	lastReq      *providers.Request
	lastModule   string
	fallbackUsed bool
}

func (s *stubGenerator) Generate(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	s.lastReq = req
	return s.resp, s.err
}

func (s *stubGenerator) GenerateWithFallback(ctx context.Context, req *providers.Request, module string) (*providers.Response, error) {
	s.lastReq = req
	s.lastModule = module
	s.fallbackUsed = true
	return s.resp, s.err
}

func doRequest(t *testing.T, gen Generator, tenantID, body string) *httptest.ResponseRecorder {
	t.Helper()

	handler := TenantMiddleware(http.HandlerFunc(NewGenerateHandler(gen).HandleGenerate))
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(body))
	if tenantID != "" {
		req.Header.Set(TenantHeader, tenantID)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

const validBody = `{"vendor": "openai", "messages": [{"role": "user", "content": "hi"}]}`

func TestHandleGenerate_Success(t *testing.T) {
	gen := &stubGenerator{resp: &providers.Response{
		Text:        "hello",
		Vendor:      "openai",
		Model:       "gpt-4o-mini",
		TotalTokens: 12,
		CostUSD:     0.000345,
		LatencyMs:   87,
		CacheHit:    true,
	}}

	rr := doRequest(t, gen, "t1", validBody)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "true", rr.Header().Get("X-Cache-Hit"))
	require.Equal(t, "0.000345", rr.Header().Get("X-Cost-USD"))
	require.Equal(t, "87", rr.Header().Get("X-Latency-Ms"))

	var resp providers.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "hello", resp.Text)

	require.Equal(t, "t1", gen.lastReq.TenantID, "tenant comes from the header, not the body")
	require.False(t, gen.fallbackUsed)
}

func TestHandleGenerate_MissingTenant(t *testing.T) {
	gen := &stubGenerator{resp: &providers.Response{}}
	rr := doRequest(t, gen, "", validBody)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Nil(t, gen.lastReq)
}

func TestHandleGenerate_BadBody(t *testing.T) {
	gen := &stubGenerator{resp: &providers.Response{}}

	for _, body := range []string{"{not json", `{"vendor": "", "messages": []}`, `{"messages": [{"role": "user", "content": "x"}]}`} {
		rr := doRequest(t, gen, "t1", body)
		require.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", body)
	}
}

func TestHandleGenerate_FallbackFlag(t *testing.T) {
	gen := &stubGenerator{resp: &providers.Response{Text: "ok"}}

	body := `{"vendor": "openai", "module": "drafting", "fallback": true, "messages": [{"role": "user", "content": "hi"}]}`
	rr := doRequest(t, gen, "t1", body)

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, gen.fallbackUsed)
	require.Equal(t, "drafting", gen.lastModule)
}

func TestHandleGenerate_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{
			"configuration error",
			&gwerrors.ConfigurationError{TenantID: "t1", Vendor: "openai", Reason: "not configured"},
			http.StatusBadRequest,
		},
		{
			"rate limited",
			&gwerrors.RateLimitExceededError{TenantID: "t1", Dimension: gwerrors.DimensionCost},
			http.StatusTooManyRequests,
		},
		{
			"provider error",
			&gwerrors.ProviderError{Vendor: "openai", Err: fmt.Errorf("upstream 500")},
			http.StatusBadGateway,
		},
		{
			"all providers failed",
			&gwerrors.AllProvidersFailedError{Vendors: []string{"openai", "groq"}, Err: fmt.Errorf("down")},
			http.StatusBadGateway,
		},
		{
			"unclassified error",
			fmt.Errorf("boom"),
			http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerator{err: tc.err}
			rr := doRequest(t, gen, "t1", validBody)
			require.Equal(t, tc.status, rr.Code)

			var payload map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
			require.NotEmpty(t, payload["error"])
		})
	}
}

func TestHandleGenerate_RateLimitSetsRetryAfter(t *testing.T) {
	gen := &stubGenerator{err: &gwerrors.RateLimitExceededError{TenantID: "t1", Dimension: gwerrors.DimensionRequests}}
	rr := doRequest(t, gen, "t1", validBody)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Equal(t, "60", rr.Header().Get("Retry-After"))
}

func TestTenantFromContext(t *testing.T) {
	if _, ok := TenantFromContext(context.Background()); ok {
		t.Error("empty context should not carry a tenant")
	}
}
