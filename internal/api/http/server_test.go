package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"moviechat/recommendservice/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRecommendService struct {
	response  domain.RecommendResponse
	err       error
	filters   domain.FilterSet
	listing   domain.VocabularyListing
	enabled   bool
	lastText  string
	callCount int
}

func (f *fakeRecommendService) Recommend(ctx context.Context, text string) (domain.RecommendResponse, error) {
	f.lastText = text
	f.callCount++
	return f.response, f.err
}

func (f *fakeRecommendService) ExtractFilters(text string) domain.FilterSet {
	f.lastText = text
	return f.filters
}

func (f *fakeRecommendService) Listing() domain.VocabularyListing { return f.listing }

func (f *fakeRecommendService) Enabled() bool { return f.enabled }

func newTestHandler(fake *fakeRecommendService) http.Handler {
	return NewServer(fake).Handler()
}

func TestRecommendEndpoint(t *testing.T) {
	fake := &fakeRecommendService{
		enabled: true,
		response: domain.RecommendResponse{
			Recommendations: []domain.Recommendation{
				{ID: 1, Name: "Night Run", Year: "2014", Rating: "7.8", Genres: "Action", Overview: "A courier outruns the mob."},
			},
			Note: " (Filters applied: Genres: Action)",
		},
	}
	handler := newTestHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/get?msg=action+movies", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fake.lastText != "action movies" {
		t.Fatalf("unexpected message passed to service: %q", fake.lastText)
	}

	var payload struct {
		Response domain.RecommendResponse `json:"response"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Response.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(payload.Response.Recommendations))
	}
	if payload.Response.Recommendations[0].Name != "Night Run" {
		t.Fatalf("unexpected recommendation %+v", payload.Response.Recommendations[0])
	}
	if payload.Response.Note == "" {
		t.Fatal("expected note in response")
	}
}

func TestRecommendEndpointRequiresMessage(t *testing.T) {
	handler := newTestHandler(&fakeRecommendService{enabled: true})

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "msg is required") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestRecommendEndpointRejectsLongMessage(t *testing.T) {
	handler := newTestHandler(&fakeRecommendService{enabled: true})

	long := strings.Repeat("a", maxMessageLength+1)
	req := httptest.NewRequest(http.MethodGet, "/get?msg="+long, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "msg too long") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestRecommendEndpointMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&fakeRecommendService{enabled: true})

	req := httptest.NewRequest(http.MethodPost, "/get?msg=action", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestRecommendEndpointServiceError(t *testing.T) {
	fake := &fakeRecommendService{enabled: true, err: errors.New("context canceled")}
	handler := newTestHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/get?msg=action", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "recommendation failed") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestFiltersEndpoint(t *testing.T) {
	year := 2000
	fake := &fakeRecommendService{
		enabled: true,
		filters: domain.FilterSet{
			IncludedGenres: []string{"Action"},
			YearAfter:      &year,
		},
	}
	handler := newTestHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/filters?msg=action+after+2000", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Msg     string           `json:"msg"`
		Filters domain.FilterSet `json:"filters"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Msg != "action after 2000" {
		t.Fatalf("unexpected msg %q", payload.Msg)
	}
	if len(payload.Filters.IncludedGenres) != 1 || payload.Filters.IncludedGenres[0] != "Action" {
		t.Fatalf("unexpected filters %+v", payload.Filters)
	}
	if payload.Filters.YearAfter == nil || *payload.Filters.YearAfter != 2000 {
		t.Fatalf("unexpected year filter %+v", payload.Filters.YearAfter)
	}
}

func TestVocabularyEndpoint(t *testing.T) {
	fake := &fakeRecommendService{
		enabled: true,
		listing: domain.VocabularyListing{
			Genres:    []string{"Action", "Comedy"},
			Languages: []string{"French"},
		},
	}
	handler := newTestHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/vocabulary", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload domain.VocabularyListing
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Genres) != 2 || payload.Genres[0] != "Action" {
		t.Fatalf("unexpected genres %v", payload.Genres)
	}
	if len(payload.Languages) != 1 || payload.Languages[0] != "French" {
		t.Fatalf("unexpected languages %v", payload.Languages)
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(&fakeRecommendService{enabled: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected health payload %v", payload)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	handler := newTestHandler(&fakeRecommendService{enabled: true})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRecoveryMiddlewareCatchesPanic(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	handler := recoveryMiddleware(newTestLogger(), panicking)

	req := httptest.NewRequest(http.MethodGet, "/get?msg=a", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := rateLimitMiddleware(1, 1, ok)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/get?msg=a", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/get?msg=a", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", second.Code)
	}

	// Health stays reachable even when the bucket is drained.
	health := httptest.NewRecorder()
	handler.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	if health.Code != http.StatusOK {
		t.Fatalf("health should bypass rate limiting, got %d", health.Code)
	}
}

func TestNormalizeRoute(t *testing.T) {
	if got := normalizeRoute("/get"); got != "/get" {
		t.Fatalf("normalizeRoute(/get) = %q", got)
	}
	if got := normalizeRoute("/random/path"); got != "/other" {
		t.Fatalf("normalizeRoute(/random/path) = %q", got)
	}
}
