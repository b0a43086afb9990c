package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"resume-rag/internal/ingest"
	"resume-rag/internal/rag"
	"resume-rag/internal/service/mocks"
)

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(&Deps{SearchService: mocks.NewMockSearchService(ctrl)})

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		mockSetup  func(*mocks.MockSearchService)
		wantStatus int
	}{
		{
			name:   "POST /api/v1/search",
			method: http.MethodPost,
			path:   "/api/v1/search",
			body:   `{"query":"go"}`,
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).Return(rag.SearchResponse{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/v1/search with invalid body",
			method:     http.MethodPost,
			path:       "/api/v1/search",
			body:       "not json",
			mockSetup:  func(*mocks.MockSearchService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GET /api/v1/search method not allowed",
			method:     http.MethodGet,
			path:       "/api/v1/search",
			mockSetup:  func(*mocks.MockSearchService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:   "GET /api/v1/corpus/stats",
			method: http.MethodGet,
			path:   "/api/v1/corpus/stats",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().Stats(gomock.Any()).Return(ingest.CorpusStats{Fragments: 3})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /api/health",
			method: http.MethodGet,
			path:   "/api/health",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().Stats(gomock.Any()).Return(ingest.CorpusStats{Fragments: 3})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/v1/ask",
			mockSetup:  func(*mocks.MockSearchService) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockSearchService(ctrl)
			tt.mockSetup(mockService)
			router := NewRouter(&Deps{SearchService: mockService})

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(&Deps{SearchService: mocks.NewMockSearchService(ctrl)})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("Router should assign a request id")
	}
}
