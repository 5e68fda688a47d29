package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4ra-routing/m4ra/pkg/server/rest/service"
	"github.com/m4ra-routing/m4ra/pkg/vertexindex"
)

type fakeService struct {
	status      service.CityStatus
	weighted    []string
	indicesErr  error
	weightedErr error
}

func (f *fakeService) CacheStatus(_ context.Context, city string) (service.CityStatus, error) {
	return f.status, nil
}

func (f *fakeService) WeightFromFile(_ context.Context, city, networkPath string) ([]string, error) {
	return f.weighted, f.weightedErr
}

func (f *fakeService) BuildVertexIndices(_ context.Context, city string) ([]string, error) {
	if f.indicesErr != nil {
		return nil, f.indicesErr
	}
	return []string{"idx-1"}, nil
}

func newTestRouter(svc WeightingService) *chi.Mux {
	r := chi.NewRouter()
	WeightingRouter(r, svc)
	return r
}

func TestCacheStatusEndpoint(t *testing.T) {
	svc := &fakeService{status: service.CityStatus{
		City:             "paris",
		WeightedNetworks: []string{"a", "b", "c"},
	}}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/weighting/cache/paris", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got service.CityStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "paris", got.City)
	assert.Len(t, got.WeightedNetworks, 3)
}

func TestWeightEndpointValidation(t *testing.T) {
	r := newTestRouter(&fakeService{})

	body := bytes.NewBufferString(`{"city": "paris"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/weighting/weight", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeightEndpoint(t *testing.T) {
	svc := &fakeService{weighted: []string{"w1", "w2", "w3"}}
	r := newTestRouter(svc)

	body := bytes.NewBufferString(`{"city": "paris", "network_path": "/data/paris-network.bin"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/weighting/weight", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got WeightResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"w1", "w2", "w3"}, got.Artifacts)
}

func TestVertexIndexEndpointNotReady(t *testing.T) {
	svc := &fakeService{indicesErr: fmt.Errorf("%w: paris/motorcar", vertexindex.ErrMissingPrerequisite)}
	r := newTestRouter(svc)

	body := bytes.NewBufferString(`{"city": "paris"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/weighting/vertex-index", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
