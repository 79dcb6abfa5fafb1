package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/helixir/property-service/internal/domain"
	"github.com/helixir/property-service/internal/repository"
	"github.com/helixir/property-service/internal/service"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockPropertyService implements PropertyService for failure path tests.
type mockPropertyService struct {
	listFn   func(ctx context.Context, filter repository.PropertyFilter) ([]*domain.Property, error)
	getFn    func(ctx context.Context, id int64) (*domain.Property, error)
	createFn func(ctx context.Context, in domain.PropertyInput) (*domain.Property, error)
	updateFn func(ctx context.Context, id int64, in domain.PropertyInput) (*domain.Property, error)
	deleteFn func(ctx context.Context, id int64) error
	calls    int
}

func (m *mockPropertyService) List(ctx context.Context, filter repository.PropertyFilter) ([]*domain.Property, error) {
	m.calls++
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockPropertyService) Get(ctx context.Context, id int64) (*domain.Property, error) {
	m.calls++
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.NewNotFoundError(domain.EntityProperty, domain.FormatID(id))
}

func (m *mockPropertyService) Create(ctx context.Context, in domain.PropertyInput) (*domain.Property, error) {
	m.calls++
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return in.NewProperty(), nil
}

func (m *mockPropertyService) Update(ctx context.Context, id int64, in domain.PropertyInput) (*domain.Property, error) {
	m.calls++
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in)
	}
	return nil, domain.NewNotFoundError(domain.EntityProperty, domain.FormatID(id))
}

func (m *mockPropertyService) Delete(ctx context.Context, id int64) error {
	m.calls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// newTestHTTPServer creates a Server backed by the given service.
func newTestHTTPServer(svc PropertyService) *Server {
	return NewServer(Config{}, svc, nil, nil, zerolog.Nop())
}

// newSeededServer creates a Server over a memory store holding n properties.
// Odd ids are "House", even ids are "Townhouse".
func newSeededServer(t *testing.T, n int) *Server {
	t.Helper()
	repo := repository.NewMemoryPropertyRepository()
	for i := 1; i <= n; i++ {
		typ := "Townhouse"
		if i%2 == 1 {
			typ = "House"
		}
		_, err := repo.Create(context.Background(), &domain.Property{
			Address:   fmt.Sprintf("%d Harbour Road", i),
			Price:     float64(100000 + i),
			Bedrooms:  3,
			Bathrooms: 2,
			Type:      &typ,
		})
		if err != nil {
			t.Fatalf("seed property %d: %v", i, err)
		}
	}
	svc := service.NewPropertyService(repo, nil, zerolog.Nop())
	return newTestHTTPServer(svc)
}

// serveHTTP dispatches a request through the test server's router and returns the recorder.
func serveHTTP(s *Server, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, r)
	return rr
}

// decodeJSON decodes a JSON response body into the given target.
func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

// expectMessage asserts the status code and {"message": ...} body.
func expectMessage(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
	var resp errorResponse
	decodeJSON(t, rr, &resp)
	if resp.Message != message {
		t.Errorf("expected message %q, got %q", message, resp.Message)
	}
}

func listIDs(t *testing.T, srv *Server, target string) []int64 {
	t.Helper()
	rr := serveHTTP(srv, httptest.NewRequest(http.MethodGet, target, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d: %s", target, rr.Code, rr.Body.String())
	}
	var props []domain.Property
	decodeJSON(t, rr, &props)
	ids := make([]int64, len(props))
	for i, p := range props {
		ids[i] = p.ID
	}
	return ids
}

func idRange(from, to int64) []int64 {
	ids := make([]int64, 0, to-from+1)
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Tests: listProperties
// ---------------------------------------------------------------------------

func TestListProperties_Pagination(t *testing.T) {
	srv := newSeededServer(t, 126)

	tests := []struct {
		name   string
		target string
		want   []int64
	}{
		{"default page", "/properties", idRange(1, 100)},
		{"trailing slash", "/properties/", idRange(1, 100)},
		{"second page", "/properties?page=2", idRange(101, 126)},
		{"limit and page", "/properties?limit=10&page=3", idRange(21, 30)},
		{"limit capped at 100", "/properties?limit=500", idRange(1, 100)},
		{"zero limit uses default", "/properties?limit=0", idRange(1, 100)},
		{"non-numeric page uses first", "/properties?page=abc&limit=3", idRange(1, 3)},
		{"negative page uses first", "/properties?page=-4&limit=3", idRange(1, 3)},
		{"page past the end", "/properties?page=50", []int64{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := listIDs(t, srv, tc.target)
			if !equalIDs(got, tc.want) {
				t.Errorf("expected ids %v, got %v", tc.want, got)
			}
		})
	}
}

func TestListProperties_TypeFilter(t *testing.T) {
	srv := newSeededServer(t, 126)

	got := listIDs(t, srv, "/properties?type=Townhouse&limit=5")
	if want := []int64{2, 4, 6, 8, 10}; !equalIDs(got, want) {
		t.Errorf("expected ids %v, got %v", want, got)
	}

	got = listIDs(t, srv, "/properties?type=House&page=2&limit=3")
	if want := []int64{7, 9, 11}; !equalIDs(got, want) {
		t.Errorf("expected ids %v, got %v", want, got)
	}

	// Repeated type keys do not filter.
	got = listIDs(t, srv, "/properties?type=House&type=Townhouse&limit=4")
	if want := idRange(1, 4); !equalIDs(got, want) {
		t.Errorf("expected ids %v, got %v", want, got)
	}
}

func TestListProperties_UnknownTypeIsEmptyArray(t *testing.T) {
	srv := newSeededServer(t, 10)

	rr := serveHTTP(srv, httptest.NewRequest(http.MethodGet, "/properties?type=Fake", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestListProperties_PassesFilterToService(t *testing.T) {
	var captured repository.PropertyFilter
	svc := &mockPropertyService{
		listFn: func(_ context.Context, f repository.PropertyFilter) ([]*domain.Property, error) {
			captured = f
			return nil, nil
		},
	}
	srv := newTestHTTPServer(svc)

	rr := serveHTTP(srv, httptest.NewRequest(http.MethodGet, "/properties?page=4&limit=25&type=Condo", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("expected nil result rendered as [], got %s", rr.Body.String())
	}
	if captured.Limit != 25 || captured.Offset != 75 {
		t.Errorf("expected limit 25 offset 75, got limit %d offset %d", captured.Limit, captured.Offset)
	}
	if captured.Type == nil || *captured.Type != "Condo" {
		t.Errorf("expected type filter Condo, got %v", captured.Type)
	}
}

// ---------------------------------------------------------------------------
// Tests: getProperty
// ---------------------------------------------------------------------------

func TestGetProperty(t *testing.T) {
	srv := newSeededServer(t, 5)

	rr := serveHTTP(srv, httptest.NewRequest(http.MethodGet, "/properties/3", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var p domain.Property
	decodeJSON(t, rr, &p)
	if p.ID != 3 || p.Address != "3 Harbour Road" || p.TypeValue() != "House" {
		t.Errorf("unexpected property: %+v", p)
	}
}

func TestGetProperty_InvalidAndMissingIDs(t *testing.T) {
	srv := newSeededServer(t, 5)

	tests := []struct {
		name    string
		id      string
		status  int
		message string
	}{
		{"letters", "abc", http.StatusBadRequest, msgInvalidID},
		{"trailing letters", "12abc", http.StatusBadRequest, msgInvalidID},
		{"NaN", "NaN", http.StatusBadRequest, msgInvalidID},
		{"unknown id", "999", http.StatusNotFound, msgNotFound},
		{"fractional id", "1.5", http.StatusNotFound, msgNotFound},
		{"whole float id", "2.0", http.StatusOK, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := serveHTTP(srv, httptest.NewRequest(http.MethodGet, "/properties/"+tc.id, nil))
			if tc.status == http.StatusOK {
				if rr.Code != http.StatusOK {
					t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
				}
				return
			}
			expectMessage(t, rr, tc.status, tc.message)
		})
	}
}

func TestIDGuardedEndpoints_RejectNonNumericID(t *testing.T) {
	svc := &mockPropertyService{}
	srv := newTestHTTPServer(svc)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/properties/not-a-number", strings.NewReader(`{"price":1}`))
			expectMessage(t, serveHTTP(srv, req), http.StatusBadRequest, msgInvalidID)
		})
	}
	if svc.calls != 0 {
		t.Errorf("expected no service calls, got %d", svc.calls)
	}
}

// ---------------------------------------------------------------------------
// Tests: createProperty
// ---------------------------------------------------------------------------

func TestCreateProperty_Success(t *testing.T) {
	srv := newSeededServer(t, 2)

	body := `{"address":"9 Elm Avenue","price":450000,"bedrooms":3,"bathrooms":1.5,"type":"Condo","id":77}`
	rr := serveHTTP(srv, httptest.NewRequest(http.MethodPost, "/properties", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var p domain.Property
	decodeJSON(t, rr, &p)
	if p.ID != 3 {
		t.Errorf("expected store-assigned id 3, got %d", p.ID)
	}
	if p.Address != "9 Elm Avenue" || p.Price != 450000 || p.Bathrooms != 1.5 || p.TypeValue() != "Condo" {
		t.Errorf("unexpected property: %+v", p)
	}

	rr = serveHTTP(srv, httptest.NewRequest(http.MethodGet, "/properties/3", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected created property to be readable, got %d", rr.Code)
	}
}

func TestCreateProperty_WithoutTypeRendersNull(t *testing.T) {
	srv := newSeededServer(t, 0)

	body := `{"address":"1 Mill Lane","price":1,"bedrooms":0,"bathrooms":0}`
	rr := serveHTTP(srv, httptest.NewRequest(http.MethodPost, "/properties", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"type":null`) {
		t.Errorf("expected null type, got %s", rr.Body.String())
	}
}

func TestCreateProperty_ValidationMessages(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "empty object",
			body:    `{}`,
			message: "address is required, price is required, bedrooms is required, bathrooms is required",
		},
		{
			name:    "empty body",
			body:    ``,
			message: "address is required, price is required, bedrooms is required, bathrooms is required",
		},
		{
			name:    "two missing fields",
			body:    `{"address":"1 Main Street","bedrooms":2}`,
			message: "price is required, bathrooms is required",
		},
		{
			name:    "wrong types",
			body:    `{"address":5,"price":"cheap","bedrooms":1,"bathrooms":1,"type":3}`,
			message: "address must be a string, price must be a number, type must be a string",
		},
		{
			name:    "negative number",
			body:    `{"address":"x","price":-1,"bedrooms":1,"bathrooms":1}`,
			message: "price must be a positive number",
		},
		{
			name:    "null counts as wrong type",
			body:    `{"address":null,"price":1,"bedrooms":1,"bathrooms":1}`,
			message: "address must be a string",
		},
		{
			name:    "malformed JSON",
			body:    `{"address":`,
			message: msgInvalidJSON,
		},
		{
			name:    "array body",
			body:    `[1,2]`,
			message: msgInvalidJSON,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockPropertyService{}
			srv := newTestHTTPServer(svc)

			rr := serveHTTP(srv, httptest.NewRequest(http.MethodPost, "/properties", strings.NewReader(tc.body)))
			expectMessage(t, rr, http.StatusBadRequest, tc.message)
			if svc.calls != 0 {
				t.Errorf("expected validation to run before any service call")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Tests: updateProperty
// ---------------------------------------------------------------------------

func TestUpdateProperty_MergesSuppliedFields(t *testing.T) {
	srv := newSeededServer(t, 3)

	rr := serveHTTP(srv, httptest.NewRequest(http.MethodPut, "/properties/2", strings.NewReader(`{"price":555000,"type":"Villa"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var p domain.Property
	decodeJSON(t, rr, &p)
	if p.ID != 2 || p.Address != "2 Harbour Road" || p.Bedrooms != 3 || p.Bathrooms != 2 {
		t.Errorf("expected untouched fields to be preserved, got %+v", p)
	}
	if p.Price != 555000 || p.TypeValue() != "Villa" {
		t.Errorf("expected supplied fields to be applied, got %+v", p)
	}

	rr = serveHTTP(srv, httptest.NewRequest(http.MethodGet, "/properties/2", nil))
	var stored domain.Property
	decodeJSON(t, rr, &stored)
	if stored.Price != 555000 {
		t.Errorf("expected update to persist, got price %v", stored.Price)
	}
}

func TestUpdateProperty_Failures(t *testing.T) {
	srv := newSeededServer(t, 3)

	tests := []struct {
		name    string
		id      string
		body    string
		status  int
		message string
	}{
		{"unknown id", "42", `{"price":1}`, http.StatusNotFound, msgNotFound},
		{"negative value", "1", `{"bedrooms":-2}`, http.StatusBadRequest, "bedrooms must be a positive number"},
		{"wrong type", "1", `{"address":true}`, http.StatusBadRequest, "address must be a string"},
		{"malformed JSON", "1", `not json`, http.StatusBadRequest, msgInvalidJSON},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/properties/"+tc.id, strings.NewReader(tc.body))
			expectMessage(t, serveHTTP(srv, req), tc.status, tc.message)
		})
	}
}

func TestUpdateProperty_EmptyBodyIsNoop(t *testing.T) {
	srv := newSeededServer(t, 1)

	rr := serveHTTP(srv, httptest.NewRequest(http.MethodPut, "/properties/1", strings.NewReader(`{}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var p domain.Property
	decodeJSON(t, rr, &p)
	if p.Address != "1 Harbour Road" || p.Price != 100001 {
		t.Errorf("expected unchanged property, got %+v", p)
	}
}

// ---------------------------------------------------------------------------
// Tests: deleteProperty
// ---------------------------------------------------------------------------

func TestDeleteProperty(t *testing.T) {
	srv := newSeededServer(t, 3)

	rr := serveHTTP(srv, httptest.NewRequest(http.MethodDelete, "/properties/2", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rr.Body.String())
	}

	expectMessage(t, serveHTTP(srv, httptest.NewRequest(http.MethodGet, "/properties/2", nil)), http.StatusNotFound, msgNotFound)
	expectMessage(t, serveHTTP(srv, httptest.NewRequest(http.MethodDelete, "/properties/2", nil)), http.StatusNotFound, msgNotFound)

	got := listIDs(t, srv, "/properties")
	if want := []int64{1, 3}; !equalIDs(got, want) {
		t.Errorf("expected ids %v, got %v", want, got)
	}
}

// ---------------------------------------------------------------------------
// Tests: store failures
// ---------------------------------------------------------------------------

func TestStoreFailures_AreInternalErrors(t *testing.T) {
	storeErr := errors.New("connection reset by peer")
	svc := &mockPropertyService{
		listFn: func(context.Context, repository.PropertyFilter) ([]*domain.Property, error) {
			return nil, storeErr
		},
		getFn: func(context.Context, int64) (*domain.Property, error) {
			return nil, storeErr
		},
		createFn: func(context.Context, domain.PropertyInput) (*domain.Property, error) {
			return nil, storeErr
		},
		updateFn: func(context.Context, int64, domain.PropertyInput) (*domain.Property, error) {
			return nil, storeErr
		},
		deleteFn: func(context.Context, int64) error {
			return storeErr
		},
	}
	srv := newTestHTTPServer(svc)

	createBody := `{"address":"a","price":1,"bedrooms":1,"bathrooms":1}`
	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/properties", nil),
		httptest.NewRequest(http.MethodGet, "/properties/1", nil),
		httptest.NewRequest(http.MethodPost, "/properties", strings.NewReader(createBody)),
		httptest.NewRequest(http.MethodPut, "/properties/1", strings.NewReader(`{"price":2}`)),
		httptest.NewRequest(http.MethodDelete, "/properties/1", nil),
	}

	for _, req := range requests {
		t.Run(req.Method+" "+req.URL.Path, func(t *testing.T) {
			rr := serveHTTP(srv, req)
			if strings.Contains(rr.Body.String(), "connection reset") {
				t.Errorf("store error leaked to client: %s", rr.Body.String())
			}
			expectMessage(t, rr, http.StatusInternalServerError, msgInternalError)
		})
	}
}

func TestParseListQuery(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
		wantType   *string
	}{
		{"", 100, 0, nil},
		{"page=3", 100, 200, nil},
		{"page=2&limit=10", 10, 10, nil},
		{"limit=101", 100, 0, nil},
		{"limit=-1", 100, 0, nil},
		{"page=1.5&limit=x", 100, 0, nil},
		{"type=", 100, 0, ptr("")},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			f := parseListQuery(httptest.NewRequest(http.MethodGet, "/properties?"+tc.query, nil))
			if f.Limit != tc.wantLimit || f.Offset != tc.wantOffset {
				t.Errorf("expected limit %d offset %d, got limit %d offset %d", tc.wantLimit, tc.wantOffset, f.Limit, f.Offset)
			}
			switch {
			case tc.wantType == nil && f.Type != nil:
				t.Errorf("expected no type filter, got %q", *f.Type)
			case tc.wantType != nil && (f.Type == nil || *f.Type != *tc.wantType):
				t.Errorf("expected type filter %q, got %v", *tc.wantType, f.Type)
			}
		})
	}
}

func ptr(s string) *string { return &s }
