package httpapi_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpapi "qrmenu/menu-svc/internal/api/http"
	"qrmenu/menu-svc/internal/domain"
	"qrmenu/menu-svc/internal/mocks"
	"qrmenu/menu-svc/internal/service"
	"qrmenu/pkg/auth"
	"qrmenu/pkg/logger"
	"qrmenu/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	restID    = "6f1c1c52-5d7e-4c53-9a36-1f6f0c1f2a01"
	otherRest = "6f1c1c52-5d7e-4c53-9a36-1f6f0c1f2a99"
	catA      = "0b7a6a1e-0d22-4d41-8f8e-1b0a4b9d6a01"
	catB      = "0b7a6a1e-0d22-4d41-8f8e-1b0a4b9d6a02"
	itemA     = "a3c4d5e6-1111-4a2b-9c3d-000000000001"
)

var secret = []byte("handler-secret")

type fixture struct {
	owners      *mocks.OwnerRepository
	restaurants *mocks.RestaurantRepository
	menus       *mocks.MenuRepository
	tables      *mocks.TableRepository
	drafts      *mocks.DraftStore
	images      *mocks.ImageStore
	router      http.Handler
}

type stubQR struct{}

func (stubQR) Generate(content string, size int) ([]byte, error) {
	return []byte("\x89PNG" + content), nil
}

func newFixture() *fixture {
	f := &fixture{
		owners:      new(mocks.OwnerRepository),
		restaurants: new(mocks.RestaurantRepository),
		menus:       new(mocks.MenuRepository),
		tables:      new(mocks.TableRepository),
		drafts:      new(mocks.DraftStore),
		images:      new(mocks.ImageStore),
	}
	handler := httpapi.NewHandler(
		service.NewAuthService(f.owners, secret, time.Hour),
		service.NewRestaurantService(f.restaurants),
		service.NewMenuService(f.menus, f.restaurants, f.tables),
		service.NewTableService(f.tables),
		service.NewQRService("https://menu.example.com", stubQR{}, f.restaurants, f.tables),
		service.NewDraftService(f.drafts),
		service.NewImageService(f.images),
		validator.New(),
		logger.NewNop(),
		secret,
	)
	f.router = httpapi.NewRouter(handler, metrics.NewHTTP("menu-svc"))
	return f
}

func ownerToken(t *testing.T, restaurantID string) string {
	t.Helper()
	token, err := auth.GenToken("owner-1", restaurantID, secret, time.Hour)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, method, path, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	f := newFixture()
	w := f.do(t, "GET", "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service":"menu-svc"`)
}

func TestSignupHandler(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(*mocks.OwnerRepository)
		wantCode  int
	}{
		{
			name: "valid request",
			body: `{"email":"chef@example.com","password":"long-enough","restaurant_name":"Bistro"}`,
			setupMock: func(m *mocks.OwnerRepository) {
				m.On("CreateOwnerWithRestaurant", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
			},
			wantCode: http.StatusCreated,
		},
		{
			name:      "invalid JSON",
			body:      `{invalid}`,
			setupMock: func(m *mocks.OwnerRepository) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "short password",
			body:      `{"email":"chef@example.com","password":"short","restaurant_name":"Bistro"}`,
			setupMock: func(m *mocks.OwnerRepository) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "bad email",
			body:      `{"email":"chef","password":"long-enough","restaurant_name":"Bistro"}`,
			setupMock: func(m *mocks.OwnerRepository) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "database error",
			body: `{"email":"chef@example.com","password":"long-enough","restaurant_name":"Bistro"}`,
			setupMock: func(m *mocks.OwnerRepository) {
				m.On("CreateOwnerWithRestaurant", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture()
			testCase.setupMock(f.owners)

			w := f.do(t, "POST", "/api/auth/signup", "", []byte(testCase.body))

			assert.Equal(t, testCase.wantCode, w.Code)
			f.owners.AssertExpectations(t)
		})
	}
}

func TestLoginHandlerRejectsUnknownEmail(t *testing.T) {
	f := newFixture()
	f.owners.On("GetOwnerByEmail", mock.Anything, "chef@example.com").Return(nil, "", sql.ErrNoRows).Once()

	w := f.do(t, "POST", "/api/auth/login", "", []byte(`{"email":"chef@example.com","password":"whatever"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOwnerRoutesRequireToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wantCode int
	}{
		{name: "missing token", wantCode: http.StatusUnauthorized},
		{name: "garbage token", token: "abc", wantCode: http.StatusUnauthorized},
		{name: "other restaurant", token: "other", wantCode: http.StatusForbidden},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture()
			token := testCase.token
			if token == "other" {
				token = ownerToken(t, otherRest)
			}

			w := f.do(t, "GET", "/api/restaurants/"+restID+"/menu/editor", token, nil)
			assert.Equal(t, testCase.wantCode, w.Code)
			f.menus.AssertNotCalled(t, "LoadMenu", mock.Anything, mock.Anything)
		})
	}
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		owner  bool
	}{
		{name: "restaurant", method: "GET", path: "/api/restaurants/not-a-uuid"},
		{name: "preview menu from a mistyped QR link", method: "GET", path: "/api/restaurants/not-a-uuid/menu?table=2"},
		{name: "table qrcode", method: "GET", path: "/api/restaurants/42/tables/1/qrcode"},
		{name: "category delete", method: "DELETE", path: "/api/restaurants/" + restID + "/categories/drinks", owner: true},
		{name: "item toggle", method: "PATCH", path: "/api/restaurants/" + restID + "/items/tea", owner: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture()
			token := ""
			if testCase.owner {
				token = ownerToken(t, restID)
			}

			w := f.do(t, testCase.method, testCase.path, token, []byte(`{}`))

			assert.Equal(t, http.StatusNotFound, w.Code)
			f.restaurants.AssertExpectations(t)
			f.menus.AssertExpectations(t)
			f.tables.AssertExpectations(t)
		})
	}
}

func TestGetMenuHandler(t *testing.T) {
	menu := &domain.Menu{Categories: []domain.Category{{ID: catA, Name: "Drinks", Items: []domain.Item{
		{ID: itemA, Name: "Tea", Price: 2, IsVisible: true, IsAvailable: true},
		{ID: "a3c4d5e6-1111-4a2b-9c3d-000000000002", Name: "Hidden", IsVisible: false},
	}}}}

	tests := []struct {
		name     string
		query    string
		setup    func(f *fixture)
		wantCode int
	}{
		{
			name: "guest menu",
			setup: func(f *fixture) {
				f.restaurants.On("GetRestaurant", mock.Anything, restID).Return(&domain.Restaurant{ID: restID}, nil).Once()
				f.menus.On("LoadMenu", mock.Anything, restID).Return(menu, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "bad table parameter",
			query:    "?table=abc",
			setup:    func(f *fixture) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:  "unknown table",
			query: "?table=12",
			setup: func(f *fixture) {
				f.restaurants.On("GetRestaurant", mock.Anything, restID).Return(&domain.Restaurant{ID: restID}, nil).Once()
				f.tables.On("GetTable", mock.Anything, restID, 12).Return(nil, sql.ErrNoRows).Once()
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "unknown restaurant",
			setup: func(f *fixture) {
				f.restaurants.On("GetRestaurant", mock.Anything, restID).Return(nil, sql.ErrNoRows).Once()
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture()
			testCase.setup(f)

			w := f.do(t, "GET", "/api/restaurants/"+restID+"/menu"+testCase.query, "", nil)
			assert.Equal(t, testCase.wantCode, w.Code)

			if w.Code == http.StatusOK {
				var got domain.Menu
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				require.Len(t, got.Categories, 1)
				assert.Len(t, got.Categories[0].Items, 1)
			}
		})
	}
}

func TestSaveMenuHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setup    func(f *fixture)
		wantCode int
	}{
		{
			name: "new menu",
			body: `{"categories":[{"name":"Drinks","items":[{"name":"Tea","price":2}]}],"addon_groups":[]}`,
			setup: func(f *fixture) {
				f.menus.On("LoadMenu", mock.Anything, restID).Return(&domain.Menu{}, nil).Once()
				f.menus.On("ApplyChanges", mock.Anything, restID, mock.AnythingOfType("domain.ChangeSet")).Return(nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "invalid menu",
			body:     `{"categories":[{"name":"","items":[]}]}`,
			setup:    func(f *fixture) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed JSON",
			body:     `{"categories":`,
			setup:    func(f *fixture) {},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture()
			f.restaurants.On("GetRestaurant", mock.Anything, restID).Return(&domain.Restaurant{ID: restID}, nil).Maybe()
			testCase.setup(f)

			w := f.do(t, "PUT", "/api/restaurants/"+restID+"/menu", ownerToken(t, restID), []byte(testCase.body))
			assert.Equal(t, testCase.wantCode, w.Code)
			f.menus.AssertExpectations(t)

			if w.Code == http.StatusOK {
				var result domain.SaveResult
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
				assert.Equal(t, domain.SaveResult{Added: 2}, result)
			}
		})
	}
}

func TestReorderCategoriesHandler(t *testing.T) {
	menu := &domain.Menu{Categories: []domain.Category{{ID: catA}, {ID: catB}}}

	tests := []struct {
		name     string
		body     string
		wantCall bool
		wantCode int
	}{
		{name: "swap", body: `{"ids":["` + catB + `","` + catA + `"]}`, wantCall: true, wantCode: http.StatusNoContent},
		{name: "not uuids", body: `{"ids":["a","b"]}`, wantCode: http.StatusBadRequest},
		{name: "incomplete", body: `{"ids":["` + catB + `"]}`, wantCall: true, wantCode: http.StatusBadRequest},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture()
			if testCase.wantCall {
				f.menus.On("LoadMenu", mock.Anything, restID).Return(menu, nil).Once()
				f.menus.On("ReorderCategories", mock.Anything, restID, []string{catB, catA}).Return(nil).Maybe()
			}

			w := f.do(t, "PUT", "/api/restaurants/"+restID+"/categories/order", ownerToken(t, restID), []byte(testCase.body))
			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}

func TestDeleteItemHandler(t *testing.T) {
	f := newFixture()
	f.menus.On("DeleteItem", mock.Anything, restID, itemA).Return(nil).Once()
	missing := "a3c4d5e6-1111-4a2b-9c3d-0000000000ff"
	f.menus.On("DeleteItem", mock.Anything, restID, missing).Return(sql.ErrNoRows).Once()

	w := f.do(t, "DELETE", "/api/restaurants/"+restID+"/items/"+itemA, ownerToken(t, restID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, "DELETE", "/api/restaurants/"+restID+"/items/"+missing, ownerToken(t, restID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	f.menus.AssertExpectations(t)
}

func TestPatchItemHandler(t *testing.T) {
	f := newFixture()
	f.menus.On("SetItemFlags", mock.Anything, restID, itemA, mock.AnythingOfType("*bool"), (*bool)(nil)).
		Return(&domain.Item{ID: itemA, IsAvailable: false, IsVisible: true}, nil).Once()

	w := f.do(t, "PATCH", "/api/restaurants/"+restID+"/items/"+itemA, ownerToken(t, restID), []byte(`{"is_available":false}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_available":false`)

	w = f.do(t, "PATCH", "/api/restaurants/"+restID+"/items/"+itemA, ownerToken(t, restID), []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.menus.AssertExpectations(t)
}

func TestResizeTablesHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCall bool
		wantCode int
	}{
		{name: "three tables", body: `{"count":3}`, wantCall: true, wantCode: http.StatusOK},
		{name: "zero tables", body: `{"count":0}`, wantCall: true, wantCode: http.StatusOK},
		{name: "missing count", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "too many", body: `{"count":501}`, wantCode: http.StatusBadRequest},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture()
			if testCase.wantCall {
				f.tables.On("ResizeTables", mock.Anything, restID, mock.AnythingOfType("int")).
					Return([]domain.Table{}, nil).Once()
			}

			w := f.do(t, "PUT", "/api/restaurants/"+restID+"/tables", ownerToken(t, restID), []byte(testCase.body))
			assert.Equal(t, testCase.wantCode, w.Code)
			f.tables.AssertExpectations(t)
		})
	}
}

func TestTableQRCodeHandler(t *testing.T) {
	f := newFixture()
	f.tables.On("GetTable", mock.Anything, restID, 3).Return(&domain.Table{Number: 3}, nil).Once()

	w := f.do(t, "GET", "/api/restaurants/"+restID+"/tables/3/qrcode?download=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "table-3-qr.png")
	assert.Contains(t, w.Body.String(), "/menu-preview/"+restID+"?table=3")

	w = f.do(t, "GET", "/api/restaurants/"+restID+"/tables/x/qrcode", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, "GET", "/api/restaurants/"+restID+"/qrcode?size=5000", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDraftHandlers(t *testing.T) {
	f := newFixture()
	token := ownerToken(t, restID)
	f.drafts.On("GetDraft", mock.Anything, restID).Return(nil, nil).Once()
	f.drafts.On("PutDraft", mock.Anything, restID, []byte(`{"step":2}`)).Return(nil).Once()

	w := f.do(t, "GET", "/api/restaurants/"+restID+"/draft", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, "PUT", "/api/restaurants/"+restID+"/draft", token, []byte(`{"step":2}`))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, "PUT", "/api/restaurants/"+restID+"/draft", token, []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, "PUT", "/api/restaurants/"+restID+"/draft", token, bytes.Repeat([]byte("a"), service.MaxDraftBytes+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	f.drafts.AssertExpectations(t)
}

func TestUploadImageHandler(t *testing.T) {
	build := func(field string, content []byte) (*bytes.Buffer, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(field, "photo.png")
		require.NoError(t, err)
		part.Write(content)
		mw.Close()
		return &buf, mw.FormDataContentType()
	}
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name     string
		field    string
		content  []byte
		wantCall bool
		wantCode int
	}{
		{name: "png", field: "image", content: png, wantCall: true, wantCode: http.StatusCreated},
		{name: "wrong field", field: "file", content: png, wantCode: http.StatusBadRequest},
		{name: "not an image", field: "image", content: []byte("plain text"), wantCode: http.StatusBadRequest},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture()
			if testCase.wantCall {
				f.images.On("PutObject", mock.Anything, mock.AnythingOfType("string"), "image/png", mock.Anything, int64(len(png))).
					Return("https://cdn.example.com/x.png", nil).Once()
			}

			body, contentType := build(testCase.field, testCase.content)
			req := httptest.NewRequest("POST", "/api/restaurants/"+restID+"/uploads", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set("Authorization", "Bearer "+ownerToken(t, restID))
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)

			assert.Equal(t, testCase.wantCode, w.Code)
			if testCase.wantCall {
				assert.JSONEq(t, `{"image_url":"https://cdn.example.com/x.png"}`, w.Body.String())
			}
			f.images.AssertExpectations(t)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture()
	f.do(t, "GET", "/health", "", nil)

	w := f.do(t, "GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `qrmenu_http_requests_total`)
}
