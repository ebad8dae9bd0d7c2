package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-marketplace-api/internal/application"
	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
	"github.com/oksasatya/go-marketplace-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-marketplace-api/internal/infrastructure/upload"
	handlers "github.com/oksasatya/go-marketplace-api/internal/interface/http"
	"github.com/oksasatya/go-marketplace-api/internal/router"
	"github.com/oksasatya/go-marketplace-api/internal/router/modules"
	"github.com/oksasatya/go-marketplace-api/pkg/helpers"
	"github.com/oksasatya/go-marketplace-api/pkg/validation"
)

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testAPI struct {
	engine *gin.Engine
	tokens *helpers.TokenManager
}

func newTestAPI(t *testing.T, ttl time.Duration) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := helpers.NewLogger("test", "production")
	logger.SetOutput(io.Discard)

	tokens := helpers.NewTokenManager("test-secret", ttl)
	uploads, err := upload.NewLocal(t.TempDir())
	require.NoError(t, err)

	userSvc := application.NewUserService(memory.NewUserRepository(), tokens, nil, nil, logger)
	itemSvc := application.NewItemService(memory.NewItemRepository(), uploads, nil, "", nil, logger, true)

	engine := gin.New()
	reg := router.NewRegistry(engine)
	reg.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger), userSvc))
	reg.Add(modules.NewItemModule(handlers.NewItemHandler(itemSvc, logger), userSvc, tokens, false, false))
	reg.RegisterAll()

	return &testAPI{engine: engine, tokens: tokens}
}

func (a *testAPI) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func (a *testAPI) register(t *testing.T, username, password, email string) entity.User {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password, "email": email})
	req := httptest.NewRequest(http.MethodPost, "/user/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec, env := a.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var data struct {
		NewUser entity.User `json:"newUser"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.NewUser
}

func (a *testAPI) login(t *testing.T, username, password string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/user/login", nil)
	req.SetBasicAuth(username, password)
	rec, env := a.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func multipartItem(t *testing.T, fields map[string]string, imageNames ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, name := range imageNames {
		fw, err := w.CreateFormFile("image", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func itemFields() map[string]string {
	return map[string]string{
		"title":        "Testituote",
		"desc":         "Helvetin hyvä tuote",
		"category":     "Ajoneuvot",
		"location":     "Oulu",
		"price":        "99999.99",
		"date":         "2021-02-11",
		"deliveryType": "pickup",
		"name":         "Ossi",
		"tel":          "0129091249",
	}
}

func (a *testAPI) createItem(t *testing.T, token string, fields map[string]string, images ...string) (int, envelope) {
	t.Helper()
	body, contentType := multipartItem(t, fields, images...)
	req := httptest.NewRequest(http.MethodPost, "/item", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec, env := a.do(t, req)
	return rec.Code, env
}

func TestRegister_MissingFields(t *testing.T) {
	api := newTestAPI(t, time.Hour)

	body, _ := json.Marshal(map[string]string{"email": "x@example.com", "password": "pw"})
	req := httptest.NewRequest(http.MethodPost, "/user/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec, _ := api.do(t, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	api := newTestAPI(t, time.Hour)
	api.register(t, "ossi", "ossi123", "ossi@example.com")

	body, _ := json.Marshal(map[string]string{"username": "ossi", "password": "other", "email": "o2@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/user/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec, _ := api.do(t, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin_WrongCredentialsIndistinguishable(t *testing.T) {
	api := newTestAPI(t, time.Hour)
	api.register(t, "ossi", "ossi123", "ossi@example.com")

	wrongPass := httptest.NewRequest(http.MethodGet, "/user/login", nil)
	wrongPass.SetBasicAuth("ossi", "wrong")
	recPass, envPass := api.do(t, wrongPass)

	wrongUser := httptest.NewRequest(http.MethodGet, "/user/login", nil)
	wrongUser.SetBasicAuth("nobody", "ossi123")
	recUser, envUser := api.do(t, wrongUser)

	require.Equal(t, http.StatusUnauthorized, recPass.Code)
	require.Equal(t, http.StatusUnauthorized, recUser.Code)
	require.Equal(t, envPass.Message, envUser.Message, "401 responses must not reveal which part failed")
}

func TestListUsers_PasswordStoredAsHash(t *testing.T) {
	api := newTestAPI(t, time.Hour)
	api.register(t, "ossi", "ossi123", "ossi@example.com")

	rec, env := api.do(t, httptest.NewRequest(http.MethodGet, "/user", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Users []entity.User `json:"users"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Users, 1)
	require.NotEqual(t, "ossi123", data.Users[0].Password)
	require.True(t, helpers.CompareHashAndPassword(data.Users[0].Password, "ossi123"))
}

func TestCreateItem_RequiresToken(t *testing.T) {
	api := newTestAPI(t, time.Hour)

	code, _ := api.createItem(t, "", itemFields())
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestCreateItem_ExpiredTokenRejected(t *testing.T) {
	api := newTestAPI(t, time.Hour)
	u := api.register(t, "ossi", "ossi123", "ossi@example.com")

	expired := helpers.NewTokenManager("test-secret", -1*time.Second)
	tok, _, err := expired.Generate(&entity.User{ID: u.ID, Username: u.Username, Email: u.Email})
	require.NoError(t, err)

	code, _ := api.createItem(t, tok, itemFields())
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestCreateItem_ListsEveryMissingKey(t *testing.T) {
	api := newTestAPI(t, time.Hour)
	api.register(t, "ossi", "ossi123", "ossi@example.com")
	token := api.login(t, "ossi", "ossi123")

	fields := itemFields()
	delete(fields, "title")
	delete(fields, "tel")
	code, env := api.createItem(t, token, fields)
	require.Equal(t, http.StatusBadRequest, code)

	var details struct {
		Missing []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(env.Error, &details))
	require.Equal(t, []string{"title", "tel"}, details.Missing)
}

func TestCreateItem_WithImages(t *testing.T) {
	api := newTestAPI(t, time.Hour)
	api.register(t, "ossi", "ossi123", "ossi@example.com")
	token := api.login(t, "ossi", "ossi123")

	code, env := api.createItem(t, token, itemFields(), "a.jpg", "b.jpg")
	require.Equal(t, http.StatusCreated, code)

	var it entity.Item
	require.NoError(t, json.Unmarshal(env.Data, &it))
	require.Len(t, it.Images, 2)
}

func TestCreateItem_TooManyImages(t *testing.T) {
	api := newTestAPI(t, time.Hour)
	api.register(t, "ossi", "ossi123", "ossi@example.com")
	token := api.login(t, "ossi", "ossi123")

	code, _ := api.createItem(t, token, itemFields(), "a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestOwnership_ForbiddenForOtherUsers(t *testing.T) {
	api := newTestAPI(t, time.Hour)
	api.register(t, "alice", "alicepw1", "alice@example.com")
	api.register(t, "bob", "bobpw123", "bob@example.com")
	aliceTok := api.login(t, "alice", "alicepw1")
	bobTok := api.login(t, "bob", "bobpw123")

	code, env := api.createItem(t, aliceTok, itemFields())
	require.Equal(t, http.StatusCreated, code)
	var it entity.Item
	require.NoError(t, json.Unmarshal(env.Data, &it))

	// bob's valid token may not mutate alice's listing
	put := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/item/%d", it.ID), bytes.NewReader([]byte(`{"title":"X"}`)))
	put.Header.Set("Content-Type", "application/json")
	put.Header.Set("Authorization", "Bearer "+bobTok)
	rec, _ := api.do(t, put)
	require.Equal(t, http.StatusForbidden, rec.Code)

	del := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/item/%d", it.ID), nil)
	del.Header.Set("Authorization", "Bearer "+bobTok)
	rec, _ = api.do(t, del)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// a missing item is 404 even for a non-owner
	put404 := httptest.NewRequest(http.MethodPut, "/item/999", bytes.NewReader([]byte(`{"title":"X"}`)))
	put404.Header.Set("Content-Type", "application/json")
	put404.Header.Set("Authorization", "Bearer "+bobTok)
	rec, _ = api.do(t, put404)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearch(t *testing.T) {
	api := newTestAPI(t, time.Hour)
	api.register(t, "ossi", "ossi123", "ossi@example.com")
	token := api.login(t, "ossi", "ossi123")
	code, _ := api.createItem(t, token, itemFields())
	require.Equal(t, http.StatusCreated, code)

	rec, env := api.do(t, httptest.NewRequest(http.MethodGet, "/item/search/location/oulu", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Results []entity.Item `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Results, 1)

	rec, _ = api.do(t, httptest.NewRequest(http.MethodGet, "/item/search/color/red", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = api.do(t, httptest.NewRequest(http.MethodGet, "/item/search/location/helsinki", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEndToEndScenario(t *testing.T) {
	api := newTestAPI(t, time.Hour)

	u := api.register(t, "ossi", "ossi123", "ossi@example.com")
	token := api.login(t, "ossi", "ossi123")

	// create
	code, env := api.createItem(t, token, itemFields())
	require.Equal(t, http.StatusCreated, code)
	var created entity.Item
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, u.ID, created.OwnerID)
	require.EqualValues(t, 1, created.ID)

	// get returns the identical record
	rec, env := api.do(t, httptest.NewRequest(http.MethodGet, "/item/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Result entity.Item `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, created, got.Result)

	// partial update changes only desc
	put := httptest.NewRequest(http.MethodPut, "/item/1", bytes.NewReader([]byte(`{"desc":"new"}`)))
	put.Header.Set("Content-Type", "application/json")
	put.Header.Set("Authorization", "Bearer "+token)
	rec, env = api.do(t, put)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated entity.Item
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Equal(t, "new", updated.Desc)
	created.Desc = "new"
	require.Equal(t, created, updated)

	// update with no applicable keys
	putNone := httptest.NewRequest(http.MethodPut, "/item/1", bytes.NewReader([]byte(`{"color":"red"}`)))
	putNone.Header.Set("Content-Type", "application/json")
	putNone.Header.Set("Authorization", "Bearer "+token)
	rec, _ = api.do(t, putNone)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// delete, then gone
	del := httptest.NewRequest(http.MethodDelete, "/item/1", nil)
	del.Header.Set("Authorization", "Bearer "+token)
	rec, _ = api.do(t, del)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = api.do(t, httptest.NewRequest(http.MethodGet, "/item/1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
