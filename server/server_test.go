package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Daskott/tapcard/server/auth/key"
	"github.com/Daskott/tapcard/server/gstorage"
	"github.com/Daskott/tapcard/server/models"
	"github.com/Daskott/tapcard/server/work"
	"github.com/Daskott/tapcard/shared"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type fakeSmsSender struct {
	mu       sync.Mutex
	messages map[string]string
}

func (f *fakeSmsSender) SendMessage(to, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[to] = msg
	return nil
}

type fakeObjectStore struct {
	uploads   []string
	downloads []string
}

func (f *fakeObjectStore) UploadFile(ctx context.Context, bucket, object, filePath string) error {
	f.uploads = append(f.uploads, bucket+"/"+object)
	return nil
}

func (f *fakeObjectStore) DownloadFile(ctx context.Context, bucket, object, destFileName string) error {
	f.downloads = append(f.downloads, bucket+"/"+object)
	return gstorage.ErrObjectNotExist
}

type testResponse struct {
	Errors  []string        `json:"errors"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func setupTestServer(t *testing.T) *mux.Router {
	t.Helper()
	var err error

	models.InitializeTestDb()

	validate = validator.New()
	require.Nil(t, RegisterValidators(validate))

	authKeyPair, err = key.GenerateKeyPair(1024)
	require.Nil(t, err)

	serverConfig = shared.ServerConfig{
		Tapcard: shared.TapcardConfig{PublicURL: "https://tapcard.example/"},
		Google: shared.GoogleConfig{Storage: shared.StorageConfig{
			Bucket: "tapcard", Prefix: "tapcard-test", EnableSqliteBackupAndSync: true,
		}},
	}

	workerPool, err = work.NewWorkerAdapter("UTC")
	require.Nil(t, err)

	smsClient = &fakeSmsSender{messages: make(map[string]string)}
	objectStore = &fakeObjectStore{}
	configDir = t.TempDir()

	return newRouter()
}

func doRequest(router http.Handler, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.Nil(t, err)
		body = bytes.NewReader(data)
	}

	return doRequest(router, method, path, token, body, "application/json")
}

func doUpload(t *testing.T, router http.Handler, path, token, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "upload.vcf")
	require.Nil(t, err)
	_, err = part.Write([]byte(content))
	require.Nil(t, err)

	for name, value := range fields {
		require.Nil(t, writer.WriteField(name, value))
	}
	require.Nil(t, writer.Close())

	return doRequest(router, http.MethodPost, path, token, body, writer.FormDataContentType())
}

// decodeResponse unmarshals the response envelope & its data into data, if given.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) testResponse {
	t.Helper()

	response := testResponse{}
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), &response), rec.Body.String())

	if data != nil {
		require.Nil(t, json.Unmarshal(response.Data, data), string(response.Data))
	}
	return response
}

// createUserAndLogIn creates a user (with adminToken unless it is the first
// user) & returns the user id with a fresh token.
func createUserAndLogIn(t *testing.T, router http.Handler, adminToken, email, phoneNumber string) (uint, string) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/users", adminToken, map[string]string{
		"first_name":   "Ada",
		"last_name":    "Lovelace",
		"email":        email,
		"phone_number": phoneNumber,
		"password":     "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	user := models.User{}
	decodeResponse(t, rec, &user)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    email,
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := map[string]string{}
	decodeResponse(t, rec, &data)

	return user.ID, data["token"]
}

func userPath(userID uint, path string) string {
	return fmt.Sprintf("/api/v1/users/%v%s", userID, path)
}
