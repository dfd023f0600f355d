package receipt

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pantry-chef/internal/core/ai/provider"
	imageService "pantry-chef/internal/core/image"
	receiptService "pantry-chef/internal/core/receipt"
	"pantry-chef/mocks"
)

func pngBytes(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

type fixture struct {
	router *gin.Engine
	model  *mocks.MockVisionModel
	lister *mocks.MockModelLister
	store  *receiptService.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	gin.SetMode(gin.TestMode)

	model := new(mocks.MockVisionModel)
	model.On("Name").Return("gemini")
	lister := new(mocks.MockModelLister)
	store := receiptService.NewMemoryStore()

	svc := receiptService.NewService(model, []string{"m1", "m2"}, nil, store, false)
	h := NewHandler(svc, imageService.NewService(1<<20), lister, []string{"gemini", "openrouter"})

	r := gin.New()
	r.POST("/items/parse", h.HandleParse)
	r.POST("/items/compare", h.HandleCompare)
	r.GET("/items/models", h.HandleModels)
	r.GET("/items/health", h.HandleHealth)
	r.GET("/items/:receiptId", h.HandleGet)

	return &fixture{router: r, model: model, lister: lister, store: store}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) upload(t *testing.T, filename string, data []byte) *httptest.ResponseRecorder {
	body, ct := multipartBody(t, "receipt", filename, data)
	req := httptest.NewRequest(http.MethodPost, "/items/parse", body)
	req.Header.Set("Content-Type", ct)
	return f.do(req)
}

func TestHandleParse_Success(t *testing.T) {
	f := newFixture(t)
	f.model.On("GenerateFromImage", mock.Anything, mock.MatchedBy(func(req provider.ImageRequest) bool {
		return req.Model == "m1" && req.MimeType == "image/png"
	})).Return(`{"items":["Milk","milk ","Eggs"]}`, nil)

	w := f.upload(t, "receipt.png", pngBytes(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"milk", "eggs"}, resp.Items)
	assert.Equal(t, 2, resp.Meta.Count)
	assert.Equal(t, "1.0", resp.Meta.SchemaVersion)
	assert.Equal(t, "gemini", resp.Meta.Strategy)
	assert.Equal(t, "m1", resp.Meta.Model)
	require.NotNil(t, resp.Meta.Persisted)
	assert.Equal(t, 0, *resp.Meta.Persisted)
	assert.Regexp(t, `^r_\d+_1$`, resp.ReceiptID)
	assert.Empty(t, resp.RawText)

	w = f.do(httptest.NewRequest(http.MethodGet, "/items/"+resp.ReceiptID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":["milk","eggs"]`)
	assert.Contains(t, w.Body.String(), `"createdAt"`)
}

func TestHandleParse_AllModelsMissing(t *testing.T) {
	f := newFixture(t)
	f.model.On("GenerateFromImage", mock.Anything, mock.Anything).
		Return("", errors.New("models/x is not found for API version v1beta"))

	w := f.upload(t, "receipt.png", pngBytes(t))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "RECEIPT_PARSE_FAILED")
	assert.Contains(t, w.Body.String(), "All Gemini model candidates failed (tried: m1, m2)")
	assert.Equal(t, 0, f.store.Len())
}

func TestHandleParse_RejectsBadUploads(t *testing.T) {
	f := newFixture(t)

	w := f.upload(t, "receipt.txt", pngBytes(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_IMAGE")

	w = f.upload(t, "receipt.png", []byte("not an image at all"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct := multipartBody(t, "other", "receipt.png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/items/parse", body)
	req.Header.Set("Content-Type", ct)
	w = f.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.upload(t, "big.png", bytes.Repeat([]byte{0x89}, (1<<20)+10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	f.model.AssertNotCalled(t, "GenerateFromImage", mock.Anything, mock.Anything)
}

func TestHandleGet_NotFound(t *testing.T) {
	f := newFixture(t)
	w := f.do(httptest.NewRequest(http.MethodGet, "/items/r_0_0", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleCompare(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/items/compare",
		strings.NewReader(`{"manual":["Milk","eggs"],"llm":["milk","butter"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Comparison receiptService.Comparison `json:"comparison"`
		Meta       map[string]int            `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"milk"}, body.Comparison.Agreed)
	assert.Equal(t, []string{"eggs"}, body.Comparison.ManualOnly)
	assert.Equal(t, []string{"butter"}, body.Comparison.LLMOnly)
	assert.Equal(t, 1, body.Meta["agreedCount"])
	assert.Equal(t, 2, body.Meta["manualCount"])

	req = httptest.NewRequest(http.MethodPost, "/items/compare", strings.NewReader(`{"manual":["a"]}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)
}

func TestHandleModels_FiltersBySubstring(t *testing.T) {
	f := newFixture(t)
	f.lister.On("ListModels", mock.Anything).Return([]provider.ModelInfo{
		{Name: "models/gemini-2.5-pro", DisplayName: "Gemini 2.5 Pro"},
		{Name: "models/gemini-2.5-flash", DisplayName: "Gemini 2.5 Flash"},
		{Name: "models/embedding-001", DisplayName: "Embedding"},
	}, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/items/models?contains=FLASH", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count  int                  `json:"count"`
		Models []provider.ModelInfo `json:"models"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "models/gemini-2.5-flash", body.Models[0].Name)
}

func TestHandleModels_ProviderError(t *testing.T) {
	f := newFixture(t)
	f.lister.On("ListModels", mock.Anything).Return(nil, errors.New("403"))

	w := f.do(httptest.NewRequest(http.MethodGet, "/items/models", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(httptest.NewRequest(http.MethodGet, "/items/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"strategy":"gemini"`)
	assert.Contains(t, w.Body.String(), `"candidates":["m1","m2"]`)
}
