package api_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetfix/report-ingest/internal/api"
	"github.com/streetfix/report-ingest/pkg/reportingest"
	memoryrepo "github.com/streetfix/report-ingest/pkg/reportingest/repo/memory"
	memorystorage "github.com/streetfix/report-ingest/pkg/reportingest/storage/memory"
	"github.com/streetfix/report-ingest/pkg/reportingest/urlstrategy"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc, err := reportingest.New(
		reportingest.WithRepository(memoryrepo.New()),
		reportingest.WithBlobStore(memorystorage.New("reports")),
		reportingest.WithURLStrategy(urlstrategy.NewPublicBaseStrategy("http://cdn.example.com/images")),
		reportingest.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)

	handler := api.NewReportHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)
	return srv
}

type uploadForm struct {
	content  []byte
	mimeType string
	filename string
	hash     string
	name     string
	location string
	username string
	repType  string
	detail   string
}

func defaultForm() uploadForm {
	content := []byte("fake png bytes")
	digest := sha256.Sum256(content)
	return uploadForm{
		content:  content,
		mimeType: "image/png",
		filename: "cat.png",
		hash:     hex.EncodeToString(digest[:]),
		name:     "Broken pavement",
		location: `{"latitude": 1, "longitude": 2}`,
		username: "alice ",
		repType:  "Pothole",
		detail:   "big hole",
	}
}

func postUpload(t *testing.T, srv *httptest.Server, form uploadForm) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, form.filename))
	hdr.Set("Content-Type", form.mimeType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(form.content)
	require.NoError(t, err)

	fields := map[string]string{
		"hash":     form.hash,
		"name":     form.name,
		"location": form.location,
		"username": form.username,
		"type":     form.repType,
		"detail":   form.detail,
	}
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/upload/", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestUploadEndpoint(t *testing.T) {
	srv := newTestServer(t)

	form := defaultForm()
	resp := postUpload(t, srv, form)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got reportingest.UploadReportResponse
	decodeJSON(t, resp, &got)

	assert.Equal(t, int64(1), got.ReportID)
	assert.Equal(t, form.hash, got.Fingerprint)
	assert.Equal(t, "image/png", got.MimeType)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "pothole", got.ReportType)
	assert.Equal(t, 1.0, got.Location.Latitude)
	assert.Equal(t, 2.0, got.Location.Longitude)
	assert.Contains(t, got.ImageURL, "http://cdn.example.com/images/")
	assert.Equal(t, "reports", got.Blob.Bucket)
	assert.NotEmpty(t, got.Blob.Key)
}

func TestUploadEndpointHashMismatch(t *testing.T) {
	srv := newTestServer(t)

	form := defaultForm()
	form.hash = "deadbeef"
	resp := postUpload(t, srv, form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got api.ErrorResponse
	decodeJSON(t, resp, &got)
	assert.Equal(t, "Hash mismatch", got.Detail)
}

func TestUploadEndpointUnsupportedMediaType(t *testing.T) {
	srv := newTestServer(t)

	form := defaultForm()
	form.mimeType = "application/pdf"
	form.filename = "report.pdf"
	form.hash = ""
	resp := postUpload(t, srv, form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got api.ErrorResponse
	decodeJSON(t, resp, &got)
	assert.Equal(t, "Unsupported media type", got.Detail)
}

func TestUploadEndpointMissingFile(t *testing.T) {
	srv := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "no file attached"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/upload/", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got api.ErrorResponse
	decodeJSON(t, resp, &got)
	assert.Equal(t, "file field is required", got.Detail)
}

func TestUploadEndpointMalformedLocation(t *testing.T) {
	srv := newTestServer(t)

	form := defaultForm()
	form.location = "not json"
	resp := postUpload(t, srv, form)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListEndpoint(t *testing.T) {
	srv := newTestServer(t)

	first := defaultForm()
	resp := postUpload(t, srv, first)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	second := defaultForm()
	second.content = []byte("another image")
	digest := sha256.Sum256(second.content)
	second.hash = hex.EncodeToString(digest[:])
	second.name = "Flooded underpass"
	second.repType = "Flooding"
	resp = postUpload(t, srv, second)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/reports")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var reports []api.ReportResponse
	decodeJSON(t, listResp, &reports)
	require.Len(t, reports, 2)

	assert.Equal(t, "Flooded underpass", reports[0].Name)
	assert.Equal(t, "flooding", reports[0].Type)
	assert.Equal(t, "Broken pavement", reports[1].Name)
	for _, report := range reports {
		assert.Contains(t, report.ImageURL, "http://cdn.example.com/images/")
		assert.NotEmpty(t, report.DateCreated)
	}
}

func TestListEndpointEmpty(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/reports")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reports []api.ReportResponse
	decodeJSON(t, resp, &reports)
	assert.Empty(t, reports)
}
