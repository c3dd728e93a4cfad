package reportingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetfix/report-ingest/pkg/reportingest"
)

func TestValidateMediaTypes(t *testing.T) {
	v := reportingest.NewValidator()
	content := []byte("not really an image")

	tests := []struct {
		name     string
		mimeType string
		fileName string
		wantErr  error
		wantExt  string
	}{
		{name: "png", mimeType: "image/png", fileName: "cat.png", wantExt: ".png"},
		{name: "jpeg", mimeType: "image/jpeg", fileName: "cat.jpg", wantExt: ".jpg"},
		{name: "gif", mimeType: "image/gif", fileName: "cat.gif", wantExt: ".gif"},
		{name: "webp", mimeType: "image/webp", fileName: "cat.webp", wantExt: ".webp"},
		{name: "pdf rejected", mimeType: "application/pdf", fileName: "cat.pdf", wantErr: reportingest.ErrUnsupportedMediaType},
		{name: "text rejected", mimeType: "text/plain", fileName: "cat.txt", wantErr: reportingest.ErrUnsupportedMediaType},
		{name: "empty rejected", mimeType: "", fileName: "cat.png", wantErr: reportingest.ErrUnsupportedMediaType},
		{name: "jpg file declared png", mimeType: "image/png", fileName: "cat.jpg", wantErr: reportingest.ErrExtensionMismatch},
		{name: "png file declared jpeg", mimeType: "image/jpeg", fileName: "cat.png", wantErr: reportingest.ErrExtensionMismatch},
		{name: "no extension", mimeType: "image/png", fileName: "cat", wantErr: reportingest.ErrExtensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact, err := v.Validate(content, tt.mimeType, tt.fileName, "")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, artifact)
				assert.True(t, reportingest.IsValidationError(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, artifact.Extension)
			assert.Equal(t, tt.fileName, artifact.FileName)
			assert.Equal(t, reportingest.Fingerprint(content), artifact.Fingerprint)
		})
	}
}

func TestValidateFingerprint(t *testing.T) {
	content := []byte("image bytes")
	good := reportingest.Fingerprint(content)

	t.Run("matching fingerprint passes", func(t *testing.T) {
		v := reportingest.NewValidator()
		artifact, err := v.Validate(content, "image/png", "cat.png", good)
		require.NoError(t, err)
		assert.Equal(t, good, artifact.Fingerprint)
	})

	t.Run("mismatched fingerprint fails", func(t *testing.T) {
		v := reportingest.NewValidator()
		_, err := v.Validate(content, "image/png", "cat.png", "83aff88e5e663b65e51d869daf87037ad4949dd987f7da861f908cb59f547000")
		assert.ErrorIs(t, err, reportingest.ErrFingerprintMismatch)
	})

	t.Run("absent fingerprint is not checked", func(t *testing.T) {
		v := reportingest.NewValidator()
		_, err := v.Validate(content, "image/png", "cat.png", "")
		assert.NoError(t, err)
	})

	t.Run("check can be disabled", func(t *testing.T) {
		v := reportingest.NewValidator(reportingest.WithoutFingerprintCheck())
		_, err := v.Validate(content, "image/png", "cat.png", "wrong")
		assert.NoError(t, err)
	})

	t.Run("media type check can be disabled independently", func(t *testing.T) {
		v := reportingest.NewValidator(reportingest.WithoutMediaTypeCheck())
		artifact, err := v.Validate(content, "application/pdf", "cat.pdf", good)
		require.NoError(t, err)
		assert.Empty(t, artifact.Extension)

		_, err = v.Validate(content, "application/pdf", "cat.pdf", "wrong")
		assert.ErrorIs(t, err, reportingest.ErrFingerprintMismatch)
	})
}

func TestNotificationEventValidate(t *testing.T) {
	valid := reportingest.NotificationEvent{
		Type:     "Pothole",
		ID:       "abc.png",
		ImageURL: "https://img.example.com/abc.png",
		ReportID: 7,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*reportingest.NotificationEvent)
	}{
		{"missing type", func(e *reportingest.NotificationEvent) { e.Type = "" }},
		{"missing id", func(e *reportingest.NotificationEvent) { e.ID = "" }},
		{"missing image_url", func(e *reportingest.NotificationEvent) { e.ImageURL = "" }},
		{"missing report_id", func(e *reportingest.NotificationEvent) { e.ReportID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := valid
			tt.mutate(&event)
			assert.ErrorIs(t, event.Validate(), reportingest.ErrEventInvalid)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "alice", reportingest.NormalizeUsername("alice "))
	assert.Equal(t, "alice", reportingest.NormalizeUsername("  alice"))
	assert.Equal(t, "pothole", reportingest.NormalizeReportType("Pothole"))
	assert.Equal(t, "pothole", reportingest.NormalizeReportType(" POTHOLE "))
}
