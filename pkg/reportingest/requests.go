package reportingest

// Request/Response DTOs

// UploadReportRequest contains parameters for one report upload
type UploadReportRequest struct {
	Content             []byte
	MimeType            string
	FileName            string
	ReportedFingerprint string

	Name     string
	Location Location
	Username string
	Type     string
	Detail   string
}

// UploadReportResponse echoes the validated and committed upload. Username
// and ReportType carry the normalized values as stored.
type UploadReportResponse struct {
	ReportID            int64         `json:"id"`
	FileName            string        `json:"filename"`
	MimeType            string        `json:"content_type"`
	Fingerprint         string        `json:"file_hash"`
	ReportedFingerprint string        `json:"reported_hash,omitempty"`
	Name                string        `json:"name"`
	Location            Location      `json:"location"`
	Username            string        `json:"username"`
	ReportType          string        `json:"type"`
	Detail              string        `json:"detail"`
	Blob                BlobReference `json:"blob"`
	ImageURL            string        `json:"image_url"`
}
