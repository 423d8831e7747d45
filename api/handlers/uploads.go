package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/safevoice-app/safevoice-api/config"
)

// maxUploadBytes caps resource document uploads at 10 MB
const maxUploadBytes = 10 << 20

var errUploadsDisabled = errors.New("CLOUDINARY_URL is not set")

// Upload handles Cloudinary related requests
type Upload struct {
	Cloudinary *cloudinary.Cloudinary
}

// NewUpload builds the upload handler from CLOUDINARY_URL. Returns a disabled
// handler when the env var is missing or malformed.
func NewUpload() Upload {
	url := os.Getenv("CLOUDINARY_URL")
	if url == "" {
		return Upload{}
	}
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return Upload{}
	}
	return Upload{Cloudinary: cld}
}

// GenerateSignature generates a signature for direct-to-Cloudinary uploads
// from the dashboard
func (u Upload) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	// Create the signature
	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	// Respond with the timestamp and signature
	response := map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type uploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// UploadDocumentHandler accepts a multipart file and stores it in Cloudinary,
// returning the public URL for use as a resource document link
func (u Upload) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if u.Cloudinary == nil {
		config.ErrorStatus("uploads are not configured", http.StatusServiceUnavailable, w, errUploadsDisabled)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("failed to read uploaded file", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	resp, err := u.Cloudinary.Upload.Upload(r.Context(), file, uploader.UploadParams{
		Folder:   "safevoice/resources",
		PublicID: header.Filename,
	})
	if err != nil {
		config.ErrorStatus("failed to upload document", http.StatusBadGateway, w, err)
		return
	}

	b, err := json.Marshal(uploadResponse{URL: resp.SecureURL, PublicID: resp.PublicID})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
