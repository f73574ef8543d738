package controllers

import (
	"encoding/json"
	"net/http"

	"mingle_server/services"
)

// S3Controller handles presigned photo URL requests
type S3Controller struct {
	S3 *services.S3Service
}

func NewS3Controller(s3Service *services.S3Service) *S3Controller {
	return &S3Controller{S3: s3Service}
}

// HandleUploadURL issues a presigned upload URL for a profile photo
func (sc *S3Controller) HandleUploadURL(w http.ResponseWriter, r *http.Request) {
	if _, err := currentUserID(r); err != nil {
		writeError(w, err)
		return
	}

	var request struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.FileName == "" || request.FileType == "" {
		http.Error(w, "fileName and fileType are required", http.StatusBadRequest)
		return
	}

	url, key, err := sc.S3.GenerateUploadURL(r.Context(), request.FileName, request.FileType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uploadUrl": url, "key": key})
}

// HandleReadURL issues a presigned read URL for a stored photo
func (sc *S3Controller) HandleReadURL(w http.ResponseWriter, r *http.Request) {
	if _, err := currentUserID(r); err != nil {
		writeError(w, err)
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}

	url, err := sc.S3.GenerateReadURL(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"readUrl": url})
}
