package handlers

import (
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"taskboard/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSize = 5 << 20

// imageFormats maps accepted extensions to the format image.DecodeConfig
// must report for the file body.
var imageFormats = map[string]string{
	".jpg": "jpeg", ".jpeg": "jpeg", ".png": "png", ".gif": "gif",
}

const invalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// uploadedImage returns the optional image in field. A missing file is not
// an error; the message is set when the upload is present but unusable.
func uploadedImage(c *gin.Context, field string) (*multipart.FileHeader, string) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, ""
		}
		return nil, "The submitted data was not a file."
	}
	want, ok := imageFormats[strings.ToLower(filepath.Ext(fh.Filename))]
	if !ok {
		return nil, invalidImage
	}
	if fh.Size > maxUploadSize {
		return nil, "The uploaded file is too large (max 5 MB)."
	}
	if format, err := imageFormat(fh); err != nil || format != want {
		return nil, invalidImage
	}
	return fh, ""
}

func imageFormat(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	return format, err
}

// saveUpload stores fh under MediaDir/dir with a random name and returns
// the media-relative path.
func saveUpload(c *gin.Context, fh *multipart.FileHeader, dir string) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	if err := os.MkdirAll(filepath.Join(opts.MediaDir, dir), 0o755); err != nil {
		return "", err
	}
	if err := c.SaveUploadedFile(fh, filepath.Join(opts.MediaDir, dir, name)); err != nil {
		return "", err
	}
	return path.Join(dir, name), nil
}

// removeUpload deletes a stored upload. The bundled placeholders are never
// touched.
func removeUpload(rel string) {
	if rel == "" || rel == models.DefaultTaskAsset || rel == models.DefaultProfileImage {
		return
	}
	_ = os.Remove(filepath.Join(opts.MediaDir, filepath.FromSlash(rel)))
}
