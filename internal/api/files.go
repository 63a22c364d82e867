package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"chat-client/internal/models"
)

// FileService covers media upload and download URLs.
type FileService interface {
	UploadFile(ctx context.Context, localPath string, msgType models.MessageType) (models.FileInfo, error)
	FileURL(filename string) string
}

type uploadResponse struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
}

// UploadFile streams a local file to the backend as multipart form data
// and returns the descriptor to embed in a media message's content.
func (c *Client) UploadFile(ctx context.Context, localPath string, msgType models.MessageType) (models.FileInfo, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return models.FileInfo{}, fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile("file", filepath.Base(localPath))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = form.WriteField("type", string(msgType))
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files/upload", pr)
	if err != nil {
		return models.FileInfo{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.decorate(req)

	var resp uploadResponse
	if err := c.send(req, "/files/upload", &resp); err != nil {
		return models.FileInfo{}, err
	}
	return models.FileInfo{
		Filename:     resp.Filename,
		OriginalName: resp.OriginalName,
		URL:          resp.URL,
		Size:         resp.Size,
		MimeType:     mime.TypeByExtension(filepath.Ext(localPath)),
	}, nil
}

// FileURL resolves a stored filename into an absolute download URL.
func (c *Client) FileURL(filename string) string {
	return c.baseURL + "/files/" + filename
}

var _ FileService = (*Client)(nil)
