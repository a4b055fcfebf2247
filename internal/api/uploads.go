package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// InitializeUpload starts an upload session for one sequence of files and
// returns the session id plus one presigned target per part.
func (c *Client) InitializeUpload(ctx context.Context, req InitializeUploadRequest) (*InitializeUploadResponse, error) {
	var out InitializeUploadResponse
	if err := c.do(ctx, http.MethodPost, "/uploads", req, &out); err != nil {
		return nil, fmt.Errorf("initializing upload: %w", err)
	}
	if out.UploadID == "" {
		return nil, fmt.Errorf("initializing upload: server returned no upload id")
	}
	return &out, nil
}

// CompleteUpload finalizes the successfully transferred files of a sequence.
// A 503 reply means the server accepted the completion for asynchronous
// processing and is treated as success.
func (c *Client) CompleteUpload(ctx context.Context, uploadID string, req CompleteUploadRequest) (*CompleteUploadResponse, error) {
	var out CompleteUploadResponse
	err := c.do(ctx, http.MethodPost, "/uploads/"+uploadID+"/complete", req, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
			return &CompleteUploadResponse{
				Message:                "Upload completion accepted for asynchronous processing",
				UploadID:               uploadID,
				OverallSuccess:         true,
				AsynchronousProcessing: true,
				Note:                   "The server is throttling completions; this upload will be processed asynchronously.",
			}, nil
		}
		return nil, fmt.Errorf("completing upload %s: %w", uploadID, err)
	}
	return &out, nil
}

// GetDownloadTarget resolves a presigned GET URL for one file of an asset.
// An empty versionID resolves the current version.
func (c *Client) GetDownloadTarget(ctx context.Context, databaseID, assetID, key, versionID string) (*DownloadTarget, error) {
	body := map[string]string{"key": key}
	if versionID != "" {
		body["versionId"] = versionID
	}
	var out DownloadTarget
	path := fmt.Sprintf("/database/%s/assets/%s/download", databaseID, assetID)
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, fmt.Errorf("resolving download target for %s: %w", key, err)
	}
	out.Key = key
	return &out, nil
}

// ListFiles pages through an asset's file listing until exhausted.
func (c *Client) ListFiles(ctx context.Context, databaseID, assetID string) ([]RemoteFile, error) {
	path := fmt.Sprintf("/database/%s/assets/%s/listFiles", databaseID, assetID)

	var files []RemoteFile
	token := ""
	for {
		var out ListFilesResponse
		p := path
		if token != "" {
			p += "?startingToken=" + token
		}
		if err := c.do(ctx, http.MethodGet, p, nil, &out); err != nil {
			return nil, fmt.Errorf("listing files: %w", err)
		}
		files = append(files, out.Items...)
		if out.NextToken == "" {
			return files, nil
		}
		token = out.NextToken
	}
}

// GetFileInfo fetches the detail record of one file in an asset.
func (c *Client) GetFileInfo(ctx context.Context, databaseID, assetID, relativeKey string) (*RemoteFile, error) {
	var out RemoteFile
	path := fmt.Sprintf("/database/%s/assets/%s/fileInfo?relativeKey=%s", databaseID, assetID, url.QueryEscape(relativeKey))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("getting file info for %s: %w", relativeKey, err)
	}
	return &out, nil
}

// CreateFolder creates a folder marker inside an asset.
func (c *Client) CreateFolder(ctx context.Context, databaseID, assetID, relativeKey string) error {
	path := fmt.Sprintf("/database/%s/assets/%s/createFolder", databaseID, assetID)
	return c.do(ctx, http.MethodPost, path, map[string]string{"relativeKey": relativeKey}, nil)
}

// MoveFile renames or relocates a file within an asset.
func (c *Client) MoveFile(ctx context.Context, databaseID, assetID, sourceKey, destKey string) error {
	path := fmt.Sprintf("/database/%s/assets/%s/moveFile", databaseID, assetID)
	body := map[string]string{"sourceKey": sourceKey, "destinationKey": destKey}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// CopyFile copies a file within an asset.
func (c *Client) CopyFile(ctx context.Context, databaseID, assetID, sourceKey, destKey string) error {
	path := fmt.Sprintf("/database/%s/assets/%s/copyFile", databaseID, assetID)
	body := map[string]string{"sourceKey": sourceKey, "destinationKey": destKey}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// DeleteFile removes a file from an asset.
func (c *Client) DeleteFile(ctx context.Context, databaseID, assetID, relativeKey string) error {
	path := fmt.Sprintf("/database/%s/assets/%s/deleteFile", databaseID, assetID)
	return c.do(ctx, http.MethodPost, path, map[string]string{"relativeKey": relativeKey}, nil)
}

// SetPrimaryFile marks a file as the asset's primary file.
func (c *Client) SetPrimaryFile(ctx context.Context, databaseID, assetID, relativeKey string) error {
	path := fmt.Sprintf("/database/%s/assets/%s/setPrimaryFile", databaseID, assetID)
	return c.do(ctx, http.MethodPost, path, map[string]string{"relativeKey": relativeKey}, nil)
}
