package api

// Upload protocol types. Field names follow the server's wire format; the
// part-level names are capitalized S3-style because the finalize payload is
// forwarded to the storage backend as-is.

// UploadFileManifest announces one file in an initialize-upload request.
type UploadFileManifest struct {
	RelativeKey string `json:"relativeKey"`
	FileSize    int64  `json:"file_size"`
	NumParts    int    `json:"num_parts"`
}

// InitializeUploadRequest starts an upload session for one sequence.
type InitializeUploadRequest struct {
	DatabaseID string               `json:"databaseId"`
	AssetID    string               `json:"assetId"`
	UploadType string               `json:"uploadType"`
	Files      []UploadFileManifest `json:"files"`
}

// PartTarget is one presigned upload endpoint issued for a part number.
type PartTarget struct {
	PartNumber int    `json:"partNumber"`
	UploadURL  string `json:"uploadUrl"`
}

// InitializedFile carries the per-file session id and part targets returned
// by the server.
type InitializedFile struct {
	RelativeKey string       `json:"relativeKey"`
	UploadIDS3  string       `json:"uploadIdS3"`
	PartTargets []PartTarget `json:"partUploadUrls"`
}

// InitializeUploadResponse is the server's answer to an initialize request.
type InitializeUploadResponse struct {
	UploadID string            `json:"uploadId"`
	Files    []InitializedFile `json:"files"`
}

// CompletedPart pairs a part number with the completion token captured from
// the part transfer response.
type CompletedPart struct {
	PartNumber int    `json:"PartNumber"`
	ETag       string `json:"ETag"`
}

// CompletedFile lists the successfully transferred parts of one file.
type CompletedFile struct {
	RelativeKey string          `json:"relativeKey"`
	UploadIDS3  string          `json:"uploadIdS3"`
	Parts       []CompletedPart `json:"parts"`
}

// CompleteUploadRequest finalizes a sequence's successfully uploaded files.
type CompleteUploadRequest struct {
	DatabaseID string          `json:"databaseId"`
	AssetID    string          `json:"assetId"`
	UploadType string          `json:"uploadType"`
	Files      []CompletedFile `json:"files"`
}

// CompleteUploadResponse reports finalize results. When the server answers
// 503 the completion is accepted for asynchronous processing and the client
// synthesizes a successful response with AsynchronousProcessing set.
type CompleteUploadResponse struct {
	Message                string `json:"message"`
	UploadID               string `json:"uploadId"`
	OverallSuccess         bool   `json:"overallSuccess"`
	AsynchronousProcessing bool   `json:"asynchronousProcessing"`
	Note                   string `json:"note,omitempty"`
}

// DownloadTarget is a presigned GET endpoint for one remote file.
type DownloadTarget struct {
	Key       string `json:"key"`
	URL       string `json:"downloadUrl"`
	ExpiresIn int    `json:"expiresIn"`
}

// RemoteFile describes one entry in an asset's file listing.
type RemoteFile struct {
	RelativePath string `json:"relativePath"`
	Size         int64  `json:"fileSize"`
	IsFolder     bool   `json:"isFolder"`
	VersionID    string `json:"versionId,omitempty"`
	PrimaryType  string `json:"primaryType,omitempty"`
	DateModified string `json:"dateCreatedCurrentVersion,omitempty"`
}

// ListFilesResponse is a page of an asset's file listing.
type ListFilesResponse struct {
	Items     []RemoteFile `json:"items"`
	NextToken string       `json:"nextToken,omitempty"`
}

// Asset is the control-plane view of an asset.
type Asset struct {
	DatabaseID      string   `json:"databaseId"`
	AssetID         string   `json:"assetId"`
	AssetName       string   `json:"assetName"`
	Description     string   `json:"description,omitempty"`
	AssetType       string   `json:"assetType,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	IsDistributable bool     `json:"isDistributable"`
	Status          string   `json:"status,omitempty"`
}

// Database is the control-plane view of an asset database.
type Database struct {
	DatabaseID  string `json:"databaseId"`
	Description string `json:"description,omitempty"`
	AssetCount  int    `json:"assetCount,omitempty"`
}

// SearchRequest is a simple term search over assets.
type SearchRequest struct {
	Query      string `json:"query"`
	DatabaseID string `json:"databaseId,omitempty"`
	From       int    `json:"from,omitempty"`
	Size       int    `json:"size,omitempty"`
}

// SearchResponse carries search hits.
type SearchResponse struct {
	Total int     `json:"total"`
	Hits  []Asset `json:"hits"`
}

// listEnvelope is the server's generic paginated message wrapper.
type listEnvelope[T any] struct {
	Message struct {
		Items     []T    `json:"Items"`
		NextToken string `json:"NextToken,omitempty"`
	} `json:"message"`
}

// apiErrorBody is the generic error payload shape.
type apiErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b *apiErrorBody) text() string {
	if b == nil {
		return ""
	}
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}
