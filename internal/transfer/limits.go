package transfer

// Default transfer limits. The chunk sizes and per-request caps mirror the
// server's upload quota configuration; a sequence that violates them is
// rejected by the API before any part URL is issued.
const (
	DefaultSmallChunkSize      = 150 * 1024 * 1024       // 150MB parts for typical files
	DefaultLargeChunkSize      = 1024 * 1024 * 1024      // 1GB parts for very large files
	DefaultSmallChunkThreshold = 15 * 1024 * 1024 * 1024 // files above 15GB switch to large parts
	DefaultMaxSequenceBytes    = 3 * 1024 * 1024 * 1024  // 3GB per upload request
	DefaultMaxFilesPerRequest  = 1000
	DefaultMaxPartsPerRequest  = 5000
	DefaultMaxPartsPerFile     = 10000           // S3 multipart limit
	DefaultMaxPreviewFileBytes = 5 * 1024 * 1024 // 5MB
)

// Limits bounds how files are split into parts and grouped into sequences.
type Limits struct {
	SmallChunkSize      int64
	LargeChunkSize      int64
	SmallChunkThreshold int64
	MaxSequenceBytes    int64
	MaxFilesPerRequest  int
	MaxPartsPerRequest  int
	MaxPartsPerFile     int
	MaxPreviewFileBytes int64
}

// DefaultLimits returns the server's default upload quotas.
func DefaultLimits() Limits {
	return Limits{
		SmallChunkSize:      DefaultSmallChunkSize,
		LargeChunkSize:      DefaultLargeChunkSize,
		SmallChunkThreshold: DefaultSmallChunkThreshold,
		MaxSequenceBytes:    DefaultMaxSequenceBytes,
		MaxFilesPerRequest:  DefaultMaxFilesPerRequest,
		MaxPartsPerRequest:  DefaultMaxPartsPerRequest,
		MaxPartsPerFile:     DefaultMaxPartsPerFile,
		MaxPreviewFileBytes: DefaultMaxPreviewFileBytes,
	}
}
