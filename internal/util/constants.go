package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MimeVideo       = "video/"
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm"}
)

// ReviewsPerPage is the fixed page size for public review listings.
const ReviewsPerPage = 10

// PlatformFeeRate is the marketplace's cut of every purchase.
const PlatformFeeRate = 0.30
