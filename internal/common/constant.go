package common

const (
	// MultipartThreshold is the file size at and above which the client
	// switches from a single presigned PUT to a multipart session.
	MultipartThreshold = 10 * 1024 * 1024

	// PartSize is the fixed size of every multipart part except the last.
	PartSize = 5 * 1024 * 1024
)
