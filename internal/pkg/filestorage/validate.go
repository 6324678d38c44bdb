package filestorage

import (
	"fmt"
	"mime/multipart"
	"net/http"
)

// MaxPhotoSize caps applicant photo uploads at 5 MB
const MaxPhotoSize = 5 << 20

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// ValidatePhoto checks the size and sniffed content type of an uploaded
// applicant photo. The content type comes from the file's leading bytes, not
// from the client-supplied header.
func ValidatePhoto(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxPhotoSize {
		return fmt.Errorf("photo exceeds maximum size of %d bytes", int64(MaxPhotoSize))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded photo: %w", err)
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && n == 0 {
		return fmt.Errorf("failed to read uploaded photo: %w", err)
	}

	contentType := http.DetectContentType(head[:n])
	if !allowedPhotoTypes[contentType] {
		return fmt.Errorf("unsupported photo type %s", contentType)
	}
	return nil
}
