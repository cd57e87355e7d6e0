package qrcode

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// QRService, albüm paylaşım linkleri için QR kod üretir
type QRService struct {
	baseURL string // örn: "https://ourphotos.co/album/"
}

func NewQRService(frontendURL string) *QRService {
	return &QRService{
		baseURL: strings.TrimRight(frontendURL, "/") + "/album/",
	}
}

// AlbumURL is the frontend page the QR code points to.
func (s *QRService) AlbumURL(albumID string) string {
	return s.baseURL + albumID
}

// GenerateQRCode returns a PNG encoding of the album's link.
func (s *QRService) GenerateQRCode(albumID string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}

	png, err := qrcode.Encode(s.AlbumURL(albumID), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}

	return png, nil
}
