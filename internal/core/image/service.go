package image

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"path/filepath"
	"strings"

	_ "image/jpeg" // 支援 JPEG
	_ "image/png"  // 支援 PNG

	_ "golang.org/x/image/webp" // 支援 WebP

	"pantry-chef/internal/pkg/common"
)

// Upload 通過驗證的收據圖片
type Upload struct {
	Data     []byte
	MimeType string
	Format   string
	Width    int
	Height   int
}

// Service 收據圖片上傳驗證
type Service struct {
	maxSizeBytes int64
}

// NewService 創建新的圖片驗證服務
func NewService(maxSizeBytes int64) *Service {
	return &Service{maxSizeBytes: maxSizeBytes}
}

// MaxSizeBytes 上傳大小上限
func (s *Service) MaxSizeBytes() int64 {
	return s.maxSizeBytes
}

// allowedExtensions 副檔名白名單
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// allowedMimeTypes http.DetectContentType 可接受的結果
var allowedMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// mimeByFormat image.DecodeConfig 回傳的格式對應 MIME
var mimeByFormat = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
}

// Validate 檢查大小、副檔名、內容格式，並讀取圖片尺寸
func (s *Service) Validate(filename string, data []byte) (*Upload, error) {
	if len(data) == 0 {
		return nil, common.ErrInvalidRequest.Wrap(fmt.Errorf("receipt image is empty"))
	}

	// 檢查文件大小
	if int64(len(data)) > s.maxSizeBytes {
		return nil, common.ErrPayloadTooLarge.Wrap(
			fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
	}

	if filename != "" {
		ext := strings.ToLower(filepath.Ext(filename))
		if !allowedExtensions[ext] {
			return nil, common.ErrInvalidImage.Wrap(fmt.Errorf("unsupported file extension %q", ext))
		}
	}

	// 先以內容嗅探擋掉非圖片，再只解析標頭取得格式與尺寸
	sniffed := http.DetectContentType(data)
	if !allowedMimeTypes[sniffed] {
		return nil, common.ErrInvalidImage.Wrap(fmt.Errorf("unsupported content type %s", sniffed))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, common.ErrInvalidImage.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}

	mimeType, ok := mimeByFormat[format]
	if !ok {
		return nil, common.ErrInvalidImage.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}

	return &Upload{
		Data:     data,
		MimeType: mimeType,
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}
