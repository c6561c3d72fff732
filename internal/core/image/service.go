package image

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"time"

	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// Image 會話中的一張圖片（已重新編碼為 JPEG）
type Image struct {
	Name       string    `json:"name"`
	Data       []byte    `json:"-"`
	Hash       string    `json:"hash"`
	Format     string    `json:"source_format"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Size       int       `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Service 圖片處理服務
type Service struct {
	maxSizeBytes int64
	maxDimension int
	quality      int
}

// NewService 創建新的圖片處理服務
func NewService(cfg config.ImageConfig) *Service {
	quality := cfg.JPEGQuality
	if quality <= 0 {
		quality = 85
	}
	return &Service{
		maxSizeBytes: cfg.MaxSizeBytes,
		maxDimension: cfg.MaxDimension,
		quality:      quality,
	}
}

// Process 讀取上傳圖片：依 EXIF 轉正、縮放到最大邊長內、以固定品質重新編碼為 JPEG，
// 並以編碼後的位元組計算內容雜湊
func (s *Service) Process(name string, r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > s.maxSizeBytes {
		return nil, common.ErrInvalidImageSize.WithMessage(
			fmt.Sprintf("%s exceeds maximum limit of %d bytes", name, s.maxSizeBytes))
	}

	// 檢查圖片格式
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode %s: %w", name, err))
	}
	if !isSupportedFormat(format) {
		return nil, common.ErrInvalidImageFormat.WithMessage(fmt.Sprintf("unsupported image format: %s", format))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode %s: %w", name, err))
	}

	if s.maxDimension > 0 {
		b := img.Bounds()
		if b.Dx() > s.maxDimension || b.Dy() > s.maxDimension {
			img = imaging.Fit(img, s.maxDimension, s.maxDimension, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(s.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image as JPEG: %w", err)
	}

	encoded := buf.Bytes()
	return &Image{
		Name:       name,
		Data:       encoded,
		Hash:       Hash(encoded),
		Format:     format,
		Width:      img.Bounds().Dx(),
		Height:     img.Bounds().Dy(),
		Size:       len(encoded),
		UploadedAt: time.Now(),
	}, nil
}

// Hash 十六進位 SHA-256
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsDuplicate 與既有圖片的雜湊完全相同才視為重複
func IsDuplicate(img *Image, existing []*Image) bool {
	for _, e := range existing {
		if e.Hash == img.Hash {
			return true
		}
	}
	return false
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
		"bmp":  true,
		"tiff": true,
	}
	return supportedFormats[format]
}
