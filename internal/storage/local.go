package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"chirp/internal/config"
	"chirp/internal/middleware"
	"chirp/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMediaDir        = "/tmp/chirp/media"
	DefaultMediaBaseURL    = "/media"
	DefaultMaxUploadSizeMB = 10
	MaxImageSize           = 2048
	WebPQuality            = 75
	JPEGQuality            = 82
)

var kindDirs = map[models.ResourceType]string{
	models.ResourceImage: "images",
	models.ResourceVideo: "videos",
}

var videoExtensions = map[string]string{
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
	"video/x-msvideo": ".avi",
}

// LocalStore writes media below a directory served at baseURL.
type LocalStore struct {
	dir                string
	baseURL            string
	maxUploadSizeBytes int64
}

// NewLocalStore builds a store from the media settings in cfg.
func NewLocalStore(cfg *config.Config) *LocalStore {
	dir := DefaultMediaDir
	baseURL := DefaultMediaBaseURL
	maxUploadSizeMB := DefaultMaxUploadSizeMB

	if cfg != nil {
		if cfg.MediaDir != "" {
			dir = cfg.MediaDir
		}
		if cfg.MediaBaseURL != "" {
			baseURL = cfg.MediaBaseURL
		}
		if cfg.MediaMaxUploadMB > 0 {
			maxUploadSizeMB = cfg.MediaMaxUploadMB
		}
	}

	return &LocalStore{
		dir:                dir,
		baseURL:            strings.TrimRight(baseURL, "/"),
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Dir is the directory media is written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// BaseURL is the URL prefix stored media is served under.
func (s *LocalStore) BaseURL() string {
	return s.baseURL
}

// Upload stores in and returns its public id and URL. Images are resized to
// fit MaxImageSize and re-encoded as WebP; videos are stored unchanged.
func (s *LocalStore) Upload(ctx context.Context, in UploadInput) (*models.Media, error) {
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	var (
		data []byte
		ext  string
		err  error
	)
	switch in.Kind {
	case models.ResourceImage:
		data, ext, err = processImage(in.Content)
	case models.ResourceVideo:
		data, ext, err = processVideo(in.Content)
	default:
		return nil, models.NewUnsupportedMediaError("File type is not supported")
	}
	if err != nil {
		return nil, err
	}

	hash := contentHash(data)
	rel := filepath.ToSlash(filepath.Join(kindDirs[in.Kind], hash+ext))
	if err := writeBytesToFile(filepath.Join(s.dir, rel), data); err != nil {
		return nil, models.NewInternalError(err)
	}

	middleware.Logger.DebugContext(ctx, "media stored", "public_id", publicID(in.Kind, hash), "bytes", len(data))
	return &models.Media{
		PublicID:     publicID(in.Kind, hash),
		URL:          s.baseURL + "/" + rel,
		ResourceType: in.Kind,
	}, nil
}

// Destroy removes the media identified by publicID. Unknown ids are not an
// error.
func (s *LocalStore) Destroy(_ context.Context, id string, kind models.ResourceType) error {
	if id == "" {
		return nil
	}
	dir, ok := kindDirs[kind]
	if !ok {
		return fmt.Errorf("destroy %s: unknown resource type %q", id, kind)
	}
	prefix, hash, ok := strings.Cut(id, "/")
	if !ok || prefix != dir || !isHex(hash) {
		return fmt.Errorf("destroy %s: invalid public id for %s", id, kind)
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, dir, hash+".*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func processImage(content []byte) ([]byte, string, error) {
	if !strings.HasPrefix(http.DetectContentType(content), "image/") {
		return nil, "", models.NewValidationError("Invalid image type")
	}
	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, "", models.NewValidationError("Invalid image file")
	}

	resized := resizeToFit(decoded, MaxImageSize, MaxImageSize)
	if out, err := encodeWebP(resized, WebPQuality); err == nil {
		return out, ".webp", nil
	}
	out, err := encodeJPEG(resized, JPEGQuality)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return out, ".jpg", nil
}

func processVideo(content []byte) ([]byte, string, error) {
	detected := http.DetectContentType(content)
	ext, ok := videoExtensions[detected]
	if !ok {
		return nil, "", models.NewValidationError("Invalid video type")
	}
	return content, ext, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func publicID(kind models.ResourceType, hash string) string {
	return kindDirs[kind] + "/" + hash
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:16])
}

func isHex(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
