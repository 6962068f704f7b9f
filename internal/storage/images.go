// Package storage keeps uploaded images on local disk and derives their
// thumbnails.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // WebP decoder
)

var (
	// ErrUnsupportedType is returned for payloads that are not JPEG, PNG, GIF or WebP.
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrTooLarge is returned when a payload exceeds the configured limit.
	ErrTooLarge = errors.New("image too large")
	// ErrOutsideRoot is returned when asked to remove a path not under the store.
	ErrOutsideRoot = errors.New("path outside upload directory")
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// formats maps a sniffed MIME type to the file extension and the imaging
// format thumbnails are written in. WebP has no pure Go encoder, so its
// thumbnails are JPEG.
var formats = map[string]struct {
	ext   string
	thumb imaging.Format
}{
	"image/jpeg": {".jpg", imaging.JPEG},
	"image/png":  {".png", imaging.PNG},
	"image/gif":  {".gif", imaging.GIF},
	"image/webp": {".webp", imaging.JPEG},
}

// Stored describes a saved upload.
type Stored struct {
	FilePath      string
	ThumbnailPath string
	FileName      string
	MimeType      string
	Size          int64
	Width         int
	Height        int
}

// ImageStore writes each upload to its own uuid-named directory under root
// and exposes it below publicPath.
type ImageStore struct {
	root       string
	publicPath string
	maxBytes   int64
	thumbWidth int
}

// NewImageStore creates a store. thumbWidth <= 0 disables thumbnails.
func NewImageStore(root, publicPath string, maxBytes int64, thumbWidth int) *ImageStore {
	return &ImageStore{
		root:       root,
		publicPath: "/" + strings.Trim(publicPath, "/"),
		maxBytes:   maxBytes,
		thumbWidth: thumbWidth,
	}
}

// Save validates and stores the image read from r.
func (s *ImageStore) Save(r io.Reader, filename string) (*Stored, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrTooLarge
	}

	mimeType, _, _ := strings.Cut(http.DetectContentType(data), ";")
	format, ok := formats[mimeType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}

	dir := uuid.NewString()
	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := sanitizeName(filename, format.ext)
	if err := os.WriteFile(filepath.Join(s.root, dir, name), data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	bounds := img.Bounds()
	stored := &Stored{
		FilePath: path.Join(s.publicPath, dir, name),
		FileName: name,
		MimeType: mimeType,
		Size:     int64(len(data)),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}

	if s.thumbWidth > 0 {
		thumbName, err := s.writeThumbnail(img, dir, format.thumb)
		if err != nil {
			_ = os.RemoveAll(filepath.Join(s.root, dir))
			return nil, err
		}
		stored.ThumbnailPath = path.Join(s.publicPath, dir, thumbName)
	}
	return stored, nil
}

func (s *ImageStore) writeThumbnail(img image.Image, dir string, format imaging.Format) (string, error) {
	thumb := img
	if img.Bounds().Dx() > s.thumbWidth {
		thumb = imaging.Resize(img, s.thumbWidth, 0, imaging.Lanczos)
	}
	name := "thumb.jpg"
	switch format {
	case imaging.PNG:
		name = "thumb.png"
	case imaging.GIF:
		name = "thumb.gif"
	}
	f, err := os.Create(filepath.Join(s.root, dir, name))
	if err != nil {
		return "", fmt.Errorf("create thumbnail: %w", err)
	}
	defer f.Close()
	if err := imaging.Encode(f, thumb, format, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return name, nil
}

// Remove deletes the directory holding the upload served at publicFilePath.
func (s *ImageStore) Remove(publicFilePath string) error {
	rel, ok := strings.CutPrefix(path.Clean(publicFilePath), s.publicPath+"/")
	if !ok {
		return ErrOutsideRoot
	}
	dir, _, _ := strings.Cut(rel, "/")
	if _, err := uuid.Parse(dir); err != nil {
		return ErrOutsideRoot
	}
	if err := os.RemoveAll(filepath.Join(s.root, dir)); err != nil {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// Root returns the directory uploads are written to.
func (s *ImageStore) Root() string { return s.root }

// PublicPath returns the URL prefix uploads are served under.
func (s *ImageStore) PublicPath() string { return s.publicPath }

func sanitizeName(filename, ext string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "-"), "-.")
	if base == "" {
		base = "image"
	}
	if len(base) > 100 {
		base = base[:100]
	}
	return base + ext
}
