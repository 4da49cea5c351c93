package sound

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/spf13/afero"
)

// ErrUnsupportedFormat is returned when a source's audio format cannot
// be decoded.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// ErrSoundNotFound is returned when a directly requested source could
// not be fetched at all.
var ErrSoundNotFound = errors.New("sound not found")

// Fetcher retrieves the raw bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// URLResolver re-resolves the current fetchable URL for an uploaded
// file. Uploaded-file URLs can be signed and time-limited, so a stored
// URL may have rotated; the resolver is the single fallback used when
// the stored URL fails.
type URLResolver interface {
	ResolveURL(ctx context.Context, fileID string) (string, error)
}

// AssetCatalog maps bundled sound names to asset file paths.
type AssetCatalog interface {
	Path(name string) (string, bool)
}

// Loader resolves sound descriptors to decoded buffers and populates
// the cache. Bundled sounds are read from the asset filesystem;
// uploaded files are fetched over HTTP with one fallback
// re-resolution.
type Loader struct {
	logger   *slog.Logger
	fs       afero.Fs
	catalog  AssetCatalog
	fetcher  Fetcher
	resolver URLResolver
	cache    *BufferCache
}

// NewLoader creates a loader. A nil fs reads bundled assets from the
// OS filesystem.
func NewLoader(fs afero.Fs, catalog AssetCatalog, fetcher Fetcher, resolver URLResolver,
	cache *BufferCache, logger *slog.Logger,
) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:   logger,
		fs:       fs,
		catalog:  catalog,
		fetcher:  fetcher,
		resolver: resolver,
		cache:    cache,
	}
}

// Load resolves a descriptor to a decoded buffer. A (nil, nil) result
// is the expected "nothing to play" state: unresolvable descriptors
// and fetch failures end up here. Decode failures are returned as
// errors since a corrupt asset is a genuine defect.
func (l *Loader) Load(ctx context.Context, desc Descriptor, useCache bool) (*beep.Buffer, error) {
	if !desc.Playable() {
		return nil, nil
	}

	key := desc.CacheKey()
	if useCache && key != "" {
		if buf, ok := l.cache.Get(key); ok {
			return buf, nil
		}
	}

	data, name, err := l.resolve(ctx, desc)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	buf, err := decode(data, name)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound %q: %w", key, err)
	}

	if useCache && key != "" {
		l.cache.Set(key, buf)
	}
	return buf, nil
}

// LoadFile reads and decodes a local audio file directly, bypassing
// the catalog and the cache.
func (l *Loader) LoadFile(path string) (*beep.Buffer, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSoundNotFound, path)
	}
	buf, err := decode(data, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound file %q: %w", path, err)
	}
	return buf, nil
}

// resolve fetches the raw bytes for a descriptor. A nil byte slice
// with nil error means the source could not be fetched, which is
// treated as nothing to play.
func (l *Loader) resolve(ctx context.Context, desc Descriptor) (data []byte, name string, err error) {
	switch desc.Type {
	case TypeBundled:
		assetPath, ok := l.catalog.Path(desc.Name)
		if !ok {
			l.logger.Warn("unknown bundled sound", "name", desc.Name)
			return nil, "", nil
		}
		data, err := afero.ReadFile(l.fs, assetPath)
		if err != nil {
			// Missing or unreadable bundled assets never fall back;
			// their paths are static.
			l.logger.Warn("failed to read bundled sound", "path", assetPath, "error", err)
			return nil, "", nil
		}
		return data, filepath.Base(assetPath), nil

	case TypeUpload:
		return l.resolveUpload(ctx, desc)

	default:
		return nil, "", nil
	}
}

// resolveUpload fetches an uploaded file, retrying once with a
// re-resolved URL when the stored one fails.
func (l *Loader) resolveUpload(ctx context.Context, desc Descriptor) ([]byte, string, error) {
	data, err := l.fetcher.Fetch(ctx, desc.FileURL)
	if err == nil {
		return data, urlBase(desc.FileURL), nil
	}
	l.logger.Debug("stored file URL failed, re-resolving",
		"file_id", desc.FileID, "error", err)

	if desc.FileID == "" || l.resolver == nil {
		return nil, "", nil
	}

	current, err := l.resolver.ResolveURL(ctx, desc.FileID)
	if err != nil || current == "" {
		l.logger.Warn("failed to re-resolve file URL", "file_id", desc.FileID, "error", err)
		return nil, "", nil
	}

	data, err = l.fetcher.Fetch(ctx, current)
	if err != nil {
		l.logger.Warn("fallback fetch failed", "file_id", desc.FileID, "error", err)
		return nil, "", nil
	}
	return data, urlBase(current), nil
}

// urlBase extracts the path base of a URL for format detection,
// dropping any query string.
func urlBase(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(rawURL)
}

// decode turns raw audio bytes into a buffer, detecting the format by
// file extension with a magic-byte fallback.
func decode(data []byte, name string) (*beep.Buffer, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = sniffFormat(data)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)

	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(bytes.NewReader(data))
	case ".mp3":
		streamer, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	case ".ogg":
		streamer, format, err = vorbis.Decode(io.NopCloser(bytes.NewReader(data)))
	case ".flac":
		streamer, format, err = flac.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s stream: %w", ext, err)
	}
	defer func() { _ = streamer.Close() }()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	return buf, nil
}

// sniffFormat guesses the container from magic bytes when the source
// name carries no extension.
func sniffFormat(data []byte) string {
	switch {
	case len(data) >= 4 && string(data[:4]) == "RIFF":
		return ".wav"
	case len(data) >= 4 && string(data[:4]) == "OggS":
		return ".ogg"
	case len(data) >= 4 && string(data[:4]) == "fLaC":
		return ".flac"
	default:
		return ".mp3"
	}
}
