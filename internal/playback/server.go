// Package playback streams recordings to the player and maps timeline
// times onto source media.
package playback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var fallbackTypes = map[string]string{
	".webm": "video/webm",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
}

type Server struct {
	logger *slog.Logger
}

func NewServer(logger *slog.Logger) *Server {
	return &Server{logger: logger}
}

// ServeFile writes filePath with byte-range support. Missing files get a
// plain 404; an unparseable Range header is ignored and the whole file is
// sent. HEAD requests get headers only.
func (s *Server) ServeFile(w http.ResponseWriter, r *http.Request, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "file not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		http.Error(w, "file not found", http.StatusNotFound)
		return nil
	}
	size := stat.Size()

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", ContentType(filePath))

	rng, err := ParseRange(r.Header.Get("Range"), size)
	switch {
	case errors.Is(err, ErrUnsatisfiable):
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case errors.Is(err, ErrInvalidRange):
		if s.logger != nil {
			s.logger.Debug("ignoring invalid range header", "range", r.Header.Get("Range"))
		}
		rng = nil
	case err != nil:
		return err
	}

	body := io.Reader(file)
	if rng == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
	} else {
		if _, err := file.Seek(rng.Start, io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek: %w", err)
		}
		body = io.LimitReader(file, rng.ContentLength())
		w.Header().Set("Content-Length", strconv.FormatInt(rng.ContentLength(), 10))
		w.Header().Set("Content-Range", rng.ContentRange(size))
		w.WriteHeader(http.StatusPartialContent)
	}

	if r.Method == http.MethodHead {
		return nil
	}
	if _, err := io.Copy(w, body); err != nil && s.logger != nil {
		// Players routinely abort range requests while seeking.
		s.logger.Debug("playback copy interrupted", "error", err)
	}
	return nil
}

// ContentType guesses a media type from the file extension.
func ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := fallbackTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
