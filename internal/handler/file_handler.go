package handler

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"pdf-toolbox/internal/codec"
	"pdf-toolbox/internal/domain"
)

var uploadExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".gif":  true,
	".webp": true,
}

// FileHandler moves files in and out of the workspace.
type FileHandler struct {
	workspace   *Workspace
	maxFileSize int64
	logger      domain.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(workspace *Workspace, maxFileSize int64, logger domain.Logger) *FileHandler {
	return &FileHandler{
		workspace:   workspace,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

type fileEntry struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Upload stores a multipart "file" field at the workspace root. A name that
// is taken gets a unique prefix.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	// Sanitize filename (strip any path components)
	name := strings.TrimSpace(filepath.Base(header.Filename))
	ext := strings.ToLower(filepath.Ext(name))
	if !uploadExtensions[ext] {
		writeError(w, http.StatusBadRequest, "Unsupported file type. Allowed: PDF and common image formats.")
		return
	}
	if header.Size > h.maxFileSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}
	if int64(len(data)) > h.maxFileSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	dest := filepath.Join(h.workspace.Root(), name)
	if _, err := os.Stat(dest); err == nil || name == ext {
		name = uuid.New().String()[:8] + "_" + name
		dest = filepath.Join(h.workspace.Root(), name)
	}
	if err := codec.WriteFileAtomic(dest, data, 0o644); err != nil {
		h.logger.Error("Failed to store upload", err, "name", name)
		writeError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	h.logger.Info("File uploaded", "name", name, "size", len(data))
	writeJSON(w, http.StatusCreated, fileEntry{Name: name, Size: int64(len(data)), Modified: time.Now().UTC()})
}

// List returns every file under the workspace, sorted by name.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	var files []fileEntry
	err := filepath.WalkDir(h.workspace.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// Skip in-progress atomic writes.
		if strings.HasPrefix(d.Name(), ".") && path != h.workspace.Root() {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, fileEntry{Name: h.workspace.Rel(path), Size: info.Size(), Modified: info.ModTime().UTC()})
		return nil
	})
	if err != nil {
		h.logger.Error("Failed to list workspace", err)
		writeError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	if files == nil {
		files = []fileEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files, "count": len(files)})
}

// Download streams one workspace file.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	path, err := h.workspace.Resolve(mux.Vars(r)["name"])
	if err != nil {
		writeAppError(w, err)
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeFile(w, r, path)
}
