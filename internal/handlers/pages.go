package handlers

import (
	"embed"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed pages/*
var pageFiles embed.FS

const textNotFound = "Not found\n"

// @Summary      Control page
// @Tags         control
// @Produce      html
// @Success      200  {string}  string
// @Router       / [get]
func (h *Handler) index(c *gin.Context) {
	if h.opts.StaticDir == "" {
		page, err := pageFiles.ReadFile("pages/index.html")
		if err != nil {
			h.logAndJSONError(c, http.StatusInternalServerError, "index page missing", "index_read_failed", err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
		return
	}

	page, err := os.ReadFile(filepath.Join(h.opts.StaticDir, "index.html"))
	if err != nil {
		if h.log != nil {
			h.log.Errorw("index_read_failed", "static_dir", h.opts.StaticDir, "err", err)
		}
		c.String(http.StatusNotFound, textNotFound)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// static serves files below StaticDir. Paths escaping the directory and
// directories themselves are answered with 404.
func (h *Handler) static(c *gin.Context) {
	name, ok := h.staticPath(c.Param("filepath"))
	if !ok {
		c.String(http.StatusNotFound, textNotFound)
		return
	}
	info, err := os.Stat(name)
	if err != nil || info.IsDir() {
		c.String(http.StatusNotFound, textNotFound)
		return
	}
	if h.log != nil {
		h.log.Debugw("static_file_served", "file", name)
	}
	c.File(name)
}

func (h *Handler) staticPath(p string) (string, bool) {
	if h.opts.StaticDir == "" {
		return "", false
	}
	rel := strings.TrimPrefix(path.Clean("/"+p), "/")
	if rel == "" {
		return "", false
	}
	return filepath.Join(h.opts.StaticDir, filepath.FromSlash(rel)), true
}
