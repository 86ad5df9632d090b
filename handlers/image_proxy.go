package handlers

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"log"
	"net/http"
	"strings"
)

type assetCatalog interface {
	FetchAsset(ctx context.Context, path string) (io.ReadCloser, string, error)
}

// ImageProxyHandler streams catalog assets so browser clients never see
// the media server's address or token.
type ImageProxyHandler struct {
	Catalog        assetCatalog
	PlaceholderURL string
}

func NewImageProxyHandler(catalog assetCatalog, placeholderURL string) *ImageProxyHandler {
	return &ImageProxyHandler{Catalog: catalog, PlaceholderURL: placeholderURL}
}

// Serve proxies the asset at ?path=. The path is stable per asset, so the
// ETag is derived from it and a day of client caching is safe. Upstream
// failure redirects to the placeholder instead of erroring.
func (h *ImageProxyHandler) Serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if !strings.HasPrefix(path, "/") {
		writeError(w, http.StatusBadRequest, "path must be server-relative")
		return
	}

	etag := `"` + assetETag(path) + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	body, contentType, err := h.Catalog.FetchAsset(r.Context(), path)
	if err != nil {
		log.Printf("[image] asset fetch failed path=%s err=%v", path, err)
		http.Redirect(w, r, h.PlaceholderURL, http.StatusFound)
		return
	}
	defer body.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("ETag", etag)

	if _, err := io.Copy(w, body); err != nil {
		log.Printf("[image] asset stream interrupted path=%s err=%v", path, err)
	}
}

func assetETag(path string) string {
	sum := sha1.Sum([]byte(path))
	return hex.EncodeToString(sum[:])
}
