package edgebridge

import (
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Build assets are immutable: their filenames are content-hashed, so clients
// may cache them forever.
const assetCacheControl = "public, max-age=31536000, immutable"

// AssetServer serves files under a fixed URL prefix directly from a local
// directory, bypassing the application.
type AssetServer struct {
	prefix string
	dir    string
	log    *zap.Logger
}

func newAssetServer(prefix, dir string, log *zap.Logger) *AssetServer {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &AssetServer{prefix: prefix, dir: dir, log: log}
}

// Resolve attempts to answer the request from disk. The second return value
// reports whether the interceptor handled it; when false, control passes to
// the application. Missing files are the expected fall-through case. Any
// other read failure is logged but still falls through, so a broken asset
// file never produces a server error on its own.
func (s *AssetServer) Resolve(method, urlpath string) (*BridgeResponse, bool) {
	if method != http.MethodGet && method != http.MethodHead {
		return nil, false
	}
	if !strings.HasPrefix(urlpath, s.prefix) {
		return nil, false
	}

	// Clean the path before it touches the filesystem so a crafted request
	// cannot escape the asset root.
	rel := path.Clean("/" + urlpath)
	if !strings.HasPrefix(rel, s.prefix) {
		return nil, false
	}
	name := filepath.Join(s.dir, filepath.FromSlash(rel))

	fi, err := os.Stat(name)
	if os.IsNotExist(err) {
		return nil, false
	}
	if err != nil {
		s.log.Warn("asset stat failed", zap.String("path", name), zap.Error(err))
		return nil, false
	}
	if fi.IsDir() {
		return nil, false
	}

	resp := &BridgeResponse{
		StatusCode: http.StatusOK,
		Header:     NewHeaders(),
	}
	resp.Header.Set("Content-Type", contentType(name))
	resp.Header.Set("Cache-Control", assetCacheControl)

	if method == http.MethodHead {
		return resp, true
	}

	body, err := os.ReadFile(name)
	if err != nil {
		s.log.Warn("asset read failed", zap.String("path", name), zap.Error(err))
		return nil, false
	}
	resp.Body = body
	return resp, true
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
