package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/groupcache"
	"github.com/gorilla/mux"

	"github.com/greut/iiif-viewer/iiif"
)

// error messages
var identifierError = "the identifier is neither a file, an URL nor a base64 encoded URL: %#v"

// canvasImages is the JSON view of a canvas with its image resources.
type canvasImages struct {
	ID     string                `json:"@id"`
	Label  interface{}           `json:"label,omitempty"`
	Width  int                   `json:"width"`
	Height int                   `json:"height"`
	Bounds iiif.Rect             `json:"bounds"`
	Images []*iiif.ImageResource `json:"images"`
}

func toCanvasImages(canvases []*iiif.Canvas) []canvasImages {
	out := make([]canvasImages, len(canvases))
	for i, canvas := range canvases {
		images := canvas.Images
		if images == nil {
			images = []*iiif.ImageResource{}
		}
		out[i] = canvasImages{
			ID:     canvas.ID,
			Label:  canvas.Label,
			Width:  canvas.Width,
			Height: canvas.Height,
			Bounds: canvas.Bounds,
			Images: images,
		}
	}
	return out
}

// resolveIdentifier turns a path identifier into either a local file or a
// remote URL.
func resolveIdentifier(identifier string, root string) (filename string, sURL string, err error) {
	identifier, err = url.PathUnescape(identifier)
	if err != nil {
		debug("Identifier is frob %#v", identifier)
		return "", "", HTTPError{http.StatusNotFound, identifier}
	}

	if root != "" {
		filename = filepath.Join(root, identifier)
		if !insideRoot(root, filename) {
			debug("Outside of the root %#v", filename)
			return "", "", HTTPError{http.StatusNotFound, identifier}
		}
		if stat, err := os.Stat(filename); err == nil && !stat.IsDir() {
			return filename, "", nil
		}
		debug("Cannot open file %#v", filename)
	}

	if strings.HasPrefix(identifier, "http:/") || strings.HasPrefix(identifier, "https:/") {
		if !strings.Contains(identifier, "://") {
			identifier = strings.Replace(identifier, ":/", "://", 1)
		}
		return "", identifier, nil
	}

	u, err := base64.StdEncoding.DecodeString(identifier)
	if err != nil {
		debug("Not a base64 encoded URL either.")
		return "", "", HTTPError{http.StatusNotFound, fmt.Sprintf(identifierError, identifier)}
	}
	return "", string(u), nil
}

// insideRoot tells whether the cleaned filename stays under root.
func insideRoot(root, filename string) bool {
	rel, err := filepath.Rel(root, filename)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// hasParentReference tells whether a slash separated path climbs up.
func hasParentReference(identifier string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(identifier), "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}

// openManifest reads the manifest either from the disk, the cache or the
// remote server.
func openManifest(identifier string, root string, cache *groupcache.Group) ([]byte, time.Time, error) {
	modTime := time.Now()

	filename, sURL, err := resolveIdentifier(identifier, root)
	if err != nil {
		return nil, modTime, err
	}

	if filename != "" {
		stat, err := os.Stat(filename)
		if err != nil {
			return nil, modTime, HTTPError{http.StatusNotFound, identifier}
		}
		buffer, err := ioutil.ReadFile(filename)
		if err != nil {
			return nil, modTime, HTTPError{http.StatusNotFound, identifier}
		}
		return buffer, stat.ModTime(), nil
	}

	buffer, err := fetch(sURL, cache)
	return buffer, modTime, err
}

// fetch downloads the URL, through the cache when there is one.
func fetch(sURL string, cache *groupcache.Group) ([]byte, error) {
	if cache == nil {
		return download(sURL)
	}

	var buffer []byte
	if err := cache.Get(nil, sURL, groupcache.AllocatingByteSliceSink(&buffer)); err != nil {
		return nil, err
	}
	debug("From cache %v", sURL)
	return buffer, nil
}

func download(url string) ([]byte, error) {
	debug("downloading %v", url)

	resp, err := http.Get(url)
	if err != nil {
		debug("Download error: %q : %#v.", url, err)
		return nil, HTTPError{http.StatusNotFound, url}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, HTTPError{resp.StatusCode, url}
	}

	if resp.ContentLength > 0 {
		b := bytes.NewBuffer(make([]byte, 0, resp.ContentLength))
		_, err = b.ReadFrom(resp.Body)
		return b.Bytes(), err
	}
	return ioutil.ReadAll(resp.Body)
}

// loadCanvases opens the manifest and builds its canvases.
func loadCanvases(identifier string, config *Config, cache *groupcache.Group) (*iiif.Manifest, []*iiif.Canvas, time.Time, error) {
	body, modTime, err := openManifest(identifier, config.Manifests, cache)
	if err != nil {
		return nil, nil, modTime, err
	}

	manifest, err := iiif.ParseManifest(body)
	if err != nil {
		return nil, nil, modTime, HTTPError{http.StatusBadRequest, err.Error()}
	}

	canvases, err := manifest.Canvases()
	return manifest, canvases, modTime, err
}

// ManifestHandler responds with the image resources of every canvas.
func ManifestHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	identifier := vars["identifier"]

	ctx := r.Context()
	config, _ := ctx.Value(ContextKey("config")).(*Config)
	manifests, _ := ctx.Value(ContextKey("manifests")).(*groupcache.Group)

	manifest, canvases, modTime, err := loadCanvases(identifier, config, manifests)
	if err != nil {
		writeError(w, err)
		return
	}

	p := struct {
		ID       string         `json:"@id"`
		Label    interface{}    `json:"label,omitempty"`
		Canvases []canvasImages `json:"canvases"`
	}{
		ID:       manifest.ID,
		Label:    manifest.Label,
		Canvases: toCanvasImages(canvases),
	}

	buffer, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		http.Error(w, "Cannot serialize the canvases", http.StatusInternalServerError)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "application/json")
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	header.Set("ETag", getETag(r.URL.String()))
	header.Set("Cache-Control", fmt.Sprintf("max-age=%v, public", config.Cache.HTTP))
	http.ServeContent(w, r, "images.json", modTime, bytes.NewReader(buffer))
}
