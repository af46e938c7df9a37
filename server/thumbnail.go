package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang/groupcache"
	"github.com/gorilla/mux"
	"gopkg.in/h2non/bimg.v1"

	"github.com/greut/iiif-viewer/iiif"
)

// error messages
var openError = "libvips cannot open this file: %#v"
var widthError = "the thumbnail width is not recognized: %#v"
var formatMissing = "libvips cannot output this format %#v as of yet"
var formatReadMissing = "libvips cannot read this format %#v as of yet"
var keyError = "the thumbnail key is malformed: %#v"

// imageType maps an extension onto the bimg type.
func imageType(format string) (bimg.ImageType, error) {
	switch format {
	case "jpg":
		format = "jpeg"
	case "tif":
		format = "tiff"
	}

	for k, v := range bimg.ImageTypes {
		if v == format && bimg.IsTypeSupportedSave(k) {
			return k, nil
		}
	}
	return bimg.UNKNOWN, HTTPError{http.StatusNotImplemented, fmt.Sprintf(formatMissing, format)}
}

// thumbnailKey is the cache key of a thumbnail.
func thumbnailKey(sURL string, width int, format string) string {
	return fmt.Sprintf("%d/%s/%s", width, format, sURL)
}

func parseThumbnailKey(key string) (sURL string, width int, format string, err error) {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) != 3 {
		return "", 0, "", fmt.Errorf(keyError, key)
	}
	width, err = strconv.Atoi(parts[0])
	if err != nil {
		return "", 0, "", fmt.Errorf(keyError, key)
	}
	return parts[2], width, parts[1], nil
}

// makeThumbnail resizes the source image to the given width, keeping its
// aspect ratio.
func makeThumbnail(source []byte, width int, format string) ([]byte, error) {
	bimgType, err := imageType(format)
	if err != nil {
		return nil, err
	}

	sourceType := bimg.DetermineImageType(source)
	if !bimg.IsTypeSupported(sourceType) {
		message := fmt.Sprintf(formatReadMissing, bimg.ImageTypes[sourceType])
		return nil, HTTPError{http.StatusNotImplemented, message}
	}

	image := bimg.NewImage(source)
	size, err := image.Size()
	if err != nil {
		return nil, HTTPError{http.StatusBadRequest, fmt.Sprintf(openError, err.Error())}
	}

	options := bimg.Options{
		Width: width,
		Type:  bimgType,
	}
	if size.Width > 0 {
		options.Height = size.Height * width / size.Width
	}

	buffer, err := image.Process(options)
	if err != nil {
		message := fmt.Sprintf("bimg couldn't process the image: %#v", err.Error())
		return nil, HTTPError{http.StatusInternalServerError, message}
	}
	return buffer, nil
}

// thumbnailURL is where the client fetches the thumbnail of an image: the
// image service itself for dynamic images, this server otherwise.
func thumbnailURL(base string, width int, image *iiif.ImageResource) string {
	if image.Dynamic {
		service := strings.TrimSuffix(image.TileSource.URL, "/info.json")
		return fmt.Sprintf("%s/full/%d,/0/default.jpg", service, width)
	}

	return fmt.Sprintf("%s/thumbnail/%s/%d.jpg", base, url.PathEscape(image.TileSource.URL), width)
}

// ThumbnailHandler responds with a resized version of a remote or local
// picture.
func ThumbnailHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	identifier := vars["identifier"]
	format := vars["format"]

	width, err := strconv.Atoi(vars["width"])
	if err != nil || width <= 0 {
		http.Error(w, fmt.Sprintf(widthError, vars["width"]), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	config, _ := ctx.Value(ContextKey("config")).(*Config)
	images, _ := ctx.Value(ContextKey("images")).(*groupcache.Group)
	thumbnails, _ := ctx.Value(ContextKey("thumbnails")).(*groupcache.Group)

	if _, err := imageType(format); err != nil {
		writeError(w, err)
		return
	}

	filename, sURL, err := resolveIdentifier(identifier, config.Manifests)
	if err != nil {
		writeError(w, err)
		return
	}

	modTime := time.Now()
	var buffer []byte
	if filename != "" {
		source, err := bimg.Read(filename)
		if err == nil {
			buffer, err = makeThumbnail(source, width, format)
		}
		if err != nil {
			writeError(w, err)
			return
		}
	} else if thumbnails != nil {
		blob := new(CachedBlob)
		err = thumbnails.Get(nil, thumbnailKey(sURL, width, format), groupcache.ProtoSink(blob))
		if err != nil {
			writeError(w, err)
			return
		}
		buffer = blob.GetBuffer()
		_ = modTime.UnmarshalBinary(blob.GetModTime())
	} else {
		source, err := fetch(sURL, images)
		if err == nil {
			buffer, err = makeThumbnail(source, width, format)
		}
		if err != nil {
			writeError(w, err)
			return
		}
	}

	header := w.Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Cache-Control", fmt.Sprintf("max-age=%v, public", config.Cache.HTTP))
	http.ServeContent(w, r, fmt.Sprintf("thumbnail.%s", format), modTime, bytes.NewReader(buffer))
}
