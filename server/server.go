package server

import (
	"net/http"
	"time"

	"github.com/golang/groupcache"
	"github.com/gorilla/mux"

	d "github.com/tj/go-debug"
)

var debug = d.Debug("iiif:server")

// MakeRouter construct the basic router (no middlewares)
func MakeRouter() http.Handler {
	router := mux.NewRouter()
	router.UseEncodedPath()

	router.HandleFunc("/manifest/{identifier:.*}/images.json", ManifestHandler)
	router.HandleFunc("/thumbnail/{identifier:.*}/{width:[0-9]+}.{format}", ThumbnailHandler)
	router.HandleFunc("/session/{identifier:.*}", SessionHandler)
	router.HandleFunc("/{identifier:.*}/viewer.html", ViewerHandler)
	router.HandleFunc("/{identifier:.+}", RedirectHandler)

	return router
}

// SetGroupCache sets the caches for the manifests, the source images and the
// thumbnails.
func SetGroupCache(router http.Handler, config *Config, peers ...string) http.Handler {
	pool := groupcache.NewHTTPPool(peers[0])
	pool.Set(peers...)

	var manifests = groupcache.NewGroup("manifests", config.Cache.ManifestsSize, groupcache.GetterFunc(
		func(ctx groupcache.Context, key string, dest groupcache.Sink) error {
			data, err := download(key)
			if err != nil {
				return err
			}
			debug("Caching %s", key)
			return dest.SetBytes(data)
		},
	))

	var images = groupcache.NewGroup("images", config.Cache.ImagesSize, groupcache.GetterFunc(
		func(ctx groupcache.Context, key string, dest groupcache.Sink) error {
			data, err := download(key)
			if err != nil {
				return err
			}
			debug("Caching %s", key)
			return dest.SetBytes(data)
		},
	))

	var thumbnails = groupcache.NewGroup("thumbnails", config.Cache.ThumbnailsSize, groupcache.GetterFunc(
		func(ctx groupcache.Context, key string, dest groupcache.Sink) error {
			sURL, width, format, err := parseThumbnailKey(key)
			if err != nil {
				return err
			}

			var source []byte
			if err := images.Get(ctx, sURL, groupcache.AllocatingByteSliceSink(&source)); err != nil {
				return err
			}

			buffer, err := makeThumbnail(source, width, format)
			if err != nil {
				return err
			}

			binTime, _ := time.Now().MarshalBinary()

			debug("Caching %s", key)
			return dest.SetProto(&CachedBlob{
				ModTime: binTime,
				Buffer:  buffer,
			})
		},
	))

	return WithGroupCaches(router, map[string]*groupcache.Group{
		"manifests":  manifests,
		"images":     images,
		"thumbnails": thumbnails,
	})
}
