package server

import (
	"code.cloudfoundry.org/bytefmt"
	"github.com/BurntSushi/toml"
)

// Config stores the viewer server configuration.
type Config struct {
	Host      string       `toml:"host"`
	Port      int          `toml:"port"`
	Templates string       `toml:"templates"`
	Manifests string       `toml:"manifests"`
	Cache     CacheConfig  `toml:"cache"`
	Viewer    ViewerConfig `toml:"viewer"`
}

// CacheConfig represents the configuration information regarding the cache.
type CacheConfig struct {
	HTTP           int64  `toml:"http"`
	Manifests      string `toml:"manifests"`
	Images         string `toml:"images"`
	Thumbnails     string `toml:"thumbnails"`
	ManifestsSize  int64
	ImagesSize     int64
	ThumbnailsSize int64
}

// ViewerConfig tunes the viewer sessions.
type ViewerConfig struct {
	MaxZoom float64 `toml:"maxZoom"`
	// SemanticZoom is experimental, see viewer.Config.
	SemanticZoom   bool `toml:"semanticZoom"`
	ThumbnailWidth int  `toml:"thumbnailWidth"`
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(file string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(file, &config); err != nil {
		return nil, err
	}

	if err := config.parseSizes(); err != nil {
		return nil, err
	}

	if config.Viewer.ThumbnailWidth == 0 {
		config.Viewer.ThumbnailWidth = 256
	}

	return &config, nil
}

func (c *Config) parseSizes() error {
	var sizes = []struct {
		value string
		size  *int64
	}{
		{c.Cache.Manifests, &c.Cache.ManifestsSize},
		{c.Cache.Images, &c.Cache.ImagesSize},
		{c.Cache.Thumbnails, &c.Cache.ThumbnailsSize},
	}

	for _, s := range sizes {
		if s.value == "" {
			continue
		}
		b, err := bytefmt.ToBytes(s.value)
		if err != nil {
			return err
		}
		*s.size = int64(b)
	}

	return nil
}
