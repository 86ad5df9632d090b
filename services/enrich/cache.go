package enrich

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"reelpick/models"
)

// imageCache stores resolved cast images on disk so repeated suggestions
// don't hammer the scrape-based providers for the same people.
type imageCache struct {
	dir string
	ttl time.Duration
}

func newImageCache(dir string, ttlHours int) *imageCache {
	return &imageCache{dir: dir, ttl: time.Duration(ttlHours) * time.Hour}
}

func cacheKey(subject string) string {
	h := sha1.Sum([]byte(subject))
	return hex.EncodeToString(h[:])
}

// jitteredTTL staggers expiry deterministically per key between the base
// TTL and base TTL + 2 hours, so a whole cast doesn't expire at once.
func (c *imageCache) jitteredTTL(key string) time.Duration {
	h := sha256.Sum256([]byte(key))
	n := binary.BigEndian.Uint64(h[:8])
	jitter := time.Duration(n % uint64(2*time.Hour))
	return c.ttl + jitter
}

func (c *imageCache) get(subject string) (models.Image, bool) {
	if subject == "" {
		return models.Image{}, false
	}
	key := cacheKey(subject)
	path := filepath.Join(c.dir, key+".json")
	fi, err := os.Stat(path)
	if err != nil {
		return models.Image{}, false
	}
	if time.Since(fi.ModTime()) > c.jitteredTTL(key) {
		_ = os.Remove(path)
		return models.Image{}, false
	}
	f, err := os.Open(path)
	if err != nil {
		return models.Image{}, false
	}
	defer f.Close()

	var img models.Image
	if err := json.NewDecoder(f).Decode(&img); err != nil || img.URL == "" {
		return models.Image{}, false
	}
	return img, true
}

func (c *imageCache) set(subject string, img models.Image) error {
	if subject == "" {
		return errors.New("empty subject")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(c.dir, cacheKey(subject)+".json")
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(img); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
