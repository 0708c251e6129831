package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
	"golang.org/x/sync/errgroup"
)

// markerKey marks a cache as existing even when it holds no entries.
const markerKey = ".cache"

// CacheStorage is a set of named caches stored in a blob bucket.
// Objects are laid out as "<cache name>/<escaped request URI>".
type CacheStorage struct {
	bucket  *blob.Bucket
	fetcher Fetcher
}

// OpenCacheStorage opens the bucket at bucketURL (mem://, file:///dir, ...).
func OpenCacheStorage(ctx context.Context, bucketURL string, fetcher Fetcher) (*CacheStorage, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache bucket: %w", err)
	}
	return NewCacheStorage(bucket, fetcher), nil
}

// NewCacheStorage wraps an already opened bucket.
func NewCacheStorage(bucket *blob.Bucket, fetcher Fetcher) *CacheStorage {
	return &CacheStorage{bucket: bucket, fetcher: fetcher}
}

// Close closes the underlying bucket.
func (s *CacheStorage) Close() error {
	return s.bucket.Close()
}

// Open returns the named cache, creating it if needed.
func (s *CacheStorage) Open(ctx context.Context, name string) (*Cache, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid cache name %q", name)
	}
	if err := s.bucket.WriteAll(ctx, name+"/"+markerKey, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", name, err)
	}
	return &Cache{name: name, bucket: s.bucket, fetcher: s.fetcher}, nil
}

// Keys lists the names of every cache in lexical order.
func (s *CacheStorage) Keys(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.bucket.List(&blob.ListOptions{Delimiter: "/"})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list caches: %w", err)
		}
		if obj.IsDir {
			names = append(names, strings.TrimSuffix(obj.Key, "/"))
		}
	}
	return names, nil
}

// Match looks req up in every cache and returns the first hit.
func (s *CacheStorage) Match(ctx context.Context, req *http.Request) (*Response, bool, error) {
	names, err := s.Keys(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, name := range names {
		c := &Cache{name: name, bucket: s.bucket, fetcher: s.fetcher}
		resp, ok, err := c.Match(ctx, req)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return resp, true, nil
		}
	}
	return nil, false, nil
}

// Delete removes the named cache and reports whether it existed.
func (s *CacheStorage) Delete(ctx context.Context, name string) (bool, error) {
	var keys []string
	iter := s.bucket.List(&blob.ListOptions{Prefix: name + "/"})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false, fmt.Errorf("failed to list cache %s: %w", name, err)
		}
		keys = append(keys, obj.Key)
	}
	for _, key := range keys {
		if err := s.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
			return false, fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return len(keys) > 0, nil
}

// Cache is a single named cache of request/response pairs.
type Cache struct {
	name    string
	bucket  *blob.Bucket
	fetcher Fetcher
}

// Name returns the cache name.
func (c *Cache) Name() string {
	return c.name
}

// AddAll fetches every path and stores the responses. Nothing is stored unless
// every fetch succeeds with a 2xx status.
func (c *Cache) AddAll(ctx context.Context, paths []string) error {
	if c.fetcher == nil {
		return errors.New("cache has no fetcher")
	}

	responses := make([]*Response, len(paths))
	requests := make([]*http.Request, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			req, err := newAssetRequest(gctx, p)
			if err != nil {
				return err
			}
			resp, err := c.fetcher.Fetch(gctx, req)
			if err != nil {
				return err
			}
			if !resp.OK() {
				return fmt.Errorf("request for %s failed with status %d", p, resp.StatusCode)
			}
			requests[i] = req
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range paths {
		if err := c.Put(ctx, requests[i], responses[i]); err != nil {
			return err
		}
	}
	return nil
}

// Put stores resp under req.
func (c *Cache) Put(ctx context.Context, req *http.Request, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	opts := &blob.WriterOptions{ContentType: "application/json"}
	if err := c.bucket.WriteAll(ctx, c.entryKey(req), data, opts); err != nil {
		return fmt.Errorf("failed to store %s: %w", req.URL.RequestURI(), err)
	}
	return nil
}

// Match returns the stored response for req, if any.
func (c *Cache) Match(ctx context.Context, req *http.Request) (*Response, bool, error) {
	if req.Method != http.MethodGet && req.Method != "" {
		return nil, false, nil
	}
	data, err := c.bucket.ReadAll(ctx, c.entryKey(req))
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &resp, true, nil
}

func (c *Cache) entryKey(req *http.Request) string {
	return c.name + "/" + url.QueryEscape(req.URL.RequestURI())
}
