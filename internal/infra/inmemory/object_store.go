package inmemory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/dvloznov/hikmacash/internal/gcs"
)

// Object is a stored blob and its content type.
type Object struct {
	Data        []byte
	ContentType string
}

// ObjectStore is an in-memory gcs.ObjectStore. Signed URLs have the form
// memory://{bucket}/{key}?expires={unix seconds}.
type ObjectStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]Object
	now     func() time.Time
	puts    int
	signs   int
	putErr  error
	signErr error
}

// NewObjectStore creates an empty store for bucket.
func NewObjectStore(bucket string) *ObjectStore {
	return &ObjectStore{
		bucket:  bucket,
		objects: make(map[string]Object),
		now:     time.Now,
	}
}

// SetClock replaces the time source used for URL expiry.
func (s *ObjectStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailPuts makes every later Put return err. A nil err clears it.
func (s *ObjectStore) FailPuts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErr = err
}

// FailSigns makes every later SignedURL return err. A nil err clears it.
func (s *ObjectStore) FailSigns(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signErr = err
}

// Put stores the object at key, overwriting any previous object.
func (s *ObjectStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	s.mu.Lock()
	s.puts++
	putErr := s.putErr
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if putErr != nil {
		return putErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("Put: read object data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{Data: data, ContentType: contentType}
	return nil
}

// SignedURL returns a fake URL for an existing key.
func (s *ObjectStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signs++

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.signErr != nil {
		return "", s.signErr
	}
	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("SignedURL: object %q not found", key)
	}

	u := url.URL{
		Scheme:   "memory",
		Host:     s.bucket,
		Path:     "/" + key,
		RawQuery: url.Values{"expires": {fmt.Sprint(s.now().Add(ttl).Unix())}}.Encode(),
	}
	return u.String(), nil
}

// Get returns a copy of the object stored at key.
func (s *ObjectStore) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return Object{}, false
	}
	return Object{Data: bytes.Clone(obj.Data), ContentType: obj.ContentType}, true
}

// Calls reports how many times Put and SignedURL were invoked.
func (s *ObjectStore) Calls() (puts, signs int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts, s.signs
}

var _ gcs.ObjectStore = (*ObjectStore)(nil)
