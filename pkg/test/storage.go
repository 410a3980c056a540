package test

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alarmvault/alarmvault/pkg/structs"
)

// Storage is an in-memory structs.Storage. Presigned URLs are fake but carry
// the key, expiry and suggested filename as query parameters so tests can
// inspect them.
type Storage struct {
	Err     map[string]error
	Objects map[string]StoredObject

	lists []string
	lock  sync.Mutex
}

type StoredObject struct {
	Data        []byte
	ContentType string
	Filename    string
}

func NewStorage() *Storage {
	return &Storage{Err: map[string]error{}, Objects: map[string]StoredObject{}}
}

// Listed returns the prefixes passed to ObjectList in call order.
func (s *Storage) Listed() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([]string{}, s.lists...)
}

func (s *Storage) Keys() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	ks := []string{}

	for k := range s.Objects {
		ks = append(ks, k)
	}

	sort.Strings(ks)

	return ks
}

func (s *Storage) ObjectExists(ctx context.Context, key string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.Err[key]; err != nil {
		return false, err
	}

	_, ok := s.Objects[key]

	return ok, nil
}

func (s *Storage) ObjectFetch(ctx context.Context, key string) ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.Err[key]; err != nil {
		return nil, err
	}

	o, ok := s.Objects[key]
	if !ok {
		return nil, structs.NotFound("object not found: %s", key)
	}

	return o.Data, nil
}

func (s *Storage) ObjectHead(ctx context.Context, key string) (*structs.Object, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.Err[key]; err != nil {
		return nil, err
	}

	o, ok := s.Objects[key]
	if !ok {
		return nil, structs.NotFound("object not found: %s", key)
	}

	return &structs.Object{Key: key, ContentType: o.ContentType, Filename: o.Filename, Size: int64(len(o.Data))}, nil
}

func (s *Storage) ObjectList(ctx context.Context, prefix string) ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.lists = append(s.lists, prefix)

	if err := s.Err[prefix]; err != nil {
		return nil, err
	}

	ks := []string{}

	for k := range s.Objects {
		if strings.HasPrefix(k, prefix) {
			ks = append(ks, k)
		}
	}

	sort.Strings(ks)

	return ks, nil
}

func (s *Storage) ObjectPresign(ctx context.Context, key string, opts structs.ObjectPresignOptions) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.Err[key]; err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("expires", fmt.Sprintf("%d", int64(opts.Expiry/time.Second)))
	if opts.Filename != "" {
		q.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", opts.Filename))
	}

	return fmt.Sprintf("https://storage.test/%s?%s", key, q.Encode()), nil
}

func (s *Storage) ObjectStore(ctx context.Context, key string, data []byte, opts structs.ObjectStoreOptions) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.Err[key]; err != nil {
		return err
	}

	s.Objects[key] = StoredObject{Data: append([]byte{}, data...), ContentType: opts.ContentType, Filename: opts.Filename}

	return nil
}
