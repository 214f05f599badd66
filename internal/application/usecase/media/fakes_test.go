package media

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/khoahotran/media-gateway/internal/domain/media"
)

// callLog records the order in which collaborators are hit.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type uploadCall struct {
	dataURI string
	opts    media.UploadOptions
}

type fakeStore struct {
	log       *callLog
	uploads   []uploadCall
	queries   []media.ResourceQuery
	destroyed []string
	items     map[string]media.ImageResource

	uploadErr  error
	listErr    error
	destroyErr error
}

func newFakeStore(log *callLog) *fakeStore {
	return &fakeStore{log: log, items: map[string]media.ImageResource{}}
}

func (s *fakeStore) Upload(_ context.Context, dataURI string, opts media.UploadOptions) (*media.UploadedImage, error) {
	s.log.add("upload")
	s.uploads = append(s.uploads, uploadCall{dataURI: dataURI, opts: opts})
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	id := opts.PublicID
	if opts.Folder != "" {
		id = opts.Folder + "/" + id
	}
	s.items[id] = media.ImageResource{PublicID: id, Type: "upload"}
	return &media.UploadedImage{PublicID: id}, nil
}

func (s *fakeStore) ListResources(_ context.Context, q media.ResourceQuery) (*media.ResourceList, error) {
	s.log.add("list")
	s.queries = append(s.queries, q)
	if s.listErr != nil {
		return nil, s.listErr
	}
	list := &media.ResourceList{Resources: []media.ImageResource{}}
	for id, r := range s.items {
		if strings.HasPrefix(id, q.Prefix) {
			list.Resources = append(list.Resources, r)
		}
	}
	return list, nil
}

func (s *fakeStore) Destroy(_ context.Context, publicID string) error {
	s.log.add("destroy")
	if s.destroyErr != nil {
		return s.destroyErr
	}
	s.destroyed = append(s.destroyed, publicID)
	delete(s.items, publicID)
	return nil
}

type fakeCache struct {
	log   *callLog
	paths []string
	pages map[string][]byte
	err   error
}

func newFakeCache(log *callLog) *fakeCache {
	return &fakeCache{log: log, pages: map[string][]byte{}}
}

func (c *fakeCache) Invalidate(_ context.Context, path string) error {
	c.log.add("invalidate:" + path)
	c.paths = append(c.paths, path)
	delete(c.pages, path)
	return c.err
}

func (c *fakeCache) Get(_ context.Context, path string) ([]byte, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	body, ok := c.pages[path]
	return body, ok, nil
}

func (c *fakeCache) Set(_ context.Context, path string, body []byte) error {
	if c.err != nil {
		return c.err
	}
	c.pages[path] = body
	return nil
}

type fakePublisher struct {
	events  chan media.Event
	err     error
	release chan struct{}
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{events: make(chan media.Event, 8)}
}

func (p *fakePublisher) PublishMediaEvent(_ context.Context, evt media.Event) error {
	if p.release != nil {
		<-p.release
	}
	p.events <- evt
	return p.err
}

var errRemote = errors.New("Invalid image file")
