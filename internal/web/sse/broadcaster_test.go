package sse

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BroadcasterSuite struct {
	suite.Suite
	b *Broadcaster
}

func (s *BroadcasterSuite) SetupTest() {
	s.b = NewBroadcaster()
}

func TestBroadcasterSuite(t *testing.T) {
	suite.Run(t, new(BroadcasterSuite))
}

// recorder is a concurrency-safe ResponseWriter + Flusher.
type recorder struct {
	header http.Header
	body   []byte
	fail   bool
	mu     sync.Mutex
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header)}
}

func (r *recorder) Header() http.Header { return r.header }
func (r *recorder) WriteHeader(int)     {}
func (r *recorder) Flush()              {}

func (r *recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errors.New("broken pipe")
	}
	r.body = append(r.body, p...)
	return len(p), nil
}

func (r *recorder) Body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.body)
}

type noFlush struct{ http.ResponseWriter }

func next(c *Client) string {
	select {
	case msg := <-c.Messages():
		return string(msg)
	default:
		return ""
	}
}

func (s *BroadcasterSuite) TestAddRemove() {
	c := s.b.AddClient()
	s.Equal(1, s.b.ClientCount())

	s.b.RemoveClient(c)
	s.Equal(0, s.b.ClientCount())
	select {
	case <-c.Done:
	default:
		s.Fail("Done should be closed")
	}

	// second removal is a no-op
	s.b.RemoveClient(c)
}

func (s *BroadcasterSuite) TestUniqueIDs() {
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		c := s.b.AddClient()
		s.False(seen[c.ID])
		seen[c.ID] = true
	}
	s.Equal(5, s.b.ClientCount())
}

func (s *BroadcasterSuite) TestPublish() {
	clients := []*Client{s.b.AddClient(), s.b.AddClient()}

	s.b.Publish(Event{Type: EventWalk, CatID: 3, Transition: "started"})

	for _, c := range clients {
		s.Equal(`data: {"type":"walk","cat_id":3,"transition":"started"}`+"\n\n", next(c))
		s.Empty(next(c))
	}
}

func (s *BroadcasterSuite) TestPublishNoClients() {
	s.NotPanics(func() { s.b.Publish(Event{Type: EventReset}) })
}

func (s *BroadcasterSuite) TestPublishDropsFullClient() {
	slow := s.b.AddClient()
	fast := s.b.AddClient()

	for i := 0; i < ClientBuffer; i++ {
		s.b.Publish(Event{Type: EventWalk, CatID: int64(i)})
		s.NotEmpty(next(fast))
	}
	s.Equal(2, s.b.ClientCount())

	s.b.Publish(Event{Type: EventReset})

	s.Equal(1, s.b.ClientCount())
	s.Contains(next(fast), `"type":"reset"`)
	select {
	case <-slow.Done:
	default:
		s.Fail("slow subscriber should be dropped")
	}
}

func (s *BroadcasterSuite) TestPublishAfterRemove() {
	c := s.b.AddClient()
	s.b.RemoveClient(c)

	s.NotPanics(func() { s.b.Publish(Event{Type: EventReset}) })
	s.Empty(next(c))
}

func (s *BroadcasterSuite) TestServeHTTPRequiresFlusher() {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)

	s.b.ServeHTTP(noFlush{rec}, req)

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal(0, s.b.ClientCount())
}

func (s *BroadcasterSuite) TestServeHTTPStopsOnBrokenWriter() {
	w := newRecorder()
	w.fail = true
	req := httptest.NewRequest(http.MethodGet, "/events", nil)

	done := make(chan struct{})
	go func() {
		s.b.ServeHTTP(w, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("stream should end when the first write fails")
	}
	s.Equal(0, s.b.ClientCount())
}

func (s *BroadcasterSuite) TestServeHTTPWritesQueuedEvents() {
	w := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		s.b.ServeHTTP(w, req)
		close(done)
	}()

	s.Eventually(func() bool { return s.b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	s.b.Publish(Event{Type: EventCatAdded, CatID: 7})
	s.Eventually(func() bool {
		return strings.Contains(w.Body(), `"cat_id":7`)
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	s.True(strings.HasPrefix(w.Body(), `data: {"type":"connected"}`))
	s.Equal(0, s.b.ClientCount())
}

func TestServeHTTP(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(b)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readEvents(ctx, resp)
	assert.Contains(t, <-events, `"type":"connected"`)
	assert.Equal(t, 1, b.ClientCount())

	b.Publish(Event{Type: EventCatAdded, CatID: 1})
	assert.Contains(t, <-events, `"type":"cat_added"`)

	cancel()
	assert.Eventually(t, func() bool { return b.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestServeHTTPConcurrentPublish(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(b)
	defer srv.Close()

	stop := make(chan struct{})
	var publishers sync.WaitGroup
	for i := 0; i < 4; i++ {
		publishers.Add(1)
		go func() {
			defer publishers.Done()
			for {
				select {
				case <-stop:
					return
				default:
					b.Publish(Event{Type: EventWalk, CatID: 1, Transition: "started"})
				}
			}
		}()
	}

	var subscribers sync.WaitGroup
	for i := 0; i < 20; i++ {
		subscribers.Add(1)
		go func() {
			defer subscribers.Done()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
			if !assert.NoError(t, err) {
				return
			}
			resp, err := http.DefaultClient.Do(req)
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			events := readEvents(ctx, resp)
			assert.Contains(t, <-events, `"type":"connected"`)
			for j := 0; j < 3; j++ {
				if _, ok := <-events; !ok {
					// dropped as a slow subscriber
					return
				}
			}
		}()
	}

	subscribers.Wait()
	close(stop)
	publishers.Wait()
	assert.Eventually(t, func() bool { return b.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// readEvents yields the data lines of an event stream until it closes.
func readEvents(ctx context.Context, resp *http.Response) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			select {
			case out <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
