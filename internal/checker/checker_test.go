package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newCheckServer отвечает exists=true только для названия "acme"
func newCheckServer(t *testing.T, hits *int64) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		if r.URL.Path != checkNamePath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("name") {
		case "acme":
			_, _ = w.Write([]byte(`{"exists":true}`))
		case "x":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"name is too short"}`))
		default:
			_, _ = w.Write([]byte(`{"exists":false}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDuplicateChecker_Check(t *testing.T) {
	var hits int64
	srv := newCheckServer(t, &hits)
	c := NewDuplicateChecker(srv.URL, 10*time.Millisecond, zap.NewNop())
	defer c.Close()

	tests := []struct {
		name     string
		value    string
		expected bool
		wantErr  bool
	}{
		{name: "Taken", value: "acme", expected: true},
		{name: "Free", value: "fresh", expected: false},
		{name: "Server rejects", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := c.Check(context.Background(), tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "name is too short")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, exists)
		})
	}
}

func TestDuplicateChecker_ScheduleBurst(t *testing.T) {
	var hits int64
	srv := newCheckServer(t, &hits)
	c := NewDuplicateChecker(srv.URL, 50*time.Millisecond, zap.NewNop())
	defer c.Close()

	results := make(chan Result, 4)
	for _, v := range []string{"a", "ac", "acm", "acme"} {
		c.ScheduleDuplicateCheck(v, func(r Result) { results <- r })
	}

	select {
	case r := <-results:
		assert.NoError(t, r.Err)
		assert.Equal(t, "acme", r.Value)
		assert.True(t, r.Exists)
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&hits), "Burst should produce one request")
	assert.Empty(t, results)
}

func TestDuplicateChecker_CloseBeforeFire(t *testing.T) {
	var hits int64
	srv := newCheckServer(t, &hits)
	c := NewDuplicateChecker(srv.URL, 50*time.Millisecond, zap.NewNop())

	var called int32
	c.ScheduleDuplicateCheck("acme", func(Result) { atomic.StoreInt32(&called, 1) })
	assert.True(t, c.Pending())
	c.Close()

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&called))
	assert.Equal(t, int64(0), atomic.LoadInt64(&hits))
}

func TestDuplicateChecker_RemoteFailure(t *testing.T) {
	c := NewDuplicateChecker("http://127.0.0.1:1", 10*time.Millisecond, zap.NewNop())
	defer c.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	var got Result
	c.ScheduleDuplicateCheck("acme", func(r Result) {
		got = r
		wg.Done()
	})
	wg.Wait()

	assert.Error(t, got.Err)
	assert.False(t, got.Exists)
	assert.Equal(t, "acme", got.Value)
}

func TestDuplicateChecker_CloseFromCallback(t *testing.T) {
	var hits int64
	srv := newCheckServer(t, &hits)
	c := NewDuplicateChecker(srv.URL, 10*time.Millisecond, zap.NewNop())

	// Тест 1: Close внутри onResult возвращает управление
	done := make(chan struct{})
	c.ScheduleDuplicateCheck("acme", func(Result) {
		c.Close()
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close from callback did not return")
	}

	// Тест 2: После такого Close новые проверки не планируются
	var called int32
	c.ScheduleDuplicateCheck("fresh", func(Result) { atomic.StoreInt32(&called, 1) })
	assert.False(t, c.Pending())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&called))
	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
}
