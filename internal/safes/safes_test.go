package safes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/safewarmer/internal/domain"
)

func analyticsServer(t *testing.T, body string, hits *int32) *httptest.Server {
	t.Helper()
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		assert.Equal(t, AnalyticsPath, r.URL.Path)
		assert.Equal(t, "300", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func TestParseResults_PreservesOrderAndDuplicates(t *testing.T) {
	got, err := ParseResults([]byte(`{"count":3,"results":[{"safe":"0xA","total":10},{"safe":"0xB"},{"safe":"0xA"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []domain.Safe{"0xA", "0xB", "0xA"}, got)
}

func TestParseResults_Malformed(t *testing.T) {
	bodies := []string{
		`not json`,
		`{}`,
		`{"results":{}}`,
		`{"results":[{"address":"0xA"}]}`,
		`{"results":[{"safe":42}]}`,
		`{"results":[{"safe":""}]}`,
	}
	for _, b := range bodies {
		_, err := ParseResults([]byte(b))
		assert.ErrorIs(t, err, ErrMalformed, b)
	}
}

func TestRemote_Load(t *testing.T) {
	s := analyticsServer(t, `{"results":[{"safe":"0xA"},{"safe":"0xB"}]}`, nil)

	r := NewRemote(s.URL+"/", 0, time.Second)
	assert.Equal(t, s.URL+AnalyticsPath+"?limit=300", r.URL())

	got, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Safe{"0xA", "0xB"}, got)
}

func TestRemote_Non2xxFails(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer s.Close()

	_, err := NewRemote(s.URL, MaxLimit, time.Second).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestRemote_NetworkErrorFails(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	addr := s.URL
	s.Close()

	_, err := NewRemote(addr, MaxLimit, time.Second).Load(context.Background())
	assert.Error(t, err)
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "safes.csv")
	in := []domain.Safe{"0x1", "0x2", "0x1", `0x"odd"`}

	require.NoError(t, WriteFile(path, in))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\"safe\"\n\"0x1\"\n\"0x2\"\n\"0x1\"\n\"0x\"\"odd\"\"\"\n", string(raw))

	got, err := (&File{Path: path}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestFile_RoundTripKeepsPaddedIDs(t *testing.T) {
	body := `{"results":[{"safe":" 0xA"},{"safe":"0xB "},{"safe":"  "},{"safe":"0xB "}]}`
	in, err := ParseResults([]byte(body))
	require.NoError(t, err)
	require.Len(t, in, 4)

	path := filepath.Join(t.TempDir(), "safes.csv")
	require.NoError(t, WriteFile(path, in))
	got, err := (&File{Path: path}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Safe{" 0xA", "0xB ", "  ", "0xB "}, got)
}

func TestReadList_SkipsHeaderAndBlankLines(t *testing.T) {
	got, err := ReadList(bytes.NewBufferString("safe\n0xA\n\n\"0xB\"\n"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Safe{"0xA", "0xB"}, got)
}

func TestSelect_FetchesOnceThenReadsCache(t *testing.T) {
	var hits int32
	s := analyticsServer(t, `{"results":[{"safe":"0xA"},{"safe":"0xB"}]}`, &hits)
	remote := NewRemote(s.URL, MaxLimit, time.Second)
	path := filepath.Join(t.TempDir(), "safes.csv")

	first := Select(path, remote, nil)
	assert.IsType(t, &Persisting{}, first)
	got, err := first.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Safe{"0xA", "0xB"}, got)

	second := Select(path, remote, nil)
	assert.IsType(t, &File{}, second)
	again, err := second.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestSelect_NoPathUsesRemote(t *testing.T) {
	remote := NewRemote("http://unused", MaxLimit, time.Second)
	assert.Same(t, remote, Select("", remote, nil))
}
