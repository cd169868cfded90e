package spider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/scholar-crawler/internal/crawler"
	collyfetcher "github.com/JakeFAU/scholar-crawler/internal/fetcher/colly"
)

type nopFetcher struct{}

func (nopFetcher) Fetch(context.Context, string) (crawler.Page, error) {
	return crawler.Page{}, errors.New("not used")
}

func intPtr(v int) *int { return &v }

func TestSeedURLsPerCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter crawler.SearchFilter
		want   string
	}{
		{
			name: "articles",
			filter: crawler.SearchFilter{
				Keywords:  "machine learning",
				StartYear: intPtr(2020),
				EndYear:   intPtr(2022),
				Category:  crawler.Articles,
			},
			want: "https://scholar.google.com/scholar?hl=en&q=machine+learning&as_ylo=2020&as_yhi=2022&lr=lang_en&as_sdt=0,5",
		},
		{
			name: "case law",
			filter: crawler.SearchFilter{
				Keywords:  "abortion",
				Languages: []string{"en", "FR"},
				Category:  crawler.CaseLaw,
			},
			want: "https://scholar.google.com/scholar?hl=en&q=abortion&as_ylo=&as_yhi=&lr=lang_en|lang_fr&as_sdt=2006",
		},
		{
			name:   "profiles",
			filter: crawler.SearchFilter{Keywords: "JicYPdAAAAAJ", Category: crawler.Profiles},
			want:   "https://scholar.google.com/citations?hl=en&user=JicYPdAAAAAJ&cstart=0&pagesize=100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := New(tt.filter, nopFetcher{}, Config{}, nil)
			require.NoError(t, err)
			require.Equal(t, []string{tt.want}, s.SeedURLs())
			require.NotEmpty(t, s.RunID())
		})
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	_, err := New(crawler.SearchFilter{Keywords: "  "}, nopFetcher{}, Config{}, nil)
	var cfgErr *crawler.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "keywords", cfgErr.Field)

	_, err = New(crawler.SearchFilter{Keywords: "x", StartYear: intPtr(2022), EndYear: intPtr(2020)}, nopFetcher{}, Config{}, nil)
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "year range", cfgErr.Field)

	_, err = New(crawler.SearchFilter{Keywords: "x", Category: crawler.Category(9)}, nopFetcher{}, Config{}, nil)
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "category", cfgErr.Field)

	_, err = New(crawler.SearchFilter{Keywords: "x"}, nopFetcher{}, Config{BaseURL: "not a url"}, nil)
	require.ErrorAs(t, err, &cfgErr)

	_, err = New(crawler.SearchFilter{Keywords: "x"}, nil, Config{}, nil)
	require.ErrorAs(t, err, &cfgErr)
}

func TestSpidersDoNotShareState(t *testing.T) {
	t.Parallel()

	a, err := New(crawler.SearchFilter{Keywords: "alpha"}, nopFetcher{}, Config{}, nil)
	require.NoError(t, err)
	b, err := New(crawler.SearchFilter{Keywords: "beta"}, nopFetcher{}, Config{}, nil)
	require.NoError(t, err)

	seeds := a.SeedURLs()
	seeds[0] = "mutated"
	require.NotEqual(t, "mutated", a.SeedURLs()[0])
	require.NotEqual(t, a.SeedURLs(), b.SeedURLs())
	require.NotEqual(t, a.RunID(), b.RunID())
}

const firstArticlePage = `<html><body>
<div class="gs_r gs_or gs_scl"><div class="gs_ri">
  <h3 class="gs_rt"><a href="https://example.org/1">First paper</a></h3>
  <div class="gs_a">A Author - Journal, 2020 - example.org</div>
  <div class="gs_fl"><a href="#">Save</a> <a href="#">Cite</a> <a href="/scholar?cites=1">Cited by 7</a></div>
</div></div>
<div id="gs_n"><table><tr><td align="left"><a href="/scholar?start=10&amp;q=go&amp;hl=en&amp;as_sdt=0,5">Next</a></td></tr></table></div>
</body></html>`

const secondArticlePage = `<html><body>
<div class="gs_r gs_or gs_scl"><div class="gs_ri">
  <h3 class="gs_rt"><a href="https://example.org/2">Second paper</a></h3>
  <div class="gs_a">B Author - Proceedings, 2018 - example.org</div>
</div></div>
</body></html>`

func TestRunFollowsPagination(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/scholar" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		if r.URL.Query().Get("start") == "10" {
			fmt.Fprint(w, secondArticlePage)
			return
		}
		fmt.Fprint(w, firstArticlePage)
	}))
	defer server.Close()

	fetcher := collyfetcher.New(collyfetcher.Config{Timeout: 2 * time.Second}, zap.NewNop())
	s, err := New(crawler.SearchFilter{Keywords: "go"}, fetcher, Config{BaseURL: server.URL, Delay: time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	it := s.Run()
	require.Zero(t, hits.Load(), "nothing is fetched before the first Next")

	var titles []string
	for it.Next(context.Background()) {
		rec, ok := it.Record().(crawler.ArticleRecord)
		require.True(t, ok)
		titles = append(titles, rec.Title)
	}
	require.NoError(t, it.Err())
	require.Equal(t, []string{"First paper", "Second paper"}, titles)
	require.Equal(t, int32(2), hits.Load())
	require.Equal(t, crawler.StateDone, it.State())
	require.Equal(t, 2, it.Stats().Pages)
}

func TestRunAbortsOnBlockedPage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := collyfetcher.New(collyfetcher.Config{Timeout: 2 * time.Second}, nil)
	s, err := New(crawler.SearchFilter{Keywords: "go", Category: crawler.CaseLaw}, fetcher, Config{BaseURL: server.URL}, nil)
	require.NoError(t, err)

	it := s.Run()
	require.False(t, it.Next(context.Background()))
	var netErr *crawler.NetworkError
	require.ErrorAs(t, it.Err(), &netErr)
	require.Equal(t, http.StatusForbidden, netErr.StatusCode)
}
