package naver_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stockwatch/internal/quote"
	"stockwatch/internal/quote/extract"
	"stockwatch/internal/quote/naver"
)

const itemPage = `<html><body>
<p class="no_today"><em class="no_down"><span class="blind">71,500</span></em></p>
<p class="no_exday">
  <em class="no_down"><span class="ico minus"></span><span class="blind">1,200</span></em>
  <em class="no_down"><span class="blind">1.71%</span></em>
</p>
<span class="blind">volume</span>
</body></html>`

func TestFetch_ParsesItemPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Assert: the request targets the item page with the code attached.
		require.Equal(t, "/item/main.nhn", r.URL.Path)
		require.Equal(t, "005930", r.URL.Query().Get("code"))
		require.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		_, _ = io.WriteString(w, itemPage)
	}))
	defer srv.Close()

	c := naver.New(naver.WithBaseURL(srv.URL))
	snap, err := c.Fetch(context.Background(), "005930")
	require.NoError(t, err)
	require.Equal(t, "005930", snap.Code)
	require.Equal(t, int64(71500), snap.Price)
	require.Equal(t, int64(-1200), snap.Change)
	require.InDelta(t, -1.71, snap.ChangeRate, 1e-9)
	require.WithinDuration(t, time.Now(), snap.FetchedAt, 5*time.Second)
}

func TestFetch_NonSuccessStatusIsHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	c := naver.New(naver.WithBaseURL(srv.URL))
	_, err := c.Fetch(context.Background(), "005930")
	var qe *quote.Error
	require.ErrorAs(t, err, &qe)
	require.Equal(t, quote.KindHTTP, qe.Kind)
	require.Equal(t, "005930", qe.Code)
}

func TestFetch_TransportFailureIsNetworkError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(nil, errors.New("connection refused")).
		Times(1)

	c := naver.New(naver.WithHTTPClient(httpClient))
	_, err := c.Fetch(context.Background(), "035720")
	var qe *quote.Error
	require.ErrorAs(t, err, &qe)
	require.Equal(t, quote.KindNetwork, qe.Kind)
}

func TestFetch_UnparsableBodyIsParseError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("<html><body>maintenance</body></html>")),
			}, nil
		}).
		Times(1)

	c := naver.New(naver.WithHTTPClient(httpClient))
	_, err := c.Fetch(context.Background(), "000660")
	var qe *quote.Error
	require.ErrorAs(t, err, &qe)
	require.Equal(t, quote.KindParse, qe.Kind)
	require.ErrorIs(t, err, extract.ErrNoPrice)
}

func TestWithHeader(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "bar", req.Header.Get("foo"))
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(itemPage)),
			}, nil
		}).
		Times(1)

	c := naver.New(naver.WithHTTPClient(httpClient), naver.WithHeader(http.Header{
		"foo": []string{"bar"},
	}))
	_, err := c.Fetch(context.Background(), "005930")
	require.NoError(t, err)
}

func TestWithUserAgent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "custom-agent/1.0", req.Header.Get("User-Agent"))
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(itemPage)),
			}, nil
		}).
		Times(1)

	c := naver.New(naver.WithHTTPClient(httpClient), naver.WithUserAgent("custom-agent/1.0"))
	_, err := c.Fetch(context.Background(), "005930")
	require.NoError(t, err)
}
