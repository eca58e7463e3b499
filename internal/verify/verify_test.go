package verify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader map[string]struct {
	page *Page
	err  error
}

func (f fakeLoader) Load(_ context.Context, url string) (*Page, error) {
	r, ok := f[url]
	if !ok {
		return nil, errors.New("unknown url")
	}
	return r.page, r.err
}

func TestCheck(t *testing.T) {
	loader := fakeLoader{
		"ok":        {page: &Page{Status: 200, MIMEType: "text/html", Title: "Memory Match"}},
		"charset":   {page: &Page{Status: 200, MIMEType: "text/html; charset=utf-8"}},
		"forbidden": {page: &Page{Status: 403, MIMEType: "application/xml"}},
		"json":      {page: &Page{Status: 200, MIMEType: "application/json"}},
		"nodoc":     {page: &Page{}},
		"down":      {err: errors.New("net::ERR_NAME_NOT_RESOLVED")},
	}

	targets := []Target{
		{Name: "a", URL: "ok"},
		{Name: "b", URL: "charset"},
		{Name: "c", URL: "forbidden"},
		{Name: "d", URL: "json"},
		{Name: "e", URL: "nodoc"},
		{Name: "f", URL: "down"},
	}

	outcomes := Check(context.Background(), loader, targets)
	require.Len(t, outcomes, len(targets))

	assert.True(t, outcomes[0].OK())
	assert.True(t, outcomes[1].OK())
	assert.ErrorContains(t, outcomes[2].Err, "unexpected status 403")
	assert.ErrorContains(t, outcomes[3].Err, "unexpected content type")
	assert.ErrorContains(t, outcomes[4].Err, "no document response")
	assert.ErrorContains(t, outcomes[5].Err, "ERR_NAME_NOT_RESOLVED")

	for i, o := range outcomes {
		assert.Equal(t, targets[i], o.Target)
	}
}

func TestWrite(t *testing.T) {
	outcomes := []Outcome{
		{Target: Target{Name: "a.html", URL: "u1"}, Page: &Page{Status: 200, Title: "A", TTFB: 12 * time.Millisecond}},
		{Target: Target{Name: "b.html", URL: "u2"}, Err: errors.New("unexpected status 404")},
	}

	var out bytes.Buffer
	failed := Write(&out, outcomes)

	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), `a.html: ok (status 200, ttfb 12ms, title "A")`)
	assert.Contains(t, out.String(), "b.html: FAILED u2 (unexpected status 404)")
}

func TestExtractTTFB(t *testing.T) {
	assert.Zero(t, extractTTFB(&network.Response{}))
	assert.Zero(t, extractTTFB(&network.Response{Timing: &network.ResourceTiming{ReceiveHeadersStart: -1}}))
	assert.Equal(t, 250*time.Millisecond, extractTTFB(&network.Response{Timing: &network.ResourceTiming{ReceiveHeadersStart: 250}}))
}
