package verify

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Target is a named URL to load.
type Target struct {
	Name string
	URL  string
}

// Outcome is the verdict for one Target.
type Outcome struct {
	Target Target
	Page   *Page
	Err    error
}

// OK reports whether the target served a successful HTML document.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Check loads every target in order. A failed load or an unexpected response
// is recorded against that target; the remaining targets are still checked.
func Check(ctx context.Context, loader Loader, targets []Target) []Outcome {
	outcomes := make([]Outcome, 0, len(targets))
	for _, t := range targets {
		page, err := loader.Load(ctx, t.URL)
		if err == nil {
			err = validate(page)
		}
		outcomes = append(outcomes, Outcome{Target: t, Page: page, Err: err})
	}
	return outcomes
}

func validate(p *Page) error {
	if p.Status == 0 {
		return fmt.Errorf("no document response observed")
	}
	if p.Status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", p.Status)
	}
	mediaType, _, err := mime.ParseMediaType(p.MIMEType)
	if err != nil || !strings.EqualFold(mediaType, "text/html") {
		return fmt.Errorf("unexpected content type %q", p.MIMEType)
	}
	return nil
}

// Write prints one line per outcome and returns the number of failures.
func Write(w io.Writer, outcomes []Outcome) int {
	failed := 0
	for _, o := range outcomes {
		if o.OK() {
			fmt.Fprintf(w, "  %s: ok (status %d, ttfb %s, title %q)\n", o.Target.Name, o.Page.Status, o.Page.TTFB, o.Page.Title)
			continue
		}
		failed++
		fmt.Fprintf(w, "  %s: FAILED %s (%v)\n", o.Target.Name, o.Target.URL, o.Err)
	}
	return failed
}
