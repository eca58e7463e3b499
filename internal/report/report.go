// Package report renders the manual-fallback instructions printed when no
// credentials are available: the local readiness of every manifest entry, the
// console steps to upload them by hand, and the public URLs they will have.
package report

import (
	"fmt"
	"io"

	"github.com/tomasbasham/minigame-publish/internal/manifest"
	"github.com/tomasbasham/minigame-publish/internal/storage"
)

// Reporter writes manual upload instructions to Out.
type Reporter struct {
	Out io.Writer

	// CacheControl is the value the operator should set on each object.
	// Defaults to storage.DefaultCacheControl.
	CacheControl string
}

// Report prints the existence status of every entry in manifest order, the
// manual steps, and both canonical URLs of every entry. Missing files are
// advisory; Report never fails.
func (r *Reporter) Report(m manifest.Manifest, bucket, folder string) {
	cacheControl := r.CacheControl
	if cacheControl == "" {
		cacheControl = storage.DefaultCacheControl
	}

	fmt.Fprintln(r.Out, "No credentials found; automated upload is not possible.")
	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "Local files:")

	missing := 0
	for _, s := range m.Check() {
		state := "present"
		if !s.Exists {
			state = "NOT FOUND"
			missing++
		}
		fmt.Fprintf(r.Out, "  %s: %s (%s)\n", s.Entry.Name, state, s.Entry.LocalPath)
	}
	if missing > 0 {
		fmt.Fprintf(r.Out, "  %d of %d file(s) missing; create them before uploading.\n", missing, len(m))
	}

	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "Manual upload steps:")
	fmt.Fprintln(r.Out, "  1. Open https://console.firebase.google.com/ and select the project.")
	fmt.Fprintf(r.Out, "  2. Go to Storage and open bucket %q.\n", bucket)
	fmt.Fprintf(r.Out, "  3. Create or open the folder %q.\n", folder)
	fmt.Fprintln(r.Out, "  4. Upload each file listed above, keeping its name.")
	fmt.Fprintf(r.Out, "  5. Set Content-Type to %q and Cache-Control to %q on each object.\n", storage.ContentTypeHTML, cacheControl)
	fmt.Fprintln(r.Out, "  6. Grant public read access (allUsers: Reader) on each object.")

	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "Public URLs after upload:")
	WriteURLs(r.Out, bucket, folder, m)
}

// WriteURLs prints both canonical URL forms for each entry in order. The
// direct form is the one clients should use.
func WriteURLs(w io.Writer, bucket, folder string, m manifest.Manifest) {
	for _, e := range m {
		urls := storage.URLsFor(bucket, folder, e.Name)
		fmt.Fprintf(w, "  %s\n", e.Name)
		fmt.Fprintf(w, "    direct:   %s\n", urls.Direct)
		fmt.Fprintf(w, "    firebase: %s\n", urls.Firebase)
	}
}
