package storage

import (
	"fmt"
	"net/url"
)

// DefaultFolder is the object prefix under which bundles are published.
const DefaultFolder = "mini-games"

// DirectOrigin is the scheme and host of every DirectURL.
const DirectOrigin = "https://storage.googleapis.com"

// ObjectPath returns the object name of an asset inside folder.
func ObjectPath(folder, name string) string {
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// DirectURL is the authoritative public URL of an object, served by the GCS
// XML API. It is valid once the object has been made public. Characters such
// as "#" and "?" in the object path are escaped so the URL always addresses
// the object itself.
func DirectURL(bucket, objectPath string) string {
	u := &url.URL{
		Scheme: "https",
		Host:   "storage.googleapis.com",
		Path:   "/" + bucket + "/" + objectPath,
	}
	return u.String()
}

// FirebaseURL is the Firebase Storage REST form of the same object. The whole
// object path is a single escaped segment, so "/" becomes "%2F".
func FirebaseURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		bucket, url.PathEscape(objectPath))
}

// PublicURLs holds both canonical forms for one object.
type PublicURLs struct {
	Direct   string `json:"direct"`
	Firebase string `json:"firebase"`
}

// URLsFor derives both canonical URLs from the bucket, folder and asset name
// alone, so they can be printed before anything is uploaded.
func URLsFor(bucket, folder, name string) PublicURLs {
	p := ObjectPath(folder, name)
	return PublicURLs{
		Direct:   DirectURL(bucket, p),
		Firebase: FirebaseURL(bucket, p),
	}
}
