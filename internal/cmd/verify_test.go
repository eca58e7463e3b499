package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/cli-runtime/iooption"

	"github.com/tomasbasham/minigame-publish/internal/manifest"
)

func TestVerifyTargets_BaseURLEscapesNames(t *testing.T) {
	root := NewRootOptions(iooption.IOStreams{In: &bytes.Buffer{}, Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}})
	root.Config.Bucket = "X"
	root.Config.Folder = "mini-games"

	o := &VerifyOptions{root: root, manifest: manifest.Manifest{{Name: "a#1.html"}, {Name: "b.html"}}}

	targets := o.targets()
	require.Len(t, targets, 2)
	assert.Equal(t, "https://storage.googleapis.com/X/mini-games/a%231.html", targets[0].URL)

	o.BaseURL = "http://127.0.0.1:8080"
	targets = o.targets()
	require.Len(t, targets, 2)
	assert.Equal(t, "http://127.0.0.1:8080/X/mini-games/a%231.html", targets[0].URL)
	assert.Equal(t, "http://127.0.0.1:8080/X/mini-games/b.html", targets[1].URL)
}
