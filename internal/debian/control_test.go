package debian_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heroku/deb-packages-buildpack/internal/debian"
)

func TestParseParagraphsSplitsOnBlankLines(t *testing.T) {
	doc := "Package: curl\nVersion: 7.81.0-1\n\nPackage: wget\nVersion: 1.21.2-1\n"

	paragraphs, err := debian.ParseParagraphs(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, paragraphs, 2)

	assert.Equal(t, "curl", paragraphs[0].Get("Package"))
	assert.Equal(t, "7.81.0-1", paragraphs[0].Get("Version"))
	assert.Equal(t, "wget", paragraphs[1].Get("Package"))
}

func TestParseParagraphsFoldsContinuationLines(t *testing.T) {
	doc := "Package: curl\nDescription: command line tool\n for transferring data\n with URL syntax\n"

	paragraphs, err := debian.ParseParagraphs(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, paragraphs, 1)

	assert.Equal(t, "command line tool\nfor transferring data\nwith URL syntax",
		paragraphs[0].Get("Description"))
}

func TestParseParagraphsRejectsLeadingContinuation(t *testing.T) {
	_, err := debian.ParseParagraphs(strings.NewReader(" leading continuation\n"))
	assert.Error(t, err)
}
