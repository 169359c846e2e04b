package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooksScanned(t *testing.T) {
	assert.True(t, LooksScanned(""))
	assert.True(t, LooksScanned("   \n  "))
	assert.True(t, LooksScanned("Fig. 1"))
	assert.False(t, LooksScanned(strings.Repeat("real extracted text ", 10)))
}

func TestExtractTextMissingFile(t *testing.T) {
	_, err := ExtractText("does-not-exist.pdf")
	assert.Error(t, err)
}

func TestExtractTextFromBytesGarbage(t *testing.T) {
	_, err := ExtractTextFromBytes([]byte("this is not a pdf"))
	assert.Error(t, err)
}
