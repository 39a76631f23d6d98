package hashutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashStrings(t *testing.T) {
	assert.Equal(t, HashStrings("a", "b"), HashStrings("a", "b"))
	assert.NotEqual(t, HashStrings("a", "b"), HashStrings("b", "a"))
	// separator keeps part boundaries distinct
	assert.NotEqual(t, HashStrings("ab"), HashStrings("a", "b"))
	assert.Len(t, HashStrings("x"), 64)
}

func TestTextDigest(t *testing.T) {
	assert.Equal(t, TextDigest("  Fed Cuts Rates "), TextDigest("fed cuts rates"))
	assert.NotEqual(t, TextDigest("fed cuts rates"), TextDigest("fed holds rates"))
}
