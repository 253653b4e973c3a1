package chat

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncatePreview(t *testing.T) {
	short := "bora treinar amanhã?"
	assert.Equal(t, short, truncatePreview(short))

	long := strings.Repeat("a", 79) + "ção e mais texto"
	got := truncatePreview(long)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 80, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("a", 79)+"ç", got)

	// multibyte-only content
	accented := strings.Repeat("ã", 120)
	got = truncatePreview(accented)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ã", 80), got)
}
