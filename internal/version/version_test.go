package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString_Defaults(t *testing.T) {
	assert.Equal(t, "stepnotify dev (commit unknown, built unknown)", String())
}
