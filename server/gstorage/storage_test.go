package gstorage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	assert.Equal(t, "tapcard-dev/tapcard.db", ObjectName("tapcard-dev", "tapcard.db"))
	assert.Equal(t, "tapcard.db", ObjectName("", "tapcard.db"))
	assert.Equal(t, "a/b/tapcard.db", ObjectName("a/b/", "tapcard.db"))
}
