package utils

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadAtMost(t *testing.T) {
	data, err := ReadAtMost(strings.NewReader("BEGIN:VCARD"), 11)
	assert.Nil(t, err)
	assert.Equal(t, "BEGIN:VCARD", string(data))

	_, err = ReadAtMost(strings.NewReader("BEGIN:VCARD"), 10)
	assert.NotNil(t, err)
}

func TestCreateDirIfNotExist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db", "backups")

	assert.False(t, FileExist(dir))
	assert.Nil(t, CreateDirIfNotExist(dir))
	assert.True(t, FileExist(dir))
	assert.Nil(t, CreateDirIfNotExist(dir), "Should not fail when the directory exists")
}
