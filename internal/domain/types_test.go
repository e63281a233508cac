package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tiku/internal/domain"
)

func TestStringList_ValueAndScan(t *testing.T) {
	v, err := domain.StringList{"数列", "导数题"}.Value()
	assert.NoError(t, err)
	assert.JSONEq(t, `["数列","导数题"]`, string(v.([]byte)))

	var scanned domain.StringList
	assert.NoError(t, scanned.Scan(v))
	assert.Equal(t, domain.StringList{"数列", "导数题"}, scanned)
}

func TestStringList_NilValueIsEmptyArray(t *testing.T) {
	var l domain.StringList
	v, err := l.Value()
	assert.NoError(t, err)
	assert.Equal(t, "[]", string(v.([]byte)))
}

func TestStringList_ScanNilLeavesZero(t *testing.T) {
	var l domain.StringList
	assert.NoError(t, l.Scan(nil))
	assert.Nil(t, l)
}

func TestUUIDList_ValueAndScan(t *testing.T) {
	id := uuid.New()
	v, err := domain.UUIDList{id}.Value()
	assert.NoError(t, err)

	var scanned domain.UUIDList
	assert.NoError(t, scanned.Scan(string(v.([]byte))))
	assert.Equal(t, domain.UUIDList{id}, scanned)
}
