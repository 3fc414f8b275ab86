package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindMissingParameter, KindOf(fmt.Errorf("district: %w", ErrMissingParameter)))
	assert.Equal(t, KindFileNotFound, KindOf(fmt.Errorf("open x.csv: %w", ErrFileNotFound)))
	assert.Equal(t, KindRemoteUnavailable, KindOf(ErrRemoteUnavailable))
	assert.Equal(t, KindPersistenceUnavailable, KindOf(ErrPersistenceUnavailable))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestRawRecordValueScan(t *testing.T) {
	raw := RawRecord{"district_name": "North Goa", "persondays_generated": float64(12)}

	v, err := raw.Value()
	assert.NoError(t, err)

	var back RawRecord
	assert.NoError(t, back.Scan(v))
	assert.Equal(t, raw, back)

	var empty RawRecord
	assert.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
	assert.Error(t, empty.Scan(42))
}
