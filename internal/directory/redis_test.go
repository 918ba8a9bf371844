package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ridelinkapp/ridelink/internal/models"
)

func recordFixture(created time.Time) models.DirectoryRecord {
	return models.DirectoryRecord{
		ID:          "doc-1",
		Email:       "a@x.com",
		Password:    "hash",
		Role:        "Driver",
		FullName:    "Ann Driver",
		PhoneNumber: "+371000000",
		Username:    "ann",
		CreatedAt:   created,
	}
}

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "users:doc-1", recordKey("doc-1"))
}

func TestRecordToHash_RequiredAndOptionalFields(t *testing.T) {
	created := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	full := recordToHash(recordFixture(created))
	assert.Equal(t, map[string]string{
		"email":       "a@x.com",
		"password":    "hash",
		"role":        "Driver",
		"fullName":    "Ann Driver",
		"phoneNumber": "+371000000",
		"username":    "ann",
		"createdAt":   "1768032000",
	}, full)

	minimal := recordToHash(models.DirectoryRecord{ID: "doc-2", Email: "b@x.com", Password: "hash2", Role: "Passenger"})
	assert.Equal(t, map[string]string{
		"email":    "b@x.com",
		"password": "hash2",
		"role":     "Passenger",
	}, minimal, "optional zero fields must not be stored")
}

func TestHashToRecord_RoundTrip(t *testing.T) {
	created := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	original := recordFixture(created)

	got := hashToRecord("doc-1", recordToHash(original))
	assert.Equal(t, original, got)
}

func TestHashToRecord_MissingAndBadCreatedAt(t *testing.T) {
	noTS := hashToRecord("d", map[string]string{"email": "a@x.com", "password": "h", "role": "Admin"})
	assert.True(t, noTS.CreatedAt.IsZero())

	badTS := hashToRecord("d", map[string]string{"email": "a@x.com", "password": "h", "role": "Admin", "createdAt": "yesterday"})
	assert.True(t, badTS.CreatedAt.IsZero())
}
