package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroom-kit/student-records/internal/config"
)

func TestNewMinioClient_RequiresSettings(t *testing.T) {
	_, err := NewMinioClient(config.StorageConfig{})
	assert.Error(t, err)

	_, err = NewMinioClient(config.StorageConfig{Endpoint: "localhost:9000", Bucket: "b"})
	assert.Error(t, err)

	_, err = NewMinioClient(config.StorageConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"})
	assert.Error(t, err)
}

func TestNewMinioClient(t *testing.T) {
	client, err := NewMinioClient(config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "student-exports",
	})
	require.NoError(t, err)
	assert.Equal(t, "student-exports", client.Bucket())

	var _ ObjectStorage = client
}
