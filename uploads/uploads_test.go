package uploads

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/victim-dao-api/config"
)

func TestNewWithoutCredentials(t *testing.T) {
	u, err := New(config.CloudinaryConfig{})
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), strings.NewReader("x"), ReceiptFolder)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewWithCredentials(t *testing.T) {
	u, err := New(config.CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "secret"})
	require.NoError(t, err)
	assert.IsType(t, &CloudinaryUploader{}, u)
}
