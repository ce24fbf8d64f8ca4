package forgeclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/runforge-io/runforge-client/pkg/forgeclient"
	"github.com/runforge-io/runforge-client/pkg/runforge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		config := &runforge.Config{
			APIEndpoint: "https://api.runforge.example",
		}

		client, err := forgeclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("rejects nil config", func(t *testing.T) {
		t.Parallel()

		client, err := forgeclient.New(context.Background(), nil)
		require.ErrorIs(t, err, runforge.ErrConfigRequired)
		assert.Nil(t, client)
	})

	t.Run("rejects missing endpoint", func(t *testing.T) {
		t.Parallel()

		client, err := forgeclient.New(context.Background(), &runforge.Config{})
		require.ErrorIs(t, err, runforge.ErrAPIEndpointRequired)
		assert.Nil(t, client)
	})

	t.Run("rejects skip TLS verify outside dev mode", func(t *testing.T) {
		config := &runforge.Config{
			APIEndpoint:   "https://api.runforge.example",
			SkipTLSVerify: true,
		}

		client, err := forgeclient.New(context.Background(), config)
		require.Error(t, err)
		assert.Nil(t, client)
	})

	t.Run("normalizes endpoint without scheme", func(t *testing.T) {
		t.Parallel()

		config := &runforge.Config{
			APIEndpoint: "api.runforge.example/",
		}

		client, err := forgeclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.Equal(t, "https://api.runforge.example", config.APIEndpoint)
	})
}

func TestNewWithEndpoint(t *testing.T) {
	t.Parallel()

	client, err := forgeclient.NewWithEndpoint(context.Background(), "https://api.runforge.example")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	client, err := forgeclient.NewWithToken(context.Background(), "https://api.runforge.example", "test-token")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithAPIKey(t *testing.T) {
	t.Parallel()

	client, err := forgeclient.NewWithAPIKey(context.Background(), "https://api.runforge.example", "rfk_test")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestClientIntegration(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/v1/info":
			info := runforge.Info{
				Name:    "Test Runforge",
				Version: 1,
			}
			_ = json.NewEncoder(writer).Encode(info)
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := forgeclient.NewWithEndpoint(context.Background(), server.URL)
	require.NoError(t, err)

	info, err := client.GetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Test Runforge", info.Name)
	assert.Equal(t, 1, info.Version)
}
