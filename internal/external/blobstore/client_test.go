package blobstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	t.Run("should send multipart body and return secure URL", func(t *testing.T) {
		// given
		var gotPreset, gotFilename string
		var gotData []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			gotPreset = r.FormValue("upload_preset")

			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			gotFilename = header.Filename
			gotData, _ = io.ReadAll(file)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"secure_url":"https://cdn.example.com/bank_slips/slip.png"}`))
		}))
		defer server.Close()

		client := New(server.URL+"/upload", "bank_slips", server.Client())

		// when
		url, err := client.Upload(context.Background(), "slip.png", []byte("fake-png"))

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/bank_slips/slip.png", url)
		assert.Equal(t, "bank_slips", gotPreset)
		assert.Equal(t, "slip.png", gotFilename)
		assert.Equal(t, []byte("fake-png"), gotData)
	})

	t.Run("non-2xx responses surface as errors", func(t *testing.T) {
		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid preset"}`))
		}))
		defer server.Close()

		client := New(server.URL+"/upload", "bank_slips", server.Client())

		// when
		_, err := client.Upload(context.Background(), "slip.png", []byte("fake-png"))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid preset")
	})

	t.Run("missing url in response is an error", func(t *testing.T) {
		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := New(server.URL+"/upload", "bank_slips", server.Client())

		// when
		_, err := client.Upload(context.Background(), "slip.png", []byte("fake-png"))

		// then
		require.Error(t, err)
	})
}
