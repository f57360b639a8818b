package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{uri: "gs://sales/raw/transaction2.csv", wantBucket: "sales", wantObject: "raw/transaction2.csv"},
		{uri: "gs://sales/file.csv", wantBucket: "sales", wantObject: "file.csv"},
		{uri: "gs://sales", wantErr: true},
		{uri: "gs://sales/", wantErr: true},
		{uri: "Data/transaction2.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestRouter_LocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewRouter()
	defer r.Close()

	location := filepath.Join(t.TempDir(), "nested", "out.csv")

	w, err := r.Create(ctx, location)
	require.NoError(t, err)
	_, err = io.WriteString(w, "a,b\n1,2\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rc, err := r.Open(ctx, location)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}

func TestRouter_OpenMissingFile(t *testing.T) {
	r := NewRouter()
	_, err := r.Open(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestRouter_CloseWithoutClient(t *testing.T) {
	assert.NoError(t, NewRouter().Close())
}
