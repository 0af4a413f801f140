package lib

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMediaPublicID(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "typical upload url",
			url:  "https://res.cloudinary.com/demo/image/upload/v1700000000/zmxorcxexpdbh8r0bkjb.png",
			want: "zmxorcxexpdbh8r0bkjb",
		},
		{
			name: "no extension",
			url:  "https://res.cloudinary.com/demo/image/upload/abc123",
			want: "abc123",
		},
		{
			name: "multiple dots keeps first segment",
			url:  "https://host/path/asset.tar.gz",
			want: "asset",
		},
		{
			name: "bare segment",
			url:  "asset.png",
			want: "asset",
		},
		{
			name: "empty url",
			url:  "",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, MediaPublicID(tc.url))
		})
	}
}

func TestUploadImageWithoutClient(t *testing.T) {
	Cloudinary = nil

	_, err := UploadImage(context.Background(), "data:image/png;base64,AAAA")
	require.ErrorIs(t, err, ErrMediaHostNotConfigured)
}

func TestDestroyImageWithoutClient(t *testing.T) {
	Cloudinary = nil

	err := DestroyImage(context.Background(), "https://host/a/b.png")
	require.ErrorIs(t, err, ErrMediaHostNotConfigured)
}
