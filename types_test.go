package sptzx_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/sagarc03/sptzx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectRecord_Expired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rec := sptzx.ObjectRecord{CreatedAt: now, ExpiresAt: now.Add(time.Second)}

	assert.False(t, rec.Expired(now))
	assert.False(t, rec.Expired(now.Add(999*time.Millisecond)))
	assert.True(t, rec.Expired(now.Add(time.Second)))
	assert.True(t, rec.Expired(now.Add(time.Hour)))
}

func TestSignedLink_URL(t *testing.T) {
	link := sptzx.SignedLink{
		ID:        "3f1c",
		ExpiresAt: time.Unix(1700000000, 0),
		Signature: "abcdef",
	}

	tests := []struct {
		name     string
		base     string
		download bool
		want     string
	}{
		{
			name: "view",
			base: "http://localhost:8080",
			want: "http://localhost:8080/file/3f1c?exp=1700000000&sig=abcdef",
		},
		{
			name: "trailing slash",
			base: "https://relay.example.com/",
			want: "https://relay.example.com/file/3f1c?exp=1700000000&sig=abcdef",
		},
		{
			name:     "download",
			base:     "http://localhost:8080",
			download: true,
			want:     "http://localhost:8080/file/3f1c?dl=1&exp=1700000000&sig=abcdef",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := link.URL(tt.base, tt.download)
			assert.Equal(t, tt.want, got)

			u, err := url.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, "1700000000", u.Query().Get("exp"))
		})
	}
}

func TestSystemClock(t *testing.T) {
	assert.WithinDuration(t, time.Now(), sptzx.SystemClock().Now(), time.Second)
}

func TestTables_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tables  sptzx.Tables
		wantErr bool
	}{
		{name: "valid", tables: sptzx.Tables{Objects: "sptzx_objects"}},
		{name: "empty", tables: sptzx.Tables{}, wantErr: true},
		{name: "uppercase", tables: sptzx.Tables{Objects: "Objects"}, wantErr: true},
		{name: "starts with digit", tables: sptzx.Tables{Objects: "1objects"}, wantErr: true},
		{name: "sql injection", tables: sptzx.Tables{Objects: "objects; drop table x"}, wantErr: true},
		{name: "too long", tables: sptzx.Tables{Objects: "a234567890123456789012345678901234567890123456789012345678901234"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tables.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
