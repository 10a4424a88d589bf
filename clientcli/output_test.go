package clientcli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sagarc03/sptzx/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUpload() clientcli.UploadResult {
	return clientcli.UploadResult{
		LocalPath: "./report.pdf",
		ID:        "0123456789abcdef0123456789abcdef",
		Name:      "report.pdf",
		Size:      1536,
		Mime:      "application/pdf",
		View:      "http://localhost:3000/file/0123456789abcdef0123456789abcdef?exp=1&sig=aa",
		Download:  "http://localhost:3000/file/0123456789abcdef0123456789abcdef?dl=1&exp=1&sig=aa",
		TTL:       300,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
}

func TestNewFormatter(t *testing.T) {
	t.Run("json formatter", func(t *testing.T) {
		_, ok := clientcli.NewFormatter(true, false).(*clientcli.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter quiet", func(t *testing.T) {
		hf, ok := clientcli.NewFormatter(false, true).(*clientcli.HumanFormatter)
		require.True(t, ok)
		assert.True(t, hf.Quiet)
	})
}

func TestHumanFormatter_FormatUpload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		err := (&clientcli.HumanFormatter{}).FormatUpload(&buf, []clientcli.UploadResult{sampleUpload()})
		require.NoError(t, err)

		output := buf.String()
		assert.Contains(t, output, "Uploaded: report.pdf (1.5 KiB, application/pdf)")
		assert.Contains(t, output, "View:     http://localhost:3000/file/")
		assert.Contains(t, output, "Download: http://localhost:3000/file/")
		assert.Contains(t, output, "from now")
	})

	t.Run("quiet prints view links only", func(t *testing.T) {
		var buf bytes.Buffer
		res := sampleUpload()
		err := (&clientcli.HumanFormatter{Quiet: true}).FormatUpload(&buf, []clientcli.UploadResult{res})
		require.NoError(t, err)
		assert.Equal(t, res.View+"\n", buf.String())
	})

	t.Run("with error", func(t *testing.T) {
		var buf bytes.Buffer
		err := (&clientcli.HumanFormatter{Quiet: true}).FormatUpload(&buf, []clientcli.UploadResult{
			{LocalPath: "missing.txt", Err: errors.New("open file: no such file")},
		})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Error: missing.txt - open file: no such file")
	})
}

func TestHumanFormatter_FormatDownload(t *testing.T) {
	tests := []struct {
		name   string
		result clientcli.DownloadResult
		quiet  bool
		want   string
	}{
		{
			name:   "to file",
			result: clientcli.DownloadResult{Name: "a.txt", LocalPath: "out/a.txt", Size: 2048},
			want:   "Downloaded: a.txt -> out/a.txt (2.0 KiB)\n",
		},
		{
			name:   "to stdout",
			result: clientcli.DownloadResult{Name: "a.txt", LocalPath: "-", Size: -1},
			want:   "Downloaded: a.txt (unknown size)\n",
		},
		{
			name:   "quiet",
			result: clientcli.DownloadResult{Name: "a.txt", LocalPath: "a.txt", Size: 1},
			quiet:  true,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, (&clientcli.HumanFormatter{Quiet: tt.quiet}).FormatDownload(&buf, &tt.result))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestHumanFormatter_Profiles(t *testing.T) {
	profiles := []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:3000"},
		{Name: "prod", Endpoint: "https://relay.example.com"},
	}

	t.Run("list marks default", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, profiles, "prod"))
		assert.Contains(t, buf.String(), "* prod ")
		assert.Contains(t, buf.String(), "  local")
	})

	t.Run("empty list", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, nil, ""))
		assert.Equal(t, "No profiles configured\n", buf.String())
	})

	t.Run("show", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileShow(&buf, profiles[0], true))
		assert.Equal(t, "Name:     local (default)\nEndpoint: http://localhost:3000\n", buf.String())
	})
}

func TestJSONFormatter_FormatUpload(t *testing.T) {
	var buf bytes.Buffer
	err := (&clientcli.JSONFormatter{}).FormatUpload(&buf, []clientcli.UploadResult{
		sampleUpload(),
		{LocalPath: "bad.txt", Err: errors.New("boom")},
	})
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)

	assert.Equal(t, "report.pdf", out[0]["name"])
	assert.Equal(t, float64(300), out[0]["ttl"])
	assert.NotContains(t, out[0], "error")

	assert.Equal(t, "bad.txt", out[1]["local_path"])
	assert.Equal(t, "boom", out[1]["error"])
	assert.NotContains(t, out[1], "view")
}

func TestJSONFormatter_FormatError(t *testing.T) {
	t.Run("api error carries code", func(t *testing.T) {
		var buf bytes.Buffer
		apiErr := &clientcli.APIError{StatusCode: 403, Code: "link_expired", Message: "Link has expired"}
		require.NoError(t, (&clientcli.JSONFormatter{}).FormatError(&buf, fmt.Errorf("download: %w", apiErr)))

		var out map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		assert.Equal(t, "link_expired", out["code"])
		assert.Contains(t, out["error"], "403")
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.JSONFormatter{}).FormatError(&buf, errors.New("boom")))
		assert.JSONEq(t, `{"error":"boom"}`, buf.String())
	})
}

func TestJSONFormatter_Profiles(t *testing.T) {
	var buf bytes.Buffer
	err := (&clientcli.JSONFormatter{}).FormatProfileList(&buf, []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:3000"},
	}, "local")
	require.NoError(t, err)
	assert.JSONEq(t, `{"profiles":[{"name":"local","endpoint":"http://localhost:3000","default":true}]}`, buf.String())
}
