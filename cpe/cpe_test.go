package cpe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nixpkgs-monitor/updatetool/cpe"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   cpe.Product
		wantOK bool
	}{
		{
			name:   "empty version",
			input:  "cpe:/o:microsoft:windows_xp:",
			want:   cpe.Product{Supplier: "microsoft", Product: "windows_xp", Version: ""},
			wantOK: true,
		},
		{
			name:   "application with version",
			input:  "cpe:/a:apache:httpd:2.4.1",
			want:   cpe.Product{Supplier: "apache", Product: "httpd", Version: "2.4.1"},
			wantOK: true,
		},
		{
			name:   "trailing update field is ignored",
			input:  "cpe:/a:mozilla:firefox:3.6.1:beta",
			want:   cpe.Product{Supplier: "mozilla", Product: "firefox", Version: "3.6.1"},
			wantOK: true,
		},
		{
			name:   "no normalization",
			input:  "cpe:/a:BouncyCastle:legion-of-the-bouncy-castle-c%23-crytography-api:1.7",
			want:   cpe.Product{Supplier: "BouncyCastle", Product: "legion-of-the-bouncy-castle-c%23-crytography-api", Version: "1.7"},
			wantOK: true,
		},
		{
			name:  "not a cpe",
			input: "not-a-cpe",
		},
		{
			name:  "missing version separator",
			input: "cpe:/a:apache:httpd",
		},
		{
			name:  "formatted string binding",
			input: "cpe:2.3:a:apache:httpd:2.4.1:*:*:*:*:*:*:*",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cpe.Parse(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProduct_String(t *testing.T) {
	assert.Equal(t, "httpd:2.4.1", cpe.Product{Supplier: "apache", Product: "httpd", Version: "2.4.1"}.String())
	assert.Equal(t, "windows_xp:", cpe.Product{Product: "windows_xp"}.String())
}

func TestFromFormatted(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "versioned",
			input:  "cpe:2.3:a:apache:httpd:2.4.1:*:*:*:*:*:*:*",
			want:   "cpe:/a:apache:httpd:2.4.1",
			wantOK: true,
		},
		{
			name:   "any version",
			input:  "cpe:2.3:o:redhat:enterprise_linux:*:*:*:*:*:*:*:*",
			want:   "cpe:/o:redhat:enterprise_linux:",
			wantOK: true,
		},
		{
			name:   "short form",
			input:  "cpe:2.3:a:openssl:openssl:1.0.1",
			want:   "cpe:/a:openssl:openssl:1.0.1",
			wantOK: true,
		},
		{
			name:  "uri binding is not converted",
			input: "cpe:/a:apache:httpd:2.4.1",
		},
		{
			name:  "too few fields",
			input: "cpe:2.3:a:apache",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cpe.FromFormatted(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				_, parsed := cpe.Parse(got)
				assert.True(t, parsed)
			}
		})
	}
}
