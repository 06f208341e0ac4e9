package domains

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidPackageName(t *testing.T) {
	t.Parallel()

	valid := []string{"com.whatsapp", "org.example.app", "a.b", "com.example_app.Main2"}
	invalid := []string{"", "whatsapp", "com.", ".com", "1com.app", "com.1app", "com..app", "com.app-x", "com.app/x"}

	for _, name := range valid {
		assert.True(t, ValidPackageName(name), name)
	}
	for _, name := range invalid {
		assert.False(t, ValidPackageName(name), name)
	}
}

func TestPackageNameFromPlayURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{url: "https://play.google.com/store/apps/details?id=com.whatsapp", want: "com.whatsapp", wantOK: true},
		{url: "https://play.google.com/store/apps/details?id=org.example.app&hl=en", want: "org.example.app", wantOK: true},
		{url: "https://play.google.com/store/apps/details", wantOK: false},
		{url: "https://play.google.com/store/apps/details?id=notapackage", wantOK: false},
		{url: "https://example.com/store/apps/details?id=com.whatsapp", wantOK: false},
		{url: "::not a url", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := PackageNameFromPlayURL(tt.url)
		assert.Equal(t, tt.wantOK, ok, tt.url)
		assert.Equal(t, tt.want, got, tt.url)
	}
}

func TestValidDeviceID(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidDeviceID(uuid.NewString()))
	assert.True(t, ValidDeviceID("3F2504E0-4F89-41D3-9A0C-0305E82C3301"))

	assert.False(t, ValidDeviceID(""))
	assert.False(t, ValidDeviceID("not-a-uuid"))
	// version 1
	assert.False(t, ValidDeviceID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	// braces are accepted by uuid.Parse but not by clients
	assert.False(t, ValidDeviceID("{3f2504e0-4f89-41d3-9a0c-0305e82c3301}"))
	// wrong variant nibble
	assert.False(t, ValidDeviceID("3f2504e0-4f89-41d3-1a0c-0305e82c3301"))
}
