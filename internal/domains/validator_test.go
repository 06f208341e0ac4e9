package domains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var defaultAllowList = []string{
	"apkmirror.com",
	"www.apkmirror.com",
	"apkpure.com",
	"www.apkpure.com",
	"mirror.example.com",
}

func TestValidator_IsAllowed(t *testing.T) {
	t.Parallel()

	v := NewValidator(defaultAllowList)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "exact domain", url: "https://apkmirror.com/x", want: true},
		{name: "listed subdomain", url: "https://www.apkmirror.com/x", want: true},
		{name: "unlisted subdomain", url: "https://download.apkpure.com/b/APK/x", want: true},
		{name: "uppercase host", url: "https://WWW.APKMIRROR.COM/x", want: true},
		{name: "explicit port", url: "https://mirror.example.com:8443/app.apk", want: true},
		{name: "suffix without dot", url: "https://evilapkmirror.com/x", want: false},
		{name: "allowed domain as subdomain of attacker", url: "https://apkmirror.com.attacker.example/x", want: false},
		{name: "wrong scheme", url: "http://apkmirror.com/x", want: false},
		{name: "no scheme", url: "apkmirror.com/x", want: false},
		{name: "unlisted host", url: "https://attacker.example/app.apk", want: false},
		{name: "userinfo trick", url: "https://apkmirror.com@attacker.example/x", want: false},
		{name: "unparseable", url: "https://[::1", want: false},
		{name: "empty", url: "", want: false},
		{name: "no host", url: "https:///path", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, v.IsAllowed(tt.url))
		})
	}
}

func TestNewValidator_Normalizes(t *testing.T) {
	t.Parallel()

	v := NewValidator([]string{" Mirror.Example.COM. ", "", "apkpure.com"})
	assert.Equal(t, []string{"mirror.example.com", "apkpure.com"}, v.Domains())
	assert.True(t, v.IsAllowed("https://cdn.mirror.example.com/a.apk"))

	empty := NewValidator(nil)
	assert.False(t, empty.IsAllowed("https://apkmirror.com/x"))
}
