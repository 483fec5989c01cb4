package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformFromHost(t *testing.T) {
	tests := []struct {
		host string
		want Platform
	}{
		{"www.youtube.com", PlatformYouTube},
		{"youtu.be", PlatformYouTube},
		{"m.youtube.com", PlatformYouTube},
		{"instagram.com", PlatformInstagram},
		{"www.tiktok.com", PlatformTikTok},
		{"m.facebook.com", PlatformFacebook},
		{"fb.watch", PlatformFacebook},
		{"vimeo.com", PlatformVimeo},
		{"example.com", PlatformUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, PlatformFromHost(tt.host))
		})
	}
}

func TestPlatformFromURL_Hosted(t *testing.T) {
	assert.Equal(t, PlatformHosted, PlatformFromURL("https://cdn.example.com/clips/tour.mp4"))
	assert.Equal(t, PlatformUnknown, PlatformFromURL("https://example.com/about"))
}

func TestIsVideoLike(t *testing.T) {
	assert.True(t, IsVideoLike("https://youtube.com/watch?v=abc123"))
	assert.True(t, IsVideoLike("https://instagram.com/someplace"))
	assert.True(t, IsVideoLike("https://example.com/promo.webm"))
	assert.False(t, IsVideoLike("https://example.com/menu.pdf"))
}

func TestIsSpecificVideo(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=abc123", true},
		{"youtube shorts", "https://youtube.com/shorts/xYz_123456", true},
		{"youtube embed", "https://www.youtube.com/embed/abc123def", true},
		{"youtu.be", "https://youtu.be/abc123?t=5", true},
		{"youtube channel", "https://youtube.com/@someplace", false},
		{"youtube watch no id", "https://youtube.com/watch", false},
		{"instagram reel", "https://www.instagram.com/reel/Cxyz123/", true},
		{"instagram tv", "https://instagram.com/tv/Cxyz123", true},
		{"instagram profile", "https://instagram.com/someplace", false},
		{"tiktok video", "https://www.tiktok.com/@someplace/video/7123456789", true},
		{"tiktok profile", "https://tiktok.com/@someplace", false},
		{"facebook videos", "https://facebook.com/someplace/videos/123456", true},
		{"facebook reel", "https://www.facebook.com/reel/123456", true},
		{"facebook watch with id", "https://facebook.com/watch?v=123456", true},
		{"facebook watch bare", "https://facebook.com/watch", false},
		{"vimeo video", "https://vimeo.com/123456789", true},
		{"vimeo profile", "https://vimeo.com/someplace", false},
		{"hosted mp4", "https://cdn.example.com/tour.mp4", true},
		{"plain page", "https://example.com/contact", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSpecificVideo(tt.url), tt.url)
		})
	}
}

func TestIsWeakSocialVideo(t *testing.T) {
	weak := []string{
		"https://facebook.com/watch",
		"https://www.facebook.com/watch/",
		"https://facebook.com/someplace/videos",
		"https://facebook.com/reel",
		"https://tiktok.com/@someplace/video",
		"https://instagram.com/reel",
		"https://youtube.com/watch",
	}
	for _, u := range weak {
		assert.True(t, IsWeakSocialVideo(u), u)
	}

	strong := []string{
		"https://facebook.com/watch?v=123456",
		"https://facebook.com/someplace/videos/123",
		"https://instagram.com/reel/Cxyz123",
		"https://youtube.com/watch?v=abc123",
	}
	for _, u := range strong {
		assert.False(t, IsWeakSocialVideo(u), u)
	}
}

// Every weak URL must be rejected by the final gate, even when the
// specific-video test alone would let a shape through.
func TestWeakImpliesReject(t *testing.T) {
	weak := []string{
		"https://facebook.com/watch",
		"https://facebook.com/someplace/videos",
		"https://instagram.com/reel",
		"https://tiktok.com/@someplace/video",
	}
	for _, u := range weak {
		require.True(t, IsWeakSocialVideo(u), u)
		assert.True(t, ShouldReject(u), u)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"youtu.be collapses", "https://youtu.be/abc123?t=5", "https://youtube.com/watch?v=abc123"},
		{"watch strips extras", "https://www.youtube.com/watch?v=abc123&list=PL9", "https://youtube.com/watch?v=abc123"},
		{"shorts", "https://www.youtube.com/shorts/xYz123/?feature=share", "https://youtube.com/shorts/xYz123"},
		{"embed collapses to watch", "https://youtube.com/embed/abc123", "https://youtube.com/watch?v=abc123"},
		{"facebook watch keeps id", "https://facebook.com/watch?v=123&ref=share", "https://facebook.com/watch?v=123"},
		{"facebook path stripped", "https://www.facebook.com/place/videos/123?mibextid=x", "https://www.facebook.com/place/videos/123"},
		{"instagram trailing slash", "https://www.Instagram.com/reel/Cxyz123/?igsh=a", "https://www.instagram.com/reel/Cxyz123"},
		{"tiktok fragment", "https://www.tiktok.com/@place/video/71234#top", "https://www.tiktok.com/@place/video/71234"},
		{"hosted", "http://CDN.Example.com/clips/tour.mp4?x=1", "http://cdn.example.com/clips/tour.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	urls := []string{
		"https://youtu.be/abc123",
		"https://www.youtube.com/watch?v=abc123",
		"https://youtube.com/@someplace",
		"https://m.facebook.com/watch?v=42",
		"https://instagram.com/someplace/",
		"https://vimeo.com/123456",
		"not a url at all",
	}
	for _, u := range urls {
		once := Normalize(u)
		assert.Equal(t, once, Normalize(once), u)
	}
}

func TestExtractHandle(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"instagram profile", "https://instagram.com/SomePlace", "someplace"},
		{"instagram reserved", "https://instagram.com/reel/Cxyz123", ""},
		{"tiktok", "https://www.tiktok.com/@SomePlace/video/123", "someplace"},
		{"youtube at-handle", "https://youtube.com/@SomePlace", "someplace"},
		{"youtube channel", "https://youtube.com/channel/UCabc123", "ucabc123"},
		{"youtube user", "https://www.youtube.com/user/someplace", "someplace"},
		{"facebook page", "https://facebook.com/SomePlace", "someplace"},
		{"facebook pages path", "https://facebook.com/pages/SomePlace", "someplace"},
		{"facebook reserved", "https://facebook.com/watch?v=1", ""},
		{"unknown host", "https://example.com/someplace", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHandle(tt.url))
		})
	}
}
