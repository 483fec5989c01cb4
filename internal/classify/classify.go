// Package classify implements platform detection, video-post recognition,
// canonical URL normalization, and handle extraction for candidate video
// URLs. Everything here is pure string work with no I/O, so the crawler,
// seed builder, and scoring engine can all share it freely.
package classify

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Platform identifies the video host a URL belongs to.
type Platform string

// Known platforms. Hosted means a direct media file on an arbitrary host.
const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformFacebook  Platform = "facebook"
	PlatformVimeo     Platform = "vimeo"
	PlatformHosted    Platform = "hosted"
	PlatformUnknown   Platform = "unknown"
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".webm": {},
	".m3u8": {},
	".mov":  {},
	".ogv":  {},
}

var (
	tiktokVideoRe  = regexp.MustCompile(`/video/\d+`)
	vimeoVideoRe   = regexp.MustCompile(`^/\d+$`)
	youtubeIDRe    = regexp.MustCompile(`^[\w-]{6,}$`)
	instagramPosts = map[string]struct{}{"reel": {}, "tv": {}}
)

// normalizeHost lowercases the host and strips the www./m. prefixes that
// social platforms use interchangeably.
func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	return host
}

// PlatformFromHost maps a hostname to a known platform by substring match.
// Unrecognized hosts come back as PlatformUnknown; hosted detection needs
// the path and lives in PlatformFromURL.
func PlatformFromHost(host string) Platform {
	h := normalizeHost(host)
	switch {
	case strings.Contains(h, "youtube") || strings.Contains(h, "youtu.be"):
		return PlatformYouTube
	case strings.Contains(h, "instagram"):
		return PlatformInstagram
	case strings.Contains(h, "tiktok"):
		return PlatformTikTok
	case strings.Contains(h, "facebook") || strings.Contains(h, "fb.watch"):
		return PlatformFacebook
	case strings.Contains(h, "vimeo"):
		return PlatformVimeo
	default:
		return PlatformUnknown
	}
}

// PlatformFromURL resolves a full URL to a platform, returning
// PlatformHosted for direct media files on arbitrary hosts.
func PlatformFromURL(raw string) Platform {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return PlatformUnknown
	}
	if p := PlatformFromHost(u.Host); p != PlatformUnknown {
		return p
	}
	if hasVideoExtension(u.Path) {
		return PlatformHosted
	}
	return PlatformUnknown
}

func hasVideoExtension(p string) bool {
	_, ok := videoExtensions[strings.ToLower(path.Ext(p))]
	return ok
}

// IsVideoLike reports whether a URL plausibly points at video content:
// any recognized social platform, or a direct media file extension.
func IsVideoLike(raw string) bool {
	switch PlatformFromURL(raw) {
	case PlatformUnknown:
		return false
	default:
		return true
	}
}

// IsSpecificVideo reports whether the URL addresses one concrete video or
// post, as opposed to a profile or generic listing page.
func IsSpecificVideo(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	p := strings.TrimSuffix(u.Path, "/")
	switch PlatformFromHost(u.Host) {
	case PlatformYouTube:
		if normalizeHost(u.Host) == "youtu.be" {
			return youtubeIDRe.MatchString(strings.TrimPrefix(p, "/"))
		}
		if p == "/watch" {
			return u.Query().Get("v") != ""
		}
		if id, ok := pathSegmentAfter(p, "shorts"); ok {
			return youtubeIDRe.MatchString(id)
		}
		if id, ok := pathSegmentAfter(p, "embed"); ok {
			return youtubeIDRe.MatchString(id)
		}
		return false
	case PlatformInstagram:
		segs := splitPath(p)
		if len(segs) >= 2 {
			if _, ok := instagramPosts[segs[0]]; ok {
				return true
			}
		}
		return false
	case PlatformTikTok:
		return tiktokVideoRe.MatchString(p)
	case PlatformFacebook:
		if p == "/watch" {
			return u.Query().Get("v") != ""
		}
		if _, ok := pathSegmentAfter(p, "videos"); ok {
			return true
		}
		if _, ok := pathSegmentAfter(p, "reel"); ok {
			return true
		}
		return false
	case PlatformVimeo:
		return vimeoVideoRe.MatchString(p)
	default:
		return hasVideoExtension(p)
	}
}

// IsWeakSocialVideo flags shapes that resemble a video post but carry no
// disambiguating identifier, e.g. facebook.com/watch with no v= parameter.
// These pages render feeds or listings and must never become candidates.
func IsWeakSocialVideo(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	p := strings.TrimSuffix(u.Path, "/")
	switch PlatformFromHost(u.Host) {
	case PlatformYouTube:
		return p == "/watch" && u.Query().Get("v") == ""
	case PlatformFacebook:
		if p == "/watch" && u.Query().Get("v") == "" {
			return true
		}
		last := lastSegment(p)
		return last == "videos" || last == "reel"
	case PlatformTikTok:
		return lastSegment(p) == "video"
	case PlatformInstagram:
		last := lastSegment(p)
		_, ok := instagramPosts[last]
		return ok
	default:
		return false
	}
}

// ShouldReject is the final gate applied to every candidate URL before it
// can be scored: the URL must name one specific video and must not be one
// of the weak ambiguous shapes.
func ShouldReject(raw string) bool {
	return !IsSpecificVideo(raw) || IsWeakSocialVideo(raw)
}

// Normalize produces the canonical form of a video URL. The result is
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Fragment = ""
	host := normalizeHost(u.Host)
	p := strings.TrimSuffix(u.Path, "/")

	switch PlatformFromHost(u.Host) {
	case PlatformYouTube:
		if host == "youtu.be" {
			if id := strings.TrimPrefix(p, "/"); id != "" {
				return "https://youtube.com/watch?v=" + id
			}
		}
		if p == "/watch" {
			if id := u.Query().Get("v"); id != "" {
				return "https://youtube.com/watch?v=" + id
			}
		}
		if id, ok := pathSegmentAfter(p, "shorts"); ok {
			return "https://youtube.com/shorts/" + id
		}
		if id, ok := pathSegmentAfter(p, "embed"); ok {
			return "https://youtube.com/watch?v=" + id
		}
		return "https://youtube.com" + p
	case PlatformFacebook:
		if p == "/watch" {
			if id := u.Query().Get("v"); id != "" {
				return u.Scheme + "://" + strings.ToLower(u.Host) + "/watch?v=" + id
			}
		}
		return u.Scheme + "://" + strings.ToLower(u.Host) + p
	default:
		return u.Scheme + "://" + strings.ToLower(u.Host) + p
	}
}

// ExtractHandle pulls an account handle out of a profile or post URL.
// Best effort: returns "" when the path shape carries no handle.
func ExtractHandle(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	segs := splitPath(u.Path)
	if len(segs) == 0 {
		return ""
	}
	switch PlatformFromHost(u.Host) {
	case PlatformInstagram:
		first := segs[0]
		switch first {
		case "p", "reel", "reels", "tv", "explore", "stories", "accounts":
			return ""
		}
		return strings.ToLower(first)
	case PlatformTikTok:
		for _, s := range segs {
			if strings.HasPrefix(s, "@") {
				return strings.ToLower(strings.TrimPrefix(s, "@"))
			}
		}
		return ""
	case PlatformYouTube:
		first := segs[0]
		if strings.HasPrefix(first, "@") {
			return strings.ToLower(strings.TrimPrefix(first, "@"))
		}
		switch first {
		case "channel", "c", "user":
			if len(segs) >= 2 {
				return strings.ToLower(segs[1])
			}
		}
		return ""
	case PlatformFacebook:
		first := segs[0]
		switch first {
		case "watch", "videos", "reel", "share", "groups", "events", "profile.php":
			return ""
		case "pages", "people":
			if len(segs) >= 2 {
				return strings.ToLower(segs[1])
			}
			return ""
		}
		return strings.ToLower(first)
	default:
		return ""
	}
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lastSegment(p string) string {
	segs := splitPath(p)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// pathSegmentAfter returns the segment following marker, e.g.
// ("/shorts/abc", "shorts") -> ("abc", true).
func pathSegmentAfter(p, marker string) (string, bool) {
	segs := splitPath(p)
	for i, s := range segs {
		if s == marker && i+1 < len(segs) {
			return segs[i+1], true
		}
	}
	return "", false
}
