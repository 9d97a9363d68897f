// Package contacts extracts and validates contact signals from rendered page
// content. Website HTML is dominated by asset URLs, tracking beacons, and
// placeholder addresses that superficially match an email pattern; the
// validator is a denylist-driven noise filter that favors precision over
// recall, not an RFC implementation.
package contacts

import (
	"regexp"
	"strings"
)

// invalidEmailExtensions rejects candidates that are really asset or source
// file names picked up by the email pattern.
var invalidEmailExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".bmp",
	".css", ".js", ".html", ".htm", ".pdf", ".doc", ".docx", ".xlsx",
	".zip", ".rar", ".mp4", ".mp3", ".avi", ".mov", ".woff", ".ttf",
	".json", ".xml", ".txt", ".log", ".tmp", ".cache", ".tiff", ".tif",
	".eps", ".psd", ".ai", ".sketch", ".fig", ".xd", ".indd", ".raw",
	".cr2", ".nef", ".arw", ".dng", ".orf", ".rw2", ".pef", ".sr2",
	".3gp", ".flv", ".mkv", ".wmv", ".webm", ".m4v", ".m4a", ".aac",
	".flac", ".ogg", ".wav", ".wma", ".opus", ".mid", ".midi", ".kar",
	".woff2", ".eot", ".otf", ".swf", ".fla", ".as", ".scss", ".sass",
	".less", ".styl", ".coffee", ".ts", ".jsx", ".tsx", ".vue", ".svelte",
	".php", ".asp", ".aspx", ".jsp", ".cfm", ".cgi", ".pl", ".py", ".rb",
	".go", ".rs", ".kt", ".swift", ".dart", ".scala", ".clj", ".hs",
	".elm", ".purs", ".ml", ".fs", ".vb", ".cs", ".java", ".c", ".cpp",
	".h", ".hpp", ".cc", ".cxx", ".m", ".mm", ".s", ".asm", ".sql",
	".db", ".sqlite", ".mdb", ".accdb", ".dbf", ".backup", ".bak",
	".old", ".orig", ".save", ".temp", ".lock", ".pid", ".sock",
	".err", ".out", ".trace", ".dump", ".core", ".crash", ".dmp",
}

// technicalDomains lists tracking, analytics, CDN, and bulk-mail providers.
// Addresses on these domains (or their subdomains) are infrastructure noise,
// never a business contact.
var technicalDomains = []string{
	"sentry.io", "ingest.sentry.io", "sentry.wixpress.com", "sentry.com",
	"googletagmanager.com", "google-analytics.com", "facebook.com",
	"doubleclick.net", "googlesyndication.com", "googleadservices.com",
	"cloudflare.com", "amazonaws.com", "googleapis.com", "gstatic.com",
	"jsdelivr.net", "unpkg.com", "cdnjs.cloudflare.com",
	"tracking.com", "analytics.com", "metrics.com", "cdn.com",
	"static.com", "assets.com", "media.com", "img.com", "images.com",
	"fonts.com", "typekit.com", "adobe.com", "gravatar.com",
	"disqus.com", "addthis.com", "sharethis.com", "feedburner.com",
	"feedproxy.google.com", "mailchimp.com", "constantcontact.com",
	"aweber.com", "getresponse.com", "campaignmonitor.com",
	"verticalresponse.com", "icontact.com", "madmimi.com",
	"benchmark.email", "sendinblue.com", "mailgun.com", "sendgrid.com",
	"mandrill.com", "postmark.com", "sparkpost.com", "ses.amazonaws.com",
}

// technicalIDPatterns match auto-generated local parts: hex digests and long
// opaque identifiers used by error trackers and ESPs.
var technicalIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-f0-9]{32}@`),
	regexp.MustCompile(`^[a-f0-9]{40}@`),
	regexp.MustCompile(`^[a-f0-9]{64}@`),
	regexp.MustCompile(`^[a-z0-9]{20,}@`),
}

// noiseSubstrings reject addresses assembled from asset names, tracker
// endpoints, or do-not-reply mailboxes anywhere in the candidate.
var noiseSubstrings = []string{
	"ajax-loader", "spinner", "loading", "loader",
	"kit_mobile", "mobile_kit", "responsive",
	"@2x", "@3x", "retina", "thumbnail", "logo",
	"ingest", "tracking", "analytics", "metrics",
	"sentry", "error", "crash", "debug",
	"api_key", "access_token", "session_id",
	"image", "img", "picture", "photo", "icon",
	"asset", "resource", "static", "public",
	"placeholder", "dummy", "noreply", "donotreply",
}

// infraSubdomains reject 3+-label domains whose first label is a well-known
// infrastructure prefix.
var infraSubdomains = map[string]struct{}{
	"o408587": {}, "api": {}, "cdn": {}, "static": {},
	"assets": {}, "media": {}, "img": {}, "images": {},
}

// placeholderDomains are literal example/test domains seen in templates.
var placeholderDomains = map[string]struct{}{
	"example.com": {}, "test.com": {}, "sample.com": {}, "dummy.com": {},
	"fake.com": {}, "invalid.com": {}, "placeholder.com": {},
}

var hexLocal = regexp.MustCompile(`^[a-f0-9]+$`)

// IsValidEmail classifies a candidate as a genuine contact address (true) or
// extraction noise (false). Comparison is case-insensitive.
func IsValidEmail(candidate string) bool {
	email := strings.ToLower(strings.TrimSpace(candidate))
	if len(email) < 5 || len(email) > 100 {
		return false
	}
	for _, ext := range invalidEmailExtensions {
		if strings.HasSuffix(email, ext) {
			return false
		}
	}
	if strings.Count(email, "@") != 1 {
		return false
	}
	at := strings.Index(email, "@")
	local, domain := email[:at], email[at+1:]

	for _, tech := range technicalDomains {
		if domain == tech || strings.HasSuffix(domain, "."+tech) {
			return false
		}
	}
	for _, pattern := range technicalIDPatterns {
		if pattern.MatchString(email) {
			return false
		}
	}
	if len(local) < 1 || len(local) > 64 {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	if len(local) > 20 && hexLocal.MatchString(local) {
		return false
	}
	if len(domain) < 3 || len(domain) > 253 {
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") ||
		strings.HasPrefix(domain, "-") || strings.HasSuffix(domain, "-") {
		return false
	}
	labels := strings.Split(domain, ".")
	if len(labels[len(labels)-1]) < 2 {
		return false
	}
	for _, noise := range noiseSubstrings {
		if strings.Contains(email, noise) {
			return false
		}
	}
	if len(labels) > 2 {
		if _, infra := infraSubdomains[labels[0]]; infra {
			return false
		}
	}
	if _, placeholder := placeholderDomains[domain]; placeholder {
		return false
	}
	return true
}
