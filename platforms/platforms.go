// Package platforms identifies review and social platforms in URLs.
package platforms

import "strings"

// Platform describes one review or social site we treat as a signal source.
type Platform struct {
	// Name is the display name attached to matched records, e.g. "Yelp".
	Name string

	// Domains are lowercase substrings that identify the platform in a URL.
	Domains []string

	// ProfilePaths are lowercase URL fragments that mark a user profile
	// rather than a business page or search result.
	ProfilePaths []string
}

// Registry is the fixed list of platforms worth scanning, in priority order.
// Matching is first-wins, so more specific domains come before generic ones.
var Registry = []Platform{
	{Name: "Yelp", Domains: []string{"yelp.com"}, ProfilePaths: []string{"yelp.com/user_details"}},
	{Name: "TripAdvisor", Domains: []string{"tripadvisor.com"}, ProfilePaths: []string{"/profile/", "/members/"}},
	{Name: "Google", Domains: []string{"google.com/maps", "google.com"}},
	{Name: "Reddit", Domains: []string{"reddit.com"}, ProfilePaths: []string{"reddit.com/user/", "reddit.com/u/"}},
	{Name: "Facebook", Domains: []string{"facebook.com"}, ProfilePaths: []string{"facebook.com/"}},
	{Name: "Instagram", Domains: []string{"instagram.com"}, ProfilePaths: []string{"instagram.com/"}},
	{Name: "LinkedIn", Domains: []string{"linkedin.com"}, ProfilePaths: []string{"linkedin.com/in/"}},
	{Name: "Twitter", Domains: []string{"twitter.com", "x.com/"}},
	{Name: "OpenTable", Domains: []string{"opentable.com"}},
	{Name: "Trustpilot", Domains: []string{"trustpilot.com"}, ProfilePaths: []string{"/users/"}},
	{Name: "Foursquare", Domains: []string{"foursquare.com"}, ProfilePaths: []string{"/user/"}},
	{Name: "Zomato", Domains: []string{"zomato.com"}},
	{Name: "Grubhub", Domains: []string{"grubhub.com"}},
	{Name: "Seamless", Domains: []string{"seamless.com"}},
	{Name: "DoorDash", Domains: []string{"doordash.com"}},
}

// Generic profile markers that apply on any target platform.
var genericProfilePaths = []string{"/user/", "/profile/", "/users/", "/member/"}

// Match returns the platform a URL belongs to, or nil when the URL is not
// on any target platform.
func Match(urlStr string) *Platform {
	lower := strings.ToLower(urlStr)
	for i := range Registry {
		for _, d := range Registry[i].Domains {
			if strings.Contains(lower, d) {
				return &Registry[i]
			}
		}
	}
	return nil
}

// IsTarget reports whether a URL is on a platform worth scanning at all.
func IsTarget(urlStr string) bool {
	return Match(urlStr) != nil
}

// IsProfileLink reports whether a URL looks like a user profile page rather
// than a venue listing or search result. Only profile links are attached to
// identity records as platform presence.
func IsProfileLink(urlStr string) bool {
	lower := strings.ToLower(urlStr)
	for _, p := range genericProfilePaths {
		if strings.Contains(lower, p) {
			return true
		}
	}
	for i := range Registry {
		for _, p := range Registry[i].ProfilePaths {
			if strings.Contains(lower, p) {
				return true
			}
		}
	}
	return false
}

// NameFor returns the display name for a URL's platform, or "Unknown".
func NameFor(urlStr string) string {
	if p := Match(urlStr); p != nil {
		return p.Name
	}
	return "Unknown"
}
