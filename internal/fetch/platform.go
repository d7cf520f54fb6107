package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

// Known platforms.
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformUnknown    Platform = "unknown"
)

type platformRule struct {
	platform Platform
	hosts    []string
	content  []string
	noise    []string
}

var platformRules = []platformRule{
	{
		platform: PlatformGreenhouse,
		hosts:    []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	{
		platform: PlatformLever,
		hosts:    []string{"lever.co"},
		content:  []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:    []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		hosts:    []string{"workday.com", "myworkdayjobs.com"},
		content:  []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	{
		platform: PlatformAshby,
		hosts:    []string{"ashbyhq.com"},
		content:  []string{"[class*='_descriptionText']", "._description", "main"},
		noise:    []string{"[class*='_applicationForm']"},
	},
}

// genericContent are content selectors for unrecognized job boards.
var genericContent = []string{
	".job-description",
	"#job-description",
	".job-content",
	".job-details",
	".posting-content",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// genericNoise is removed on every platform: application forms, EEO text and share widgets.
var genericNoise = []string{
	"form",
	".application-form",
	".apply-button-container",
	".eeo-statement",
	".voluntary-disclosure",
	".legal-disclosure",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(rawURL string) Platform {
	if rule := ruleFor(rawURL); rule != nil {
		return rule.platform
	}
	return PlatformUnknown
}

// ContentSelectors returns content selectors for a posting URL, most specific first.
func ContentSelectors(rawURL string) []string {
	if rule := ruleFor(rawURL); rule != nil {
		return append(append([]string{}, rule.content...), genericContent...)
	}
	return append([]string{}, genericContent...)
}

// NoiseSelectors returns the elements to strip from a posting page.
func NoiseSelectors(rawURL string) []string {
	if rule := ruleFor(rawURL); rule != nil {
		return append(append([]string{}, genericNoise...), rule.noise...)
	}
	return append([]string{}, genericNoise...)
}

func ruleFor(rawURL string) *platformRule {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	host := strings.ToLower(parsed.Hostname())
	for i := range platformRules {
		for _, h := range platformRules[i].hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return &platformRules[i]
			}
		}
	}
	return nil
}
