package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board.
type Platform string

const (
	// PlatformGreenhouse is the Greenhouse ATS
	PlatformGreenhouse Platform = "greenhouse"
	// PlatformLever is the Lever ATS
	PlatformLever Platform = "lever"
	// PlatformWorkday is the Workday ATS
	PlatformWorkday Platform = "workday"
	// PlatformAshby is the Ashby ATS
	PlatformAshby Platform = "ashby"
	// PlatformUnknown is any other site
	PlatformUnknown Platform = "unknown"
)

// formNoise covers application forms, EEO notices and share widgets present on most boards
var formNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	"[data-testid='application-form']",
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	".self-identification",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

// platformProfile is how a job board is recognized and where its description lives
type platformProfile struct {
	platform Platform
	hosts    []string
	content  []string
	noise    []string
}

var platformProfiles = []platformProfile{
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
		content:  []string{"[data-automation-id='jobDescription']", ".gwt-HTML", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	{
		platform: PlatformAshby,
		hosts:    []string{"ashbyhq.com"},
		content:  []string{"[class*='descriptionText']", "main"},
		noise:    []string{"[class*='applicationForm']"},
	},
}

// DetectPlatform identifies the job board from a URL host.
func DetectPlatform(urlStr string) Platform {
	if p := profileFor(urlStr); p != nil {
		return p.platform
	}
	return PlatformUnknown
}

// ContentSelectors returns where the job description is likely found for a URL.
func ContentSelectors(urlStr string) []string {
	if p := profileFor(urlStr); p != nil {
		return p.content
	}
	return JobPostingSelectors()
}

// NoiseSelectors returns the elements to strip for a URL before extraction.
func NoiseSelectors(urlStr string) []string {
	noise := append([]string{}, formNoise...)
	if p := profileFor(urlStr); p != nil {
		noise = append(noise, p.noise...)
	}
	return noise
}

func profileFor(urlStr string) *platformProfile {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil
	}
	host := strings.ToLower(parsed.Hostname())
	for i := range platformProfiles {
		for _, h := range platformProfiles[i].hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return &platformProfiles[i]
			}
		}
	}
	return nil
}
