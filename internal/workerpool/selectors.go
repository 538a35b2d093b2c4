package workerpool

import "jobpipe/pkg/utils"

// descriptionSelectors lists candidate CSS selectors tried in order for a
// listing's description body, per platform. The first selector that
// matches an element wins.
var descriptionSelectors = map[utils.Platform][]string{
	utils.PlatformLinkedIn: {
		".show-more-less-html__markup",
		".description__text",
		"#job-details",
	},
	utils.PlatformNaukri: {
		".job-desc",
		".dang-inner-html",
		".styles_JDC__dang-inner-html__h0K4t",
	},
}

var companySelectors = map[utils.Platform][]string{
	utils.PlatformLinkedIn: {
		".topcard__org-name-link",
		".job-details-jobs-unified-top-card__company-name",
	},
	utils.PlatformNaukri: {
		".styles_jd-header-comp-name__MvqAI",
		".jd-header-comp-name",
	},
}

func firstMatch(page pageHandle, selectors []string) (string, bool) {
	for _, sel := range selectors {
		if text, ok := page.QueryText(sel); ok {
			return text, true
		}
	}
	return "", false
}
