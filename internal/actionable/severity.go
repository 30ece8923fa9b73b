package actionable

import "case-insights-go/internal/config"

const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// Severity grades an issue by its share of total volume.
func Severity(pct float64, th config.SeverityThresholds) string {
	switch {
	case pct > th.Critical:
		return SeverityCritical
	case pct > th.High:
		return SeverityHigh
	case pct > th.Medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// partnerSeverity grades an issue by its share of the partner slice.
func partnerSeverity(pct float64) string {
	switch {
	case pct > 30:
		return SeverityCritical
	case pct > 15:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// Playbook is the standard diagnosis and fix for a family of issues.
type Playbook struct {
	RootCause         string   `json:"root_cause"`
	Factors           []string `json:"factors"`
	Fix               string   `json:"fix"`
	ExpectedReduction string   `json:"expected_reduction"`
}

// PlaybookFor matches an issue name against the known issue families. The
// first matching family wins.
func PlaybookFor(issue string) Playbook {
	switch {
	case containsAny(issue, "password", "login", "email"):
		return Playbook{
			RootCause: "Authentication Barrier",
			Factors: []string{
				"Email deliverability issues with major providers",
				"SSO token expiration too short (15 min)",
				"Password reset link blocked by spam filters",
				"No SMS fallback option available",
			},
			Fix:               "Implement SMS-based 2FA with 24hr token validity",
			ExpectedReduction: "70-80%",
		}
	case containsAny(issue, "cancel", "unsubscribe"):
		return Playbook{
			RootCause: "UX Friction",
			Factors: []string{
				"Cancel button hidden in account settings",
				"Multiple confirmation screens required",
				"Lack of pause subscription option",
				"No clear retention offer presented",
			},
			Fix:               "Redesign cancellation flow with 1-click save options",
			ExpectedReduction: "40-50%",
		}
	case containsAny(issue, "bill", "charge", "refund"):
		return Playbook{
			RootCause: "Payment Gateway Issue",
			Factors: []string{
				"Billing cycle timing confusion",
				"No proactive charge notifications",
				"Trial end date unclear to users",
				"Refund policy not visible in app",
			},
			Fix:               "Send billing reminders 48hrs before charge",
			ExpectedReduction: "50-60%",
		}
	case containsAny(issue, "sky", "partner", "provider"):
		return Playbook{
			RootCause: "Partner Integration Failure",
			Factors: []string{
				"API handshake errors between systems",
				"Account linking failures",
				"Subscription status sync delays",
				"Partner portal UX limitations",
			},
			Fix:               "Escalate to Partner Engineering for API audit",
			ExpectedReduction: "60-70%",
		}
	default:
		return Playbook{
			RootCause: "Self-Service Gap",
			Factors: []string{
				"FAQ does not cover this issue",
				"Chatbot unable to resolve",
				"Help articles outdated",
				"No video tutorials available",
			},
			Fix:               "Expand self-service content for this issue category",
			ExpectedReduction: "30-40%",
		}
	}
}

// partnerRootCause is the one-line diagnosis used for partner slice issues.
func partnerRootCause(issue string) string {
	switch {
	case containsAny(issue, "password", "email", "login"):
		return "Authentication Barrier: Email deliverability failure or SSO token expiration"
	case containsAny(issue, "sky", "provider"):
		return "Partner Integration: API handshake error between Sky and Paramount+ systems"
	case containsAny(issue, "cancel"):
		return "UX Friction: Cancellation flow hidden or requires partner portal navigation"
	case containsAny(issue, "bill", "refund", "charge"):
		return "Payment Gateway: Billing cycle timing mismatch between partner and platform"
	case containsAny(issue, "stream", "play", "buffer"):
		return "Technical: Content delivery or streaming quality issues"
	default:
		return "Process Friction: Self-service gap requiring manual intervention"
	}
}

// marketRecommendation picks the action for one market from its dominant
// issue and its partner share.
func marketRecommendation(issue string, partnerPct float64, country string) string {
	switch {
	case containsAny(issue, "password", "login", "email"):
		return "Deploy SMS-based password reset for " + country + ". Extend token validity to 24hrs."
	case containsAny(issue, "cancel"):
		return "Redesign cancellation UX for " + country + ". Add prominent 'Manage Subscription' button."
	case containsAny(issue, "bill", "charge", "refund"):
		return "Implement proactive billing notifications 48hrs before charge for " + country + "."
	case partnerPct > 5:
		return "Escalate Sky API integration fix to Partner Engineering for " + country + "."
	default:
		return "Create localized FAQ targeting top 3 issues for " + country + "."
	}
}
