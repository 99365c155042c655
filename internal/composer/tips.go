package composer

import "github.com/kalambet/fincoach/internal/profile"

// Static text blocks keyed by segment. Every lookup has a professional
// default arm for unrecognized segments.

func greeting(s profile.Segment) string {
	switch s {
	case profile.SegmentStudent:
		return "Hey there! 👋"
	default:
		return "Good day,"
	}
}

func taxTips(s profile.Segment) string {
	switch s {
	case profile.SegmentStudent:
		return `• Claim education credits (American Opportunity Credit up to $2,500)
• Keep receipts for textbooks and school supplies
• Consider a part-time job for work-study benefits`
	default:
		return `• Maximize 401(k) contributions to reduce taxable income
• Consider HSA contributions if available
• Track business expenses if self-employed
• Review tax-loss harvesting for investments`
	}
}

func savingsTips(s profile.Segment) string {
	switch s {
	case profile.SegmentStudent:
		return `**Student-Specific Tips:**
• Start with $1,000 emergency fund
• Use cashback credit cards responsibly
• Take advantage of student discounts
• Consider part-time work or internships`
	default:
		return `**Professional Tips:**
• Automate savings transfers
• Save tax refunds and bonuses
• Consider employer 401(k) match as "free money"
• Set up separate accounts for different goals`
	}
}

func generalAdvice(s profile.Segment) string {
	switch s {
	case profile.SegmentStudent:
		return `🎓 **General Financial Tips for Students:**

• Create a simple budget with your income (jobs, financial aid)
• Build credit responsibly with a student credit card
• Take advantage of student discounts everywhere
• Start an emergency fund, even if it's just $20/month
• Learn about investing early - time is your biggest advantage
• Avoid unnecessary debt beyond student loans`
	default:
		return `💼 **General Financial Tips for Professionals:**

• Follow the 50/30/20 rule (needs/wants/savings)
• Maximize employer 401(k) match
• Build 3-6 months emergency fund
• Diversify investments across asset classes
• Review and optimize insurance coverage
• Plan for major life events (house, family, retirement)
• Consider tax-advantaged accounts (HSA, IRA)`
	}
}

func discretionaryTip(s profile.Segment) string {
	switch s {
	case profile.SegmentStudent:
		return "💡 Try cooking more meals at home or finding free campus activities to reduce this expense."
	default:
		return "💡 Consider meal prepping or setting a monthly entertainment budget to control this expense."
	}
}

const (
	housingWarning   = "⚠️  Housing costs exceed the recommended 30% of income. Consider roommates or relocating if possible."
	subscriptionsTip = "🔍 Review subscriptions - you might have services you're not using regularly."

	excellentNote        = "🌟 Outstanding work! You're exceeding savings goals."
	needsImprovementNote = "⚠️  Let's work on boosting that savings rate. Small changes can make a big difference!"

	investDisclaimer = "⚠️  Remember: Past performance doesn't guarantee future results. Consider consulting a financial advisor for personalized advice."

	// EmergencyFirst is returned instead of suggestions when too little is
	// left over to invest.
	EmergencyFirst = "Focus on building an emergency fund first before investing. Aim to save at least $1,000 for emergencies."

	savingsAccounts = `**Recommended Savings Accounts:**
• High-Yield Savings: 4-5% APY
• Money Market Account: 3-4% APY
• CDs: 4-5% APY (if you won't need the money soon)`
)
