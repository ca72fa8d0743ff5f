package mailer

import (
	"fmt"
	"html"
)

// Notification types carried on notification rows and used to pick a
// template.
const (
	TypeWelcome                  = "welcome"
	TypePaymentFailure           = "payment_failure"
	TypeCardExpiring             = "card_expiring"
	TypeTrialEnding              = "trial_ending"
	TypeSubscriptionConfirmation = "subscription_confirmation"
	TypeRecommendations          = "recommendations"
	TypeApplicationStatus        = "application_status"
)

const layout = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f4f7;font-family:Helvetica,Arial,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="max-width:560px;margin:0 auto;background-color:#ffffff;">
    <tr>
      <td style="padding:24px 32px;background-color:#1a1a2e;">
        <span style="color:#ffffff;font-size:20px;font-weight:bold;">Ori</span>
      </td>
    </tr>
    <tr>
      <td style="padding:32px;color:#333333;font-size:15px;line-height:1.6;">
        <h2 style="margin-top:0;font-size:18px;">%s</h2>
        %s
      </td>
    </tr>
    <tr>
      <td style="padding:16px 32px;color:#999999;font-size:12px;border-top:1px solid #eeeeee;">
        You are receiving this email because you have an Ori account.
        <a href="%s" style="color:#999999;">Unsubscribe</a>
      </td>
    </tr>
  </table>
</body>
</html>`

// Template is a rendered email body ready to hand to a Sender.
type Template struct {
	Type    string
	Subject string
	HTML    string
}

// TemplateBuilder defers rendering until the recipient's unsubscribe URL
// is known. Single-argument builders like PaymentFailureEmail satisfy it
// directly; the others are wrapped in a closure at the call site.
type TemplateBuilder func(unsubscribeURL string) Template

func render(emailType, subject, heading, body, unsubscribeURL string) Template {
	return Template{
		Type:    emailType,
		Subject: subject,
		HTML:    fmt.Sprintf(layout, html.EscapeString(heading), body, unsubscribeURL),
	}
}

func WelcomeEmail(name, unsubscribeURL string) Template {
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Welcome to Ori. Your job search just got a lot more organized: track applications, keep your experience up to date, and get matched to roles that fit.</p>`,
		html.EscapeString(name))
	return render(TypeWelcome, "Welcome to Ori", "Welcome aboard", body, unsubscribeURL)
}

func PaymentFailureEmail(unsubscribeURL string) Template {
	body := `<p>We could not process your latest subscription payment. Please update your payment method to keep your plan active.</p><p>We will retry the charge automatically over the next few days.</p>`
	return render(TypePaymentFailure, "Action needed: payment failed", "Payment failed", body, unsubscribeURL)
}

func CardExpiringEmail(unsubscribeURL string) Template {
	body := `<p>The card on your account is about to expire. Update it in your billing settings to avoid any interruption to your subscription.</p>`
	return render(TypeCardExpiring, "Your card is expiring soon", "Card expiring soon", body, unsubscribeURL)
}

func TrialEndingEmail(daysLeft int, unsubscribeURL string) Template {
	body := fmt.Sprintf(
		`<p>Your trial ends in %d days. Pick a plan to keep unlimited access to job matching and application tracking.</p>`,
		daysLeft)
	return render(TypeTrialEnding, "Your trial is ending soon", "Trial ending soon", body, unsubscribeURL)
}

func SubscriptionConfirmationEmail(planName, unsubscribeURL string) Template {
	body := fmt.Sprintf(
		`<p>Your %s subscription is active. Thanks for supporting Ori.</p>`,
		html.EscapeString(planName))
	return render(TypeSubscriptionConfirmation, "Subscription confirmed", "You're all set", body, unsubscribeURL)
}

func RecommendationsEmail(count int, unsubscribeURL string) Template {
	body := fmt.Sprintf(
		`<p>We found %d new roles that match your profile. Open Ori to review them.</p>`,
		count)
	return render(TypeRecommendations, "New job matches for you", "New matches", body, unsubscribeURL)
}

func ApplicationStatusEmail(jobTitle, company, status, unsubscribeURL string) Template {
	body := fmt.Sprintf(
		`<p>Your application for <strong>%s</strong> at <strong>%s</strong> moved to <strong>%s</strong>.</p>`,
		html.EscapeString(jobTitle), html.EscapeString(company), html.EscapeString(status))
	return render(TypeApplicationStatus, "Application update", "Application update", body, unsubscribeURL)
}
