package mailsmodels

import (
	"fmt"

	"github.com/vigourpt/themonneygate2/utils"
)

func TrialConverted(email string, nextBillingDate string) {
	subject := "Subject: Your MoneyGate trial has converted to a paid subscription\r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<h1>Your trial has ended</h1>
	<p>Your trial period has ended and your paid subscription is now active.</p>
	<p>Your subscription details:</p>
	<ul>
		<li>Plan: Premium</li>
		<li>Status: Active</li>
		<li>Next billing date: %s</li>
	</ul>
	<p>You can manage your subscription anytime from your account settings.</p>
`, nextBillingDate)

	message := []byte(subject + mime + body)

	utils.SendMail(email, message)
}
