package mailsmodels

import (
	"fmt"

	"github.com/vigourpt/themonneygate2/utils"
)

func SubscriptionUpdated(email string, status string, nextBillingDate string) {
	subject := "Subject: Your MoneyGate subscription has been updated\r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<h1>Subscription Updated</h1>
	<p>The pending changes to your MoneyGate subscription have been applied.</p>
	<p>Your updated subscription details:</p>
	<ul>
		<li>Status: %s</li>
		<li>Next billing date: %s</li>
	</ul>
	<p>You can view and manage your subscription anytime from your account settings.</p>
`, status, nextBillingDate)

	message := []byte(subject + mime + body)

	utils.SendMail(email, message)
}
