package mailsmodels

import (
	"fmt"

	"github.com/vigourpt/themonneygate2/utils"
)

func SubscriptionWelcome(email string, status string, startDate string, nextBillingDate string) {
	subject := "Subject: Welcome to MoneyGate Premium!\r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<h1>Thanks for subscribing to MoneyGate Premium!</h1>
	<p>Your subscription is now active. You now have access to all premium features.</p>
	<p>Your subscription details:</p>
	<ul>
		<li>Plan: Premium</li>
		<li>Status: %s</li>
		<li>Started: %s</li>
		<li>Next billing date: %s</li>
	</ul>
	<p>If you have any questions, please contact our support team.</p>
`, status, startDate, nextBillingDate)

	message := []byte(subject + mime + body)

	utils.SendMail(email, message)
}
