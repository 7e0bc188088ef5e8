package mailsmodels

import (
	"github.com/vigourpt/themonneygate2/utils"
)

func SubscriptionEnded(email string) {
	subject := "Subject: Your MoneyGate subscription has ended\r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := `
	<h1>Your subscription has ended</h1>
	<p>Your premium subscription has now ended. You've been moved to the free plan.</p>
	<p>We're sorry to see you go! If you'd like to share feedback on your experience, please reply to this email.</p>
	<p>You can resubscribe anytime from your account settings.</p>
`

	message := []byte(subject + mime + body)

	utils.SendMail(email, message)
}
