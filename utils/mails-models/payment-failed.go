package mailsmodels

import (
	"fmt"

	"github.com/vigourpt/themonneygate2/utils"
)

func PaymentFailed(email string, attemptCount int64, portalLink string) {
	subject := "Subject: Action required: Your MoneyGate payment failed\r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<h1>Payment Failed</h1>
	<p>We weren't able to process your payment for your MoneyGate subscription.</p>
	<p>This was attempt #%d. Please update your payment method to avoid any interruption to your service.</p>
	<p><a href="%s">Update your payment method here</a></p>
	<p>If you need assistance, please contact our support team.</p>
`, attemptCount, portalLink)

	message := []byte(subject + mime + body)

	utils.SendMail(email, message)
}
