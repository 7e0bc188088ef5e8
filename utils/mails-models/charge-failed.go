package mailsmodels

import (
	"fmt"

	"github.com/vigourpt/themonneygate2/utils"
)

func ChargeFailed(email string, amount float64, currency string, failureMessage string) {
	subject := "Subject: Your payment to MoneyGate failed\r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<h1>Payment Failed</h1>
	<p>We were unable to process your payment of %.2f %s.</p>
	<p><strong>Reason:</strong> %s</p>
	<p>Please update your payment method in your account settings or contact our support team for assistance.</p>
`, amount, currency, failureMessage)

	message := []byte(subject + mime + body)

	utils.SendMail(email, message)
}
