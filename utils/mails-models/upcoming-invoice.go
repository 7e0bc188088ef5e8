package mailsmodels

import (
	"fmt"

	"github.com/vigourpt/themonneygate2/utils"
)

func UpcomingInvoice(email string, amount float64, currency string, invoiceDate string) {
	subject := "Subject: Your upcoming MoneyGate subscription payment\r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<h1>Upcoming Subscription Payment</h1>
	<p>This is a reminder about your upcoming MoneyGate subscription payment.</p>
	<p><strong>Amount:</strong> %.2f %s</p>
	<p><strong>Date:</strong> %s</p>
	<p>Your payment method will be charged automatically. If you need to update your payment information, please visit your subscription settings.</p>
`, amount, currency, invoiceDate)

	message := []byte(subject + mime + body)

	utils.SendMail(email, message)
}
