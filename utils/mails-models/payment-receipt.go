package mailsmodels

import (
	"fmt"

	"github.com/vigourpt/themonneygate2/utils"
)

func PaymentReceipt(email string, amount float64, currency string, date string, invoiceID string) {
	subject := fmt.Sprintf("Subject: Receipt for your MoneyGate payment of %.2f %s\r\n", amount, currency)
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<h1>Payment Receipt</h1>
	<p>We've received your payment for your MoneyGate subscription.</p>
	<p><strong>Amount:</strong> %.2f %s</p>
	<p><strong>Date:</strong> %s</p>
	<p><strong>Invoice ID:</strong> %s</p>
	<p>Thank you for your continued subscription!</p>
`, amount, currency, date, invoiceID)

	message := []byte(subject + mime + body)

	utils.SendMail(email, message)
}
