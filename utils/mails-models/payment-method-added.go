package mailsmodels

import (
	"fmt"

	"github.com/vigourpt/themonneygate2/utils"
)

func PaymentMethodAdded(email string, cardInfo string) {
	subject := "Subject: New payment method added to your MoneyGate account\r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<h1>New Payment Method Added</h1>
	<p>A new payment method%s has been added to your MoneyGate account.</p>
	<p>This payment method will be used for future subscription payments.</p>
	<p>If you did not make this change, please contact our support team immediately.</p>
`, cardInfo)

	message := []byte(subject + mime + body)

	utils.SendMail(email, message)
}
