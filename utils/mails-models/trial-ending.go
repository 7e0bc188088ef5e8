package mailsmodels

import (
	"fmt"

	"github.com/vigourpt/themonneygate2/utils"
)

func TrialEnding(email string, trialEndDate string, portalLink string) {
	subject := "Subject: Your MoneyGate free trial is ending soon\r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<h1>Your Free Trial is Ending Soon</h1>
	<p>Your MoneyGate free trial will end on %s. After this date, your subscription will automatically convert to a paid plan.</p>
	<p>If you wish to continue enjoying premium features, no action is required. Your payment method will be charged automatically.</p>
	<p>If you would like to cancel before being charged, you can do so by <a href="%s">visiting your subscription page</a>.</p>
	<p>We hope you've enjoyed using MoneyGate and found value in our premium features!</p>
`, trialEndDate, portalLink)

	message := []byte(subject + mime + body)

	utils.SendMail(email, message)
}
