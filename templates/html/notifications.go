package templates

import "fmt"

// Subjects for the transactional mails
const (
	JoinApplicationSubject = "We received your application"
	ReceiptVerifiedSubject = "Your contribution was verified"
)

// JoinApplicationBody is the acknowledgement sent after a join application
func JoinApplicationBody(firstName string) string {
	return fmt.Sprintf("Hi %s,\n\nThanks for applying to join Victim DAO. "+
		"You can now create your account using the same first name, last name and email you applied with.\n\n"+
		"The Victim DAO team", firstName)
}

// ReceiptVerifiedBody confirms a verified contribution and the points it earned
func ReceiptVerifiedBody(amount float64, currency string) string {
	return fmt.Sprintf("Your contribution of %.2f %s has been verified.\n\n"+
		"%.2f points were added to your balance. Thank you for supporting the community.",
		amount, currency, amount)
}
