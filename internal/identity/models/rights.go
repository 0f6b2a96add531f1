package models

// Rights checked by the identity services.
const (
	RightMailSend                = "mail.send"
	RightUserRead                = "user.read"
	RightUserWrite               = "user.write"
	RightAuthAccountRead         = "authaccount.read"
	RightAuthAccountWrite        = "authaccount.write"
	RightAuthAccountDelete       = "authaccount.delete"
	RightSessionRead             = "session.read"
	RightSessionWrite            = "session.write"
	RightSessionDelete           = "session.delete"
	RightVerificationTokenRead   = "verificationtoken.read"
	RightVerificationTokenWrite  = "verificationtoken.write"
	RightVerificationTokenDelete = "verificationtoken.delete"
)
