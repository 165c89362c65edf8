package web

const (
	MsgInvalidRequest        = "Invalid request. Please try again."
	MsgServerError           = "Something went wrong. Please try again later."
	MsgSignupSuccess         = "Signup successful. Please check your email to verify your account."
	MsgSignupEmailNotSent    = "Your account was created but we could not send the verification email. Please request a new link or contact support."
	MsgUserExists            = "An account with this email already exists. Please log in."
	MsgVerifyInvalidToken    = "This verification link is invalid."
	MsgVerifyExpiredToken    = "This verification link has expired. Please request a new one."
	MsgVerifyUserNotFound    = "No account matches this verification link."
	MsgResendAccepted        = "If an unverified account exists for this email, a new verification link has been sent."
	MsgResendTooSoon         = "Please wait a minute before requesting another verification email."
	MsgLoginSuccess          = "Login successful."
	MsgLoginWrongCredentials = "Invalid email or password."
	MsgLoginNotVerified      = "Please verify your email before logging in."
	MsgInvalidAction         = "actionType must be VIEW or CLICK."
	MsgMissingTarget         = "targetResource is required."
	MsgActivityRecorded      = "Activity recorded."
	MsgDocumentDeleted       = "Document deleted."
	MsgDocumentNotFound      = "Document not found."
	MsgAdminOnly             = "Only administrators can perform this action."
	MsgLoginRequired         = "Authentication required. Please log in."
)
