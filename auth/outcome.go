package auth

// OutcomeKind tags a LoginOutcome.
type OutcomeKind int

const (
	OutcomeFailure OutcomeKind = iota
	OutcomeSuccess
	OutcomeMFARequired
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeMFARequired:
		return "mfa_required"
	default:
		return "failure"
	}
}

const (
	msgLoginSuccessful = "Login successful"
	msgEnterCode       = "Please enter your verification code"
	msgRegisterPhone   = "Please register your phone for MFA"
	msgNoToken         = "Login failed. No authentication token received. Please try again."
	msgLoginFailed     = "Login failed. Please check your credentials."
	msgVerified        = "Verification successful"

	msgSendOTPFailed        = "Failed to send OTP"
	msgSendOTPRequestFailed = "Failed to send verification code. Please try again."
	msgInvalidCode          = "Invalid verification code."
	msgInvalidCodeRequest   = "Invalid verification code. Please try again."
	msgSessionNotSaved      = "Unable to save session. Please try again."
)

// MFAChallenge describes the second factor the server asked for.
type MFAChallenge struct {
	Enrolled bool   // phone already registered, an OTP can be verified directly
	Phone    string // phone on record, may be empty
	Email    string
}

// LoginOutcome is the result of Login or VerifyOTP.
type LoginOutcome struct {
	Kind     OutcomeKind
	Message  string
	MFA      MFAChallenge // set when Kind is OutcomeMFARequired
	Response map[string]any
}

func (o LoginOutcome) Success() bool {
	return o.Kind == OutcomeSuccess
}

func (o LoginOutcome) RequiresMFA() bool {
	return o.Kind == OutcomeMFARequired
}

// Credentials are submitted to the login endpoint as-is. Format checks belong to the form layer.
type Credentials struct {
	Identifier string
	Secret     string
}

type OTPRequest struct {
	Code       string
	RememberMe bool
}

// MFAResponse is the envelope of a successful send_mfa_otp call.
type MFAResponse struct {
	Status  string
	Message string
	Data    any
	Raw     map[string]any
}

type loginRequest struct {
	TbUser loginCredentials `json:"TbUser"`
}

type loginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type phoneRequest struct {
	Phone string `json:"phone"`
}

type otpRequest struct {
	OTP        string `json:"otp"`
	RememberMe bool   `json:"remember_me"`
}
