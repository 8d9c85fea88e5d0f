package domain

// NoticeLevel classifies a user-visible notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a toast-style message shown to the operator.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

const (
	MsgSessionExpired = "Session expired. Please login again."
	MsgLoginRequired  = "Please login to access this page"
	MsgAccessDenied   = "Access denied. You do not have permission to view this page."
	MsgLoginSucceeded = "Login successful!"
	MsgLoggedOut      = "Logged out successfully"
)
