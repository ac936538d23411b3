package apperr

import "errors"

// Response is the failure envelope shared by every transport.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
}

// Format converts any error into the failure envelope. Internal details are
// only included when exposeInternal is set (development environments).
func Format(err error, exposeInternal bool) Response {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal(err)
	}

	resp := Response{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Kind.Code(),
		Field:   appErr.Field,
	}
	if appErr.Kind == KindInternal {
		resp.Error = InternalMessage
		resp.Field = ""
		if exposeInternal && appErr.Err != nil {
			resp.Error = InternalMessage + ": " + appErr.Err.Error()
		}
	}
	return resp
}
