package api

import (
	"context"
	"net/http"
)

type sendOTPRequest struct {
	Mobile string `json:"mobile"`
}

type verifyOTPRequest struct {
	RequestID string `json:"request_id"`
	Mobile    string `json:"mobile"`
	OTP       string `json:"otp"`
}

// SendOTP asks the backend to text a one-time code to the given mobile.
// The returned request id is needed to verify the code.
func (c *Client) SendOTP(ctx context.Context, mobile string) (SendOTPResponse, error) {
	var out SendOTPResponse
	err := c.do(ctx, http.MethodPost, "/auth/send-otp", sendOTPRequest{Mobile: mobile}, &out)
	return out, err
}

// VerifyOTP exchanges the OTP for a bearer token and installs it on the
// client.
func (c *Client) VerifyOTP(ctx context.Context, requestID, mobile, otp string) (VerifyOTPResponse, error) {
	var out VerifyOTPResponse
	err := c.do(ctx, http.MethodPost, "/auth/verify-otp", verifyOTPRequest{RequestID: requestID, Mobile: mobile, OTP: otp}, &out)
	if err != nil {
		return out, err
	}
	c.token = out.Token
	return out, nil
}
