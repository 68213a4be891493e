package dto

import (
	"time"

	"github.com/feesync/feesync/internal/types"
	"github.com/feesync/feesync/internal/validator"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (r *RegisterRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *SendOTPRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

func (r *VerifyOTPRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (r *ResetPasswordRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// SetPasswordRequest sets a student's first password from an OTP session
type SetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (r *SetPasswordRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type PrincipalResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        types.Role `json:"role"`
	HasPassword bool       `json:"has_password"`
}

type AuthResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      *PrincipalResponse `json:"user"`
}

// StudentProfileResponse is everything the student portal shows
type StudentProfileResponse struct {
	Customer    *CustomerResponse  `json:"customer"`
	Invoices    []*InvoiceResponse `json:"invoices"`
	Payments    []*PaymentResponse `json:"payments"`
	Outstanding float64            `json:"outstanding"`
}
