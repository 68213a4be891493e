package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/domain/credential"
	"github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/domain/invoice"
	"github.com/feesync/feesync/internal/domain/payment"
	"github.com/feesync/feesync/internal/domain/user"
	"github.com/feesync/feesync/internal/email"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
)

// AuthService signs admins in
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	SendOTP(ctx context.Context, req *dto.SendOTPRequest) (*dto.SuccessResponse, error)
	VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.AuthResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.SuccessResponse, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*dto.SuccessResponse, error)
}

// StudentService signs students in and serves their portal
type StudentService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	SendOTP(ctx context.Context, req *dto.SendOTPRequest) (*dto.SuccessResponse, error)
	VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.AuthResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.SuccessResponse, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*dto.SuccessResponse, error)
	SetPassword(ctx context.Context, req *dto.SetPasswordRequest) (*dto.SuccessResponse, error)
	Me(ctx context.Context) (*dto.StudentProfileResponse, error)
}

// account is the part of a user or student the login flows need
type account struct {
	ID          string
	Name        string
	Email       string
	Role        types.Role
	Credentials *credential.Credentials
}

func (a *account) principal() *dto.PrincipalResponse {
	return &dto.PrincipalResponse{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Role:        a.Role,
		HasPassword: a.Credentials.HasPassword(),
	}
}

type accountStore interface {
	byEmail(ctx context.Context, email string) (*account, error)
	byResetToken(ctx context.Context, digest string) (*account, error)
	saveCredentials(ctx context.Context, id string, creds *credential.Credentials) error
	loggedIn(ctx context.Context, id string)
}

// credentialFlows holds the login logic shared by admins and students
type credentialFlows struct {
	ServiceParams
	store     accountStore
	resetPath string
	now       func() time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (f *credentialFlows) issue(ctx context.Context, a *account) (*dto.AuthResponse, error) {
	token, expiresAt, err := f.AuthProvider.GenerateToken(a.ID, a.Role)
	if err != nil {
		return nil, err
	}
	f.store.loggedIn(ctx, a.ID)
	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      a.principal(),
	}, nil
}

func (f *credentialFlows) login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := f.store.byEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("unknown email").
				WithHint("Invalid email or password").
				Mark(ierr.ErrUnauthorized)
		}
		return nil, err
	}
	if !a.Credentials.HasPassword() {
		return nil, ierr.NewError("password not set").
			WithHint("No password is set for this account. Sign in with a one-time code first.").
			Mark(ierr.ErrUnauthorized)
	}
	if err := f.AuthProvider.ComparePassword(a.Credentials.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	return f.issue(ctx, a)
}

func (f *credentialFlows) sendOTP(ctx context.Context, req *dto.SendOTPRequest) (*dto.SuccessResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := f.store.byEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHint("No account found with this email").
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}

	code, hash, err := f.AuthProvider.GenerateOTP()
	if err != nil {
		return nil, err
	}
	ttl := f.Config.Auth.OTPTTL
	creds := credentialsOf(a)
	creds.OTPHash = hash
	creds.OTPExpiry = lo.ToPtr(f.now().UTC().Add(ttl))
	if err := f.store.saveCredentials(ctx, a.ID, creds); err != nil {
		return nil, err
	}

	if _, err := f.EmailSender.SendTemplate(ctx, a.Name, a.Email, email.TemplateOTP, map[string]interface{}{
		"name":    a.Name,
		"otp":     code,
		"minutes": int(ttl.Minutes()),
	}); err != nil {
		return nil, err
	}

	f.Logger.Infow("one-time code sent", "account_id", a.ID, "role", a.Role)
	return dto.NewSuccessResponse("Verification code sent"), nil
}

func (f *credentialFlows) verifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	invalid := ierr.NewError("invalid one-time code").
		WithHint("Invalid or expired code").
		Mark(ierr.ErrUnauthorized)

	a, err := f.store.byEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	if !a.Credentials.OTPActive(f.now()) {
		return nil, invalid
	}
	if err := f.AuthProvider.ComparePassword(a.Credentials.OTPHash, req.OTP); err != nil {
		return nil, invalid
	}

	creds := credentialsOf(a)
	creds.ClearOTP()
	if err := f.store.saveCredentials(ctx, a.ID, creds); err != nil {
		return nil, err
	}
	return f.issue(ctx, a)
}

// forgotPassword answers the same way whether or not the email is known
func (f *credentialFlows) forgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.SuccessResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp := dto.NewSuccessResponse("If the email is registered, a reset link has been sent")

	a, err := f.store.byEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if ierr.IsNotFound(err) {
			f.Logger.Debugw("password reset requested for unknown email")
			return resp, nil
		}
		return nil, err
	}

	token, digest, err := f.AuthProvider.GenerateResetToken()
	if err != nil {
		return nil, err
	}
	ttl := f.Config.Auth.ResetTokenTTL
	creds := credentialsOf(a)
	creds.ResetTokenHash = digest
	creds.ResetTokenExpiry = lo.ToPtr(f.now().UTC().Add(ttl))
	if err := f.store.saveCredentials(ctx, a.ID, creds); err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s%s?token=%s", strings.TrimRight(f.Config.Auth.FrontendURL, "/"), f.resetPath, url.QueryEscape(token))
	if _, err := f.EmailSender.SendTemplate(ctx, a.Name, a.Email, email.TemplatePasswordReset, map[string]interface{}{
		"name":    a.Name,
		"link":    link,
		"minutes": int(ttl.Minutes()),
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

func (f *credentialFlows) resetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*dto.SuccessResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	invalid := ierr.NewError("invalid reset token").
		WithHint("The reset link is invalid or has expired").
		Mark(ierr.ErrValidation)

	a, err := f.store.byResetToken(ctx, f.AuthProvider.HashResetToken(req.Token))
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	if !a.Credentials.ResetActive(f.now()) {
		return nil, invalid
	}

	hash, err := f.AuthProvider.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	creds := credentialsOf(a)
	creds.PasswordHash = hash
	creds.ClearReset()
	creds.ClearOTP()
	if err := f.store.saveCredentials(ctx, a.ID, creds); err != nil {
		return nil, err
	}

	f.Logger.Infow("password reset", "account_id", a.ID, "role", a.Role)
	return dto.NewSuccessResponse("Password has been reset"), nil
}

// credentialsOf returns a copy that can be modified and saved
func credentialsOf(a *account) *credential.Credentials {
	if a.Credentials == nil {
		return &credential.Credentials{}
	}
	creds := *a.Credentials
	return &creds
}

// admins

type userAccounts struct {
	repo   user.Repository
	params ServiceParams
}

func userAccount(u *user.User) *account {
	return &account{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Credentials: u.Credentials}
}

func (s *userAccounts) byEmail(ctx context.Context, email string) (*account, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return userAccount(u), nil
}

func (s *userAccounts) byResetToken(ctx context.Context, digest string) (*account, error) {
	u, err := s.repo.GetByResetToken(ctx, digest)
	if err != nil {
		return nil, err
	}
	return userAccount(u), nil
}

func (s *userAccounts) saveCredentials(ctx context.Context, id string, creds *credential.Credentials) error {
	return s.repo.UpdateCredentials(ctx, id, creds)
}

func (s *userAccounts) loggedIn(ctx context.Context, id string) {
	if err := s.repo.TouchLogin(ctx, id); err != nil {
		s.params.Logger.Warnw("failed to record login", "user_id", id, "error", err)
	}
}

type authService struct {
	credentialFlows
}

func NewAuthService(params ServiceParams) AuthService {
	return &authService{credentialFlows{
		ServiceParams: params,
		store:         &userAccounts{repo: params.UserRepo, params: params},
		resetPath:     "/reset-password",
		now:           time.Now,
	}}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.AuthProvider.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := user.NewUser(ctx, req.Name, req.Email)
	u.Credentials.PasswordHash = hash
	if err := s.UserRepo.Create(ctx, u); err != nil {
		if ierr.IsAlreadyExists(err) {
			return nil, ierr.WithError(err).
				WithHint("An account with this email already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, err
	}

	s.Logger.Infow("admin registered", "user_id", u.ID)
	notify(types.SetUserID(ctx, u.ID), s.ServiceParams, types.NotificationTypeAuth,
		fmt.Sprintf("Admin %s registered", u.Name), map[string]string{"user_id": u.ID})
	return s.issue(ctx, userAccount(u))
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	return s.login(ctx, req)
}

func (s *authService) SendOTP(ctx context.Context, req *dto.SendOTPRequest) (*dto.SuccessResponse, error) {
	return s.sendOTP(ctx, req)
}

func (s *authService) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.AuthResponse, error) {
	return s.verifyOTP(ctx, req)
}

func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.SuccessResponse, error) {
	return s.forgotPassword(ctx, req)
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*dto.SuccessResponse, error) {
	return s.resetPassword(ctx, req)
}

// students

type studentAccounts struct {
	repo customer.Repository
}

func studentAccount(c *customer.Customer) *account {
	return &account{ID: c.ContactID, Name: c.DisplayName(), Email: c.Email, Role: types.RoleStudent, Credentials: c.Credentials}
}

func (s *studentAccounts) byEmail(ctx context.Context, email string) (*account, error) {
	c, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return studentAccount(c), nil
}

func (s *studentAccounts) byResetToken(ctx context.Context, digest string) (*account, error) {
	c, err := s.repo.GetByResetToken(ctx, digest)
	if err != nil {
		return nil, err
	}
	return studentAccount(c), nil
}

func (s *studentAccounts) saveCredentials(ctx context.Context, id string, creds *credential.Credentials) error {
	return s.repo.UpdateCredentials(ctx, id, creds)
}

// student logins are not tracked
func (s *studentAccounts) loggedIn(context.Context, string) {}

type studentService struct {
	credentialFlows
	aggregation AggregationService
}

func NewStudentService(params ServiceParams) StudentService {
	return &studentService{
		credentialFlows: credentialFlows{
			ServiceParams: params,
			store:         &studentAccounts{repo: params.CustomerRepo},
			resetPath:     "/student/reset-password",
			now:           time.Now,
		},
		aggregation: NewAggregationService(params),
	}
}

func (s *studentService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	return s.login(ctx, req)
}

func (s *studentService) SendOTP(ctx context.Context, req *dto.SendOTPRequest) (*dto.SuccessResponse, error) {
	return s.sendOTP(ctx, req)
}

func (s *studentService) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.AuthResponse, error) {
	return s.verifyOTP(ctx, req)
}

func (s *studentService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.SuccessResponse, error) {
	return s.forgotPassword(ctx, req)
}

func (s *studentService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*dto.SuccessResponse, error) {
	return s.resetPassword(ctx, req)
}

// SetPassword sets the password of the signed in student
func (s *studentService) SetPassword(ctx context.Context, req *dto.SetPasswordRequest) (*dto.SuccessResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c, err := s.currentStudent(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := s.AuthProvider.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	creds := credentialsOf(studentAccount(c))
	creds.PasswordHash = hash
	if err := s.CustomerRepo.UpdateCredentials(ctx, c.ContactID, creds); err != nil {
		return nil, err
	}
	return dto.NewSuccessResponse("Password has been set"), nil
}

func (s *studentService) Me(ctx context.Context) (*dto.StudentProfileResponse, error) {
	c, err := s.currentStudent(ctx)
	if err != nil {
		return nil, err
	}

	invoiceFilter := types.NewNoLimitInvoiceFilter()
	invoiceFilter.CustomerID = c.ContactID
	invoices, err := s.InvoiceRepo.ListAll(ctx, invoiceFilter)
	if err != nil {
		return nil, err
	}

	paymentFilter := types.NewNoLimitPaymentFilter()
	paymentFilter.CustomerID = c.ContactID
	payments, err := s.PaymentRepo.ListAll(ctx, paymentFilter)
	if err != nil {
		return nil, err
	}

	balance, err := s.aggregation.GetOutstanding(ctx, c.ContactID)
	if err != nil {
		return nil, err
	}

	return &dto.StudentProfileResponse{
		Customer: dto.NewCustomerResponse(c, balance.Outstanding),
		Invoices: lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
			return &dto.InvoiceResponse{Invoice: inv}
		}),
		Payments: lo.Map(payments, func(p *payment.Payment, _ int) *dto.PaymentResponse {
			return &dto.PaymentResponse{Payment: p}
		}),
		Outstanding: balance.Outstanding,
	}, nil
}

func (s *studentService) currentStudent(ctx context.Context) (*customer.Customer, error) {
	if types.GetRole(ctx) != types.RoleStudent {
		return nil, ierr.NewError("not a student session").
			WithHint("Sign in as a student to continue").
			Mark(ierr.ErrPermissionDenied)
	}
	c, err := s.CustomerRepo.Get(ctx, types.GetUserID(ctx))
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHint("Your student record no longer exists").
				Mark(ierr.ErrUnauthorized)
		}
		return nil, err
	}
	return c, nil
}
