package service

import (
	"context"
	"fmt"
	"time"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/email"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"
)

// ReminderService finds students who have not paid for a month and reminds them
type ReminderService interface {
	ListUnpaidStudents(ctx context.Context, req *dto.UnpaidStudentsRequest) (*dto.UnpaidStudentsResponse, error)
	SendReminder(ctx context.Context, req *dto.SendReminderRequest) (*dto.SendReminderResponse, error)
	SendBulkReminders(ctx context.Context, req *dto.SendBulkRemindersRequest) (*dto.SendBulkRemindersResponse, error)
}

type reminderService struct {
	ServiceParams
	aggregation AggregationService
	now         func() time.Time
}

func NewReminderService(params ServiceParams) ReminderService {
	return &reminderService{
		ServiceParams: params,
		aggregation:   NewAggregationService(params),
		now:           time.Now,
	}
}

func (s *reminderService) month(raw string) (types.Month, error) {
	if raw == "" {
		return types.MonthOf(s.now()), nil
	}
	return types.ParseMonth(raw)
}

func (s *reminderService) ListUnpaidStudents(ctx context.Context, req *dto.UnpaidStudentsRequest) (*dto.UnpaidStudentsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	month, err := s.month(req.Month)
	if err != nil {
		return nil, err
	}

	unpaid, err := s.aggregation.ListUnpaid(ctx, month)
	if err != nil {
		return nil, err
	}
	balances, err := s.aggregation.OutstandingByCustomer(ctx)
	if err != nil {
		return nil, err
	}

	students := lo.Map(unpaid, func(c *customer.Customer, _ int) dto.UnpaidStudent {
		return dto.UnpaidStudent{
			ContactID:   c.ContactID,
			Name:        c.DisplayName(),
			Email:       c.Email,
			Phone:       c.PhoneNumber(),
			Course:      c.Course,
			Batch:       c.Batch,
			Outstanding: balances[c.ContactID],
		}
	})
	return &dto.UnpaidStudentsResponse{
		Month:    month.String(),
		Count:    len(students),
		Students: students,
	}, nil
}

func (s *reminderService) SendReminder(ctx context.Context, req *dto.SendReminderRequest) (*dto.SendReminderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	month, err := s.month(req.Month)
	if err != nil {
		return nil, err
	}

	c, err := s.CustomerRepo.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	balances, err := s.aggregation.OutstandingByCustomer(ctx)
	if err != nil {
		return nil, err
	}

	channel := channelOrDefault(req.Channel)
	result := &dto.SendReminderResponse{
		CustomerID: c.ContactID,
		Name:       c.DisplayName(),
	}
	if channel.Includes(types.ReminderChannelEmail) {
		result.Email = s.deliverEmail(ctx, c, month, balances[c.ContactID])
	}
	if channel.Includes(types.ReminderChannelWhatsApp) {
		result.WhatsApp = s.deliverWhatsApp(ctx, c, month, balances[c.ContactID])
	}
	settle(result)

	s.Logger.Infow("fee reminder sent",
		"customer_id", c.ContactID,
		"month", month.String(),
		"channel", channel,
		"success", result.Success,
	)
	return result, nil
}

// SendBulkReminders attempts every recipient. Emails go out on a bounded pool while
// WhatsApp messages are paced by the limiter; per-recipient failures are only counted.
func (s *reminderService) SendBulkReminders(ctx context.Context, req *dto.SendBulkRemindersRequest) (*dto.SendBulkRemindersResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	month, err := s.month(req.Month)
	if err != nil {
		return nil, err
	}
	channel := channelOrDefault(req.Channel)

	results, recipients, err := s.recipients(ctx, req.CustomerIDs, month)
	if err != nil {
		return nil, err
	}
	balances, err := s.aggregation.OutstandingByCustomer(ctx)
	if err != nil {
		return nil, err
	}

	concurrency := s.Config.Reminder.EmailConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	emails := pool.New().WithMaxGoroutines(concurrency)
	for i, c := range recipients {
		if c == nil || !channel.Includes(types.ReminderChannelEmail) {
			continue
		}
		i, c := i, c
		emails.Go(func() {
			results[i].Email = s.deliverEmail(ctx, c, month, balances[c.ContactID])
		})
	}

	if channel.Includes(types.ReminderChannelWhatsApp) {
		limiter := s.whatsAppLimiter()
		for i, c := range recipients {
			if c == nil {
				continue
			}
			if err := limiter.Wait(ctx); err != nil {
				results[i].WhatsApp = &dto.ChannelResult{Error: err.Error()}
				continue
			}
			results[i].WhatsApp = s.deliverWhatsApp(ctx, c, month, balances[c.ContactID])
		}
	}
	emails.Wait()

	resp := &dto.SendBulkRemindersResponse{
		Month:   month.String(),
		Channel: channel,
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		settle(r)
		if r.Success {
			resp.Successful++
		} else {
			resp.Failed++
		}
	}

	s.Logger.Infow("bulk fee reminders finished",
		"month", resp.Month,
		"channel", channel,
		"total", resp.Total,
		"successful", resp.Successful,
		"failed", resp.Failed,
	)
	notify(ctx, s.ServiceParams, types.NotificationTypeReminder,
		fmt.Sprintf("Fee reminders for %s: %d of %d delivered", month.Label(), resp.Successful, resp.Total),
		map[string]string{"month": resp.Month, "channel": string(channel)})
	return resp, nil
}

// recipients resolves the explicit ids, or every unpaid student when none are given.
// Unknown ids yield a failed result and a nil customer.
func (s *reminderService) recipients(ctx context.Context, ids []string, month types.Month) ([]*dto.SendReminderResponse, []*customer.Customer, error) {
	var customers []*customer.Customer
	results := make([]*dto.SendReminderResponse, 0)

	if len(ids) == 0 {
		unpaid, err := s.aggregation.ListUnpaid(ctx, month)
		if err != nil {
			return nil, nil, err
		}
		for _, c := range unpaid {
			customers = append(customers, c)
			results = append(results, &dto.SendReminderResponse{CustomerID: c.ContactID, Name: c.DisplayName()})
		}
		return results, customers, nil
	}

	for _, id := range lo.Uniq(ids) {
		c, err := s.CustomerRepo.Get(ctx, id)
		if err != nil {
			if !ierr.IsNotFound(err) {
				return nil, nil, err
			}
			customers = append(customers, nil)
			results = append(results, &dto.SendReminderResponse{CustomerID: id, Error: "customer not found"})
			continue
		}
		customers = append(customers, c)
		results = append(results, &dto.SendReminderResponse{CustomerID: c.ContactID, Name: c.DisplayName()})
	}
	return results, customers, nil
}

func (s *reminderService) whatsAppLimiter() *rate.Limiter {
	interval := s.Config.Reminder.WhatsAppInterval
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

func (s *reminderService) deliverEmail(ctx context.Context, c *customer.Customer, month types.Month, outstanding float64) *dto.ChannelResult {
	if !c.HasEmail() {
		return &dto.ChannelResult{Error: "customer has no email address"}
	}
	resp, err := s.EmailSender.SendTemplate(ctx, c.DisplayName(), c.Email, email.TemplateFeeReminder, map[string]interface{}{
		"student_name":   c.DisplayName(),
		"month":          month.Label(),
		"outstanding":    formatAmount(outstanding, c.CurrencyCode),
		"portal_url":     s.Config.Reminder.PortalURL,
		"institute_name": s.Config.Reminder.InstituteName,
	})
	if err != nil {
		s.Logger.Warnw("fee reminder email failed",
			"customer_id", c.ContactID,
			"error", err,
		)
		return &dto.ChannelResult{Via: "email", Error: errorMessage(err)}
	}
	return &dto.ChannelResult{Success: true, Via: "email", MessageID: resp.MessageID}
}

func (s *reminderService) deliverWhatsApp(ctx context.Context, c *customer.Customer, month types.Month, outstanding float64) *dto.ChannelResult {
	phone := c.PhoneNumber()
	if phone == "" {
		return &dto.ChannelResult{Error: "customer has no phone number"}
	}
	body := fmt.Sprintf("Dear %s, this is a reminder that your fee payment for %s is pending. Outstanding balance: %s. %s",
		c.DisplayName(), month.Label(), formatAmount(outstanding, c.CurrencyCode), s.Config.Reminder.InstituteName)

	res, err := s.MessagingSender.Send(ctx, phone, body)
	if err != nil {
		s.Logger.Warnw("fee reminder message failed",
			"customer_id", c.ContactID,
			"error", err,
		)
		return &dto.ChannelResult{Error: errorMessage(err)}
	}
	return &dto.ChannelResult{Success: true, Via: string(res.Channel), MessageID: res.SID}
}

// settle marks a result successful when every attempted channel delivered
func settle(r *dto.SendReminderResponse) {
	attempts := lo.Compact([]*dto.ChannelResult{r.Email, r.WhatsApp})
	if len(attempts) == 0 {
		r.Success = false
		return
	}
	r.Success = lo.EveryBy(attempts, func(a *dto.ChannelResult) bool { return a.Success })
	if !r.Success && r.Error == "" {
		failed, _ := lo.Find(attempts, func(a *dto.ChannelResult) bool { return !a.Success })
		r.Error = failed.Error
	}
}

func channelOrDefault(c types.ReminderChannel) types.ReminderChannel {
	if c == "" {
		return types.ReminderChannelEmail
	}
	return c
}

func formatAmount(amount float64, currency string) string {
	value := decimal.NewFromFloat(amount).StringFixed(2)
	if currency == "" {
		return value
	}
	return currency + " " + value
}

// errorMessage prefers the caller facing hint over the internal message
func errorMessage(err error) string {
	return ierr.DisplayMessage(err, err.Error())
}
