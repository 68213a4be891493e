package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/domain/invoice"
	"github.com/feesync/feesync/internal/domain/payment"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/testutil"
	"github.com/feesync/feesync/internal/types"
	"github.com/stretchr/testify/suite"
)

type ReminderServiceSuite struct {
	testutil.BaseServiceTestSuite
	service *reminderService
	now     time.Time
}

func TestReminderService(t *testing.T) {
	suite.Run(t, new(ReminderServiceSuite))
}

func (s *ReminderServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.now = time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)
	s.GetConfig().Reminder.EmailConcurrency = 3
	s.GetConfig().Reminder.InstituteName = "Sunrise Academy"

	params := newTestParams(&s.BaseServiceTestSuite)
	s.service = NewReminderService(params).(*reminderService)
	s.service.now = func() time.Time { return s.now }
	s.service.aggregation.(*aggregationService).now = s.service.now
}

func (s *ReminderServiceSuite) addStudent(id, email, mobile string) {
	s.Require().NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), &customer.Customer{
		ContactID:    id,
		ContactName:  "Student " + id,
		Email:        email,
		Mobile:       mobile,
		CurrencyCode: "INR",
		Source:       types.SourceZoho,
	}))
}

func (s *ReminderServiceSuite) TestListUnpaidStudents() {
	s.addStudent("C1", "c1@example.com", "")
	s.addStudent("C2", "c2@example.com", "")
	s.addStudent("C3", "", "9000000003")
	s.Require().NoError(s.GetStores().PaymentRepo.Create(s.GetContext(), &payment.Payment{
		PaymentID: "P1", CustomerID: "C1", Amount: 500, Date: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
	}))
	s.GetStores().InvoiceRepo.(*testutil.InMemoryInvoiceStore).Put(s.GetContext(), "I2", &invoice.Invoice{
		InvoiceID: "I2", CustomerID: "C2", Total: 1200,
	})

	resp, err := s.service.ListUnpaidStudents(s.GetContext(), &dto.UnpaidStudentsRequest{Month: "2024-05"})
	s.Require().NoError(err)
	s.Equal("2024-05", resp.Month)
	s.Require().Equal(1, resp.Count)
	s.Equal("C2", resp.Students[0].ContactID)
	s.Equal(1200.0, resp.Students[0].Outstanding)
}

func (s *ReminderServiceSuite) TestListUnpaidRejectsBadMonth() {
	_, err := s.service.ListUnpaidStudents(s.GetContext(), &dto.UnpaidStudentsRequest{Month: "May 2024"})
	s.True(ierr.IsValidation(err))
}

func (s *ReminderServiceSuite) TestSendReminderEmail() {
	s.addStudent("C1", "c1@example.com", "")

	resp, err := s.service.SendReminder(s.GetContext(), &dto.SendReminderRequest{CustomerID: "C1"})
	s.Require().NoError(err)
	s.True(resp.Success)
	s.Require().NotNil(resp.Email)
	s.Nil(resp.WhatsApp)

	sent := s.GetMocks().Email.Sent()
	s.Require().Len(sent, 1)
	s.Equal("c1@example.com", sent[0].ToAddress)
	s.Contains(sent[0].Subject, "May 2024")
	s.Contains(sent[0].Text, "Sunrise Academy")
}

func (s *ReminderServiceSuite) TestSendReminderBothChannels() {
	s.addStudent("C1", "c1@example.com", "9000000001")

	resp, err := s.service.SendReminder(s.GetContext(), &dto.SendReminderRequest{
		CustomerID: "C1",
		Month:      "2024-04",
		Channel:    types.ReminderChannelBoth,
	})
	s.Require().NoError(err)
	s.True(resp.Success)
	s.True(resp.Email.Success)
	s.True(resp.WhatsApp.Success)

	msgs := s.GetMocks().Messaging.Sent()
	s.Require().Len(msgs, 1)
	s.Contains(msgs[0].Body, "April 2024")
}

func (s *ReminderServiceSuite) TestSendReminderWithoutPhoneFails() {
	s.addStudent("C1", "c1@example.com", "")

	resp, err := s.service.SendReminder(s.GetContext(), &dto.SendReminderRequest{
		CustomerID: "C1",
		Channel:    types.ReminderChannelWhatsApp,
	})
	s.Require().NoError(err)
	s.False(resp.Success)
	s.NotEmpty(resp.Error)
	s.Empty(s.GetMocks().Messaging.Sent())
}

func (s *ReminderServiceSuite) TestSendReminderUnknownCustomer() {
	_, err := s.service.SendReminder(s.GetContext(), &dto.SendReminderRequest{CustomerID: "missing"})
	s.True(ierr.IsNotFound(err))
}

func (s *ReminderServiceSuite) TestBulkCountsEveryFailure() {
	const n, k = 10, 3
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("C%02d", i)
		addr := fmt.Sprintf("%s@example.com", id)
		s.addStudent(id, addr, "")
		ids = append(ids, id)
		if i < k {
			s.GetMocks().Email.FailFor[addr] = true
		}
	}

	resp, err := s.service.SendBulkReminders(s.GetContext(), &dto.SendBulkRemindersRequest{CustomerIDs: ids})
	s.Require().NoError(err)
	s.Equal(n, resp.Total)
	s.Equal(n-k, resp.Successful)
	s.Equal(k, resp.Failed)
	s.Len(resp.Results, n)
	s.Len(s.GetMocks().Email.Sent(), n-k)

	for _, r := range resp.Results {
		s.NotNil(r.Email, "every recipient is attempted")
	}
}

func (s *ReminderServiceSuite) TestBulkDefaultsToUnpaidStudents() {
	s.addStudent("C1", "c1@example.com", "")
	s.addStudent("C2", "c2@example.com", "")
	s.Require().NoError(s.GetStores().PaymentRepo.Create(s.GetContext(), &payment.Payment{
		PaymentID: "P1", CustomerID: "C1", Amount: 500, Date: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
	}))

	resp, err := s.service.SendBulkReminders(s.GetContext(), &dto.SendBulkRemindersRequest{})
	s.Require().NoError(err)
	s.Equal(1, resp.Total)
	s.Equal("C2", resp.Results[0].CustomerID)
}

func (s *ReminderServiceSuite) TestBulkUnknownIDsFail() {
	s.addStudent("C1", "c1@example.com", "")

	resp, err := s.service.SendBulkReminders(s.GetContext(), &dto.SendBulkRemindersRequest{CustomerIDs: []string{"C1", "ghost"}})
	s.Require().NoError(err)
	s.Equal(2, resp.Total)
	s.Equal(1, resp.Successful)
	s.Equal(1, resp.Failed)
	s.Equal("customer not found", resp.Results[1].Error)
}

func (s *ReminderServiceSuite) TestBulkWhatsAppIsSequential() {
	s.addStudent("C1", "c1@example.com", "9000000001")
	s.addStudent("C2", "c2@example.com", "9000000002")
	s.GetMocks().Messaging.FailFor["9000000002"] = true

	resp, err := s.service.SendBulkReminders(s.GetContext(), &dto.SendBulkRemindersRequest{
		CustomerIDs: []string{"C1", "C2"},
		Channel:     types.ReminderChannelWhatsApp,
	})
	s.Require().NoError(err)
	s.Equal(1, resp.Successful)
	s.Equal(1, resp.Failed)
	s.Len(s.GetMocks().Messaging.Sent(), 1)

	n, err := s.GetStores().NotificationRepo.Count(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Equal(1, n)
}
