package service

import (
	"testing"

	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/testutil"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type NotificationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service NotificationService
}

func TestNotificationService(t *testing.T) {
	suite.Run(t, new(NotificationServiceSuite))
}

func (s *NotificationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewNotificationService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *NotificationServiceSuite) TestCreateRecordsActor() {
	s.SetContext(testutil.SetupContext("usr_admin", types.RoleAdmin))

	n, err := s.service.Create(s.GetContext(), types.NotificationTypeSync, "Sync completed", map[string]string{"customers": "3"})
	s.Require().NoError(err)
	s.NotEmpty(n.ID)
	s.Equal("usr_admin", n.Actor)
	s.False(n.Read)
	s.Equal("3", n.Metadata["customers"])
}

func (s *NotificationServiceSuite) TestListAndMarkRead() {
	var ids []string
	for _, msg := range []string{"first", "second", "third"} {
		n, err := s.service.Create(s.GetContext(), types.NotificationTypePayment, msg, nil)
		s.Require().NoError(err)
		ids = append(ids, n.ID)
	}

	resp, err := s.service.List(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Len(resp.Items, 3)
	s.Equal(3, resp.Pagination.Total)
	s.Equal(3, resp.Unread)

	s.Require().NoError(s.service.MarkRead(s.GetContext(), ids[0]))

	unreadOnly := types.NewNotificationFilter()
	unreadOnly.UnreadOnly = true
	resp, err = s.service.List(s.GetContext(), unreadOnly)
	s.Require().NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(2, resp.Unread)

	marked, err := s.service.MarkAllRead(s.GetContext())
	s.Require().NoError(err)
	s.Equal(2, marked.Updated)

	resp, err = s.service.List(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Equal(0, resp.Unread)
}

func (s *NotificationServiceSuite) TestListRejectsBadPaging() {
	filter := types.NewNotificationFilter()
	filter.Limit = lo.ToPtr(0)

	_, err := s.service.List(s.GetContext(), filter)
	s.True(ierr.IsValidation(err))
}

func (s *NotificationServiceSuite) TestMarkReadUnknown() {
	err := s.service.MarkRead(s.GetContext(), "ntf_missing")
	s.True(ierr.IsNotFound(err))
}
