package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tangle-social/backend/internal/apperrors"
	"github.com/tangle-social/backend/internal/database"
	"github.com/tangle-social/backend/internal/logger"
	"github.com/tangle-social/backend/internal/models"
	"gorm.io/gorm"
)

type NotifyServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service

	sender   models.User
	receiver models.User
}

func (suite *NotifyServiceTestSuite) SetupTest() {
	logger.InitializeForTests()

	db, err := database.NewTestDB()
	require.NoError(suite.T(), err)
	suite.db = db
	suite.service = NewService(db, nil, false)

	suite.sender = suite.createUser("sender", "Sam Sender")
	suite.receiver = suite.createUser("receiver", "Riley Receiver")
}

func (suite *NotifyServiceTestSuite) createUser(username, displayName string) models.User {
	u := models.User{
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: displayName,
	}
	require.NoError(suite.T(), suite.db.Create(&u).Error)
	return u
}

func (suite *NotifyServiceTestSuite) publish(message string) models.Notification {
	suite.service.Publish(Event{
		SenderID:     suite.sender.ID,
		ReceiverID:   suite.receiver.ID,
		Message:      message,
		NavigateLink: "/users/" + suite.sender.ID,
	})
	var n models.Notification
	require.NoError(suite.T(), suite.db.Where("message = ?", message).First(&n).Error)
	return n
}

func (suite *NotifyServiceTestSuite) TestPublishPersistsNotification() {
	t := suite.T()

	n := suite.publish("Sam Sender sent you a friend request")
	assert.Equal(t, suite.sender.ID, n.SenderID)
	assert.Equal(t, suite.receiver.ID, n.ReceiverID)
	assert.Equal(t, "/users/"+suite.sender.ID, n.NavigateLink)
	assert.False(t, n.IsRead)
}

func (suite *NotifyServiceTestSuite) TestSelfEventSuppressed() {
	t := suite.T()

	suite.service.Publish(Event{
		SenderID:   suite.sender.ID,
		ReceiverID: suite.sender.ID,
		Message:    "you liked your own post",
	})

	var count int64
	suite.db.Model(&models.Notification{}).Count(&count)
	assert.Zero(t, count)
}

func (suite *NotifyServiceTestSuite) TestAsyncPublishDeliversBeforeClose() {
	t := suite.T()

	async := NewService(suite.db, nil, true)
	for i := 0; i < 5; i++ {
		async.Publish(Event{
			SenderID:   suite.sender.ID,
			ReceiverID: suite.receiver.ID,
			Message:    "hello",
		})
	}
	// Close drains the queue, so every event is on disk afterwards.
	async.Close()

	var count int64
	suite.db.Model(&models.Notification{}).Count(&count)
	assert.EqualValues(t, 5, count)

	// Close is safe to call again.
	async.Close()
}

func (suite *NotifyServiceTestSuite) TestListForUserNewestFirst() {
	t := suite.T()

	base := time.Now().UTC().Add(-time.Hour)
	for i, msg := range []string{"first", "second", "third"} {
		n := models.Notification{
			SenderID:   suite.sender.ID,
			ReceiverID: suite.receiver.ID,
			Message:    msg,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, suite.db.Create(&n).Error)
	}

	notifs, err := suite.service.ListForUser(suite.receiver.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, notifs, 3)
	assert.Equal(t, "third", notifs[0].Message)
	assert.Equal(t, "first", notifs[2].Message)
	assert.Equal(t, "Sam Sender", notifs[0].Sender.DisplayName, "sender preloaded")
}

func (suite *NotifyServiceTestSuite) TestListForUserScopedToReceiver() {
	t := suite.T()

	suite.publish("for receiver")

	notifs, err := suite.service.ListForUser(suite.sender.ID, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, notifs)
}

func (suite *NotifyServiceTestSuite) TestListForUserPagination() {
	t := suite.T()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		n := models.Notification{
			SenderID:   suite.sender.ID,
			ReceiverID: suite.receiver.ID,
			Message:    "ping",
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, suite.db.Create(&n).Error)
	}

	page, err := suite.service.ListForUser(suite.receiver.ID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = suite.service.ListForUser(suite.receiver.ID, 2, 4)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	// Out-of-range limits fall back to the default page size.
	page, err = suite.service.ListForUser(suite.receiver.ID, 500, 0)
	require.NoError(t, err)
	assert.Len(t, page, 5)
}

func (suite *NotifyServiceTestSuite) TestUnreadCountAndMarkRead() {
	t := suite.T()

	first := suite.publish("one")
	suite.publish("two")

	count, err := suite.service.UnreadCount(suite.receiver.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, suite.service.MarkRead(first.ID, suite.receiver.ID))

	count, err = suite.service.UnreadCount(suite.receiver.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Marking an already-read notification again is fine.
	require.NoError(t, suite.service.MarkRead(first.ID, suite.receiver.ID))
}

func (suite *NotifyServiceTestSuite) TestMarkReadScopedToReceiver() {
	t := suite.T()

	n := suite.publish("scoped")

	err := suite.service.MarkRead(n.ID, suite.sender.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	var reloaded models.Notification
	require.NoError(t, suite.db.First(&reloaded, "id = ?", n.ID).Error)
	assert.False(t, reloaded.IsRead)
}

func (suite *NotifyServiceTestSuite) TestMarkAllRead() {
	t := suite.T()

	suite.publish("one")
	suite.publish("two")

	require.NoError(t, suite.service.MarkAllRead(suite.receiver.ID))

	count, err := suite.service.UnreadCount(suite.receiver.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// No unread left is still success.
	require.NoError(t, suite.service.MarkAllRead(suite.receiver.ID))
}

func (suite *NotifyServiceTestSuite) TestDelete() {
	t := suite.T()

	n := suite.publish("delete me")

	// The sender cannot delete someone else's notification.
	err := suite.service.Delete(n.ID, suite.sender.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	require.NoError(t, suite.service.Delete(n.ID, suite.receiver.ID))

	err = suite.service.Delete(n.ID, suite.receiver.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func (suite *NotifyServiceTestSuite) TestGet() {
	t := suite.T()

	n := suite.publish("fetch me")

	got, err := suite.service.Get(n.ID, suite.receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, "fetch me", got.Message)

	_, err = suite.service.Get(n.ID, suite.sender.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestNotifyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(NotifyServiceTestSuite))
}
