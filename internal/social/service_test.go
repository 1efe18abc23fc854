package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tangle-social/backend/internal/apperrors"
	"github.com/tangle-social/backend/internal/database"
	"github.com/tangle-social/backend/internal/logger"
	"github.com/tangle-social/backend/internal/models"
	"github.com/tangle-social/backend/internal/notify"
	"gorm.io/gorm"
)

type SocialServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service
	ctx     context.Context

	alice models.User
	bob   models.User
	carol models.User
}

func (suite *SocialServiceTestSuite) SetupTest() {
	logger.InitializeForTests()

	db, err := database.NewTestDB()
	require.NoError(suite.T(), err)
	suite.db = db
	suite.ctx = context.Background()

	// Inline fan-out so notification rows exist as soon as the call returns.
	notifier := notify.NewService(db, nil, false)
	suite.service = NewService(db, notifier, nil)

	suite.alice = suite.createUser("alice", "Alice Example")
	suite.bob = suite.createUser("bob", "Bob Example")
	suite.carol = suite.createUser("carol", "Carol Example")
}

func (suite *SocialServiceTestSuite) createUser(username, displayName string) models.User {
	u := models.User{
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: displayName,
	}
	require.NoError(suite.T(), suite.db.Create(&u).Error)
	return u
}

func (suite *SocialServiceTestSuite) notificationsFor(userID string) []models.Notification {
	var notifs []models.Notification
	require.NoError(suite.T(), suite.db.Where("receiver_id = ?", userID).Find(&notifs).Error)
	return notifs
}

// =============================================================================
// FRIEND REQUEST TESTS
// =============================================================================

func (suite *SocialServiceTestSuite) TestSendFriendRequest() {
	t := suite.T()

	requestID, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, requestID)

	var request models.FriendRequest
	require.NoError(t, suite.db.First(&request, "id = ?", requestID).Error)
	assert.Equal(t, suite.alice.ID, request.SenderID)
	assert.Equal(t, suite.bob.ID, request.ReceiverID)

	notifs := suite.notificationsFor(suite.bob.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, suite.alice.ID, notifs[0].SenderID)
	assert.Contains(t, notifs[0].Message, "Alice Example")
}

func (suite *SocialServiceTestSuite) TestSendFriendRequestToSelf() {
	t := suite.T()

	_, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.alice.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidOperation, apperrors.CodeOf(err))

	var count int64
	suite.db.Model(&models.FriendRequest{}).Count(&count)
	assert.Zero(t, count, "self-request must leave no rows")
}

func (suite *SocialServiceTestSuite) TestSendFriendRequestDuplicatePending() {
	t := suite.T()

	_, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)

	_, err = suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))

	var count int64
	suite.db.Model(&models.FriendRequest{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func (suite *SocialServiceTestSuite) TestSendFriendRequestReverseDirectionAllowed() {
	t := suite.T()

	// Uniqueness is per ordered pair; a request in the other direction
	// is a distinct edge.
	_, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)

	_, err = suite.service.SendFriendRequest(suite.ctx, suite.bob.ID, suite.alice.ID)
	require.NoError(t, err)
}

func (suite *SocialServiceTestSuite) TestSendFriendRequestUnknownReceiver() {
	t := suite.T()

	_, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func (suite *SocialServiceTestSuite) TestAcceptFriendRequest() {
	t := suite.T()

	requestID, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)

	require.NoError(t, suite.service.AcceptFriendRequest(suite.ctx, requestID, suite.bob.ID))

	// Request row is gone; terminal states are represented by absence.
	var count int64
	suite.db.Model(&models.FriendRequest{}).Where("id = ?", requestID).Count(&count)
	assert.Zero(t, count)

	// Both directed rows exist.
	aToB, err := suite.service.IsFriend(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)
	bToA, err := suite.service.IsFriend(suite.ctx, suite.bob.ID, suite.alice.ID)
	require.NoError(t, err)
	assert.True(t, aToB)
	assert.True(t, bToA)

	// The original sender is told, with the acceptor's name.
	notifs := suite.notificationsFor(suite.alice.ID)
	require.Len(t, notifs, 1)
	assert.Contains(t, notifs[0].Message, "Bob Example")
}

func (suite *SocialServiceTestSuite) TestAcceptFriendRequestWrongAcceptor() {
	t := suite.T()

	requestID, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)

	// Carol is not the addressee.
	err = suite.service.AcceptFriendRequest(suite.ctx, requestID, suite.carol.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	// Request still pending, no friendship created.
	var count int64
	suite.db.Model(&models.FriendRequest{}).Where("id = ?", requestID).Count(&count)
	assert.EqualValues(t, 1, count)
	suite.db.Model(&models.Friendship{}).Count(&count)
	assert.Zero(t, count)
}

func (suite *SocialServiceTestSuite) TestRejectFriendRequest() {
	t := suite.T()

	requestID, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)
	bobNotifs := len(suite.notificationsFor(suite.bob.ID))

	require.NoError(t, suite.service.RejectFriendRequest(suite.ctx, requestID, suite.bob.ID))

	var count int64
	suite.db.Model(&models.FriendRequest{}).Count(&count)
	assert.Zero(t, count)
	suite.db.Model(&models.Friendship{}).Count(&count)
	assert.Zero(t, count, "reject must not create friendships")

	// No notification side effect on reject.
	assert.Len(t, suite.notificationsFor(suite.alice.ID), 0)
	assert.Len(t, suite.notificationsFor(suite.bob.ID), bobNotifs)
}

func (suite *SocialServiceTestSuite) TestRejectFriendRequestNotAddressee() {
	t := suite.T()

	requestID, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)

	err = suite.service.RejectFriendRequest(suite.ctx, requestID, suite.carol.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func (suite *SocialServiceTestSuite) TestCancelSentRequest() {
	t := suite.T()

	requestID, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)

	// Only the sender may cancel.
	err = suite.service.CancelSentRequest(suite.ctx, requestID, suite.bob.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	require.NoError(t, suite.service.CancelSentRequest(suite.ctx, requestID, suite.alice.ID))

	var count int64
	suite.db.Model(&models.FriendRequest{}).Count(&count)
	assert.Zero(t, count)
}

func (suite *SocialServiceTestSuite) TestUnfriend() {
	t := suite.T()

	requestID, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)
	require.NoError(t, suite.service.AcceptFriendRequest(suite.ctx, requestID, suite.bob.ID))

	require.NoError(t, suite.service.Unfriend(suite.ctx, suite.alice.ID, suite.bob.ID))

	aToB, _ := suite.service.IsFriend(suite.ctx, suite.alice.ID, suite.bob.ID)
	bToA, _ := suite.service.IsFriend(suite.ctx, suite.bob.ID, suite.alice.ID)
	assert.False(t, aToB)
	assert.False(t, bToA)

	// No one-sided rows survive.
	var count int64
	suite.db.Model(&models.Friendship{}).Count(&count)
	assert.Zero(t, count)
}

func (suite *SocialServiceTestSuite) TestUnfriendIsIdempotent() {
	t := suite.T()

	// Never friends at all.
	require.NoError(t, suite.service.Unfriend(suite.ctx, suite.alice.ID, suite.bob.ID))
	require.NoError(t, suite.service.Unfriend(suite.ctx, suite.alice.ID, suite.bob.ID))
}

// =============================================================================
// FOLLOW TESTS
// =============================================================================

func (suite *SocialServiceTestSuite) TestFollowUser() {
	t := suite.T()

	require.NoError(t, suite.service.FollowUser(suite.ctx, suite.alice.ID, suite.bob.ID))

	status, err := suite.service.GetFollowStatus(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)
	assert.True(t, status.IsFollowing)
	assert.False(t, status.IsFollowedBy)

	// Counters follow the edge write.
	var bob models.User
	require.NoError(t, suite.db.First(&bob, "id = ?", suite.bob.ID).Error)
	assert.Equal(t, 1, bob.FollowerCount)

	notifs := suite.notificationsFor(suite.bob.ID)
	require.Len(t, notifs, 1)
	assert.Contains(t, notifs[0].Message, "started following you")
}

func (suite *SocialServiceTestSuite) TestFollowSelf() {
	t := suite.T()

	err := suite.service.FollowUser(suite.ctx, suite.alice.ID, suite.alice.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidOperation, apperrors.CodeOf(err))

	var count int64
	suite.db.Model(&models.Follow{}).Count(&count)
	assert.Zero(t, count, "self-follow must leave no rows")
}

func (suite *SocialServiceTestSuite) TestFollowDuplicate() {
	t := suite.T()

	require.NoError(t, suite.service.FollowUser(suite.ctx, suite.alice.ID, suite.bob.ID))

	err := suite.service.FollowUser(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))

	var count int64
	suite.db.Model(&models.Follow{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func (suite *SocialServiceTestSuite) TestFollowIndependentOfFriendship() {
	t := suite.T()

	// Following without any friendship is fine.
	require.NoError(t, suite.service.FollowUser(suite.ctx, suite.alice.ID, suite.bob.ID))

	isFriend, err := suite.service.IsFriend(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)
	assert.False(t, isFriend)
}

func (suite *SocialServiceTestSuite) TestUnfollowUser() {
	t := suite.T()

	require.NoError(t, suite.service.FollowUser(suite.ctx, suite.alice.ID, suite.bob.ID))
	require.NoError(t, suite.service.UnfollowUser(suite.ctx, suite.alice.ID, suite.bob.ID))

	status, err := suite.service.GetFollowStatus(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)
	assert.False(t, status.IsFollowing)

	var bob models.User
	require.NoError(t, suite.db.First(&bob, "id = ?", suite.bob.ID).Error)
	assert.Equal(t, 0, bob.FollowerCount)
}

func (suite *SocialServiceTestSuite) TestUnfollowWithoutEdge() {
	t := suite.T()

	err := suite.service.UnfollowUser(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func (suite *SocialServiceTestSuite) TestFollowStatusBothDirections() {
	t := suite.T()

	require.NoError(t, suite.service.FollowUser(suite.ctx, suite.alice.ID, suite.bob.ID))
	require.NoError(t, suite.service.FollowUser(suite.ctx, suite.bob.ID, suite.alice.ID))

	status, err := suite.service.GetFollowStatus(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)
	assert.True(t, status.IsFollowing)
	assert.True(t, status.IsFollowedBy)
}

// =============================================================================
// PROJECTION TESTS
// =============================================================================

func (suite *SocialServiceTestSuite) TestListFollowersAndFollowing() {
	t := suite.T()

	require.NoError(t, suite.service.FollowUser(suite.ctx, suite.alice.ID, suite.carol.ID))
	require.NoError(t, suite.service.FollowUser(suite.ctx, suite.bob.ID, suite.carol.ID))

	followers, err := suite.service.ListFollowers(suite.ctx, suite.carol.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)

	ids := []string{followers[0].ID, followers[1].ID}
	assert.Contains(t, ids, suite.alice.ID)
	assert.Contains(t, ids, suite.bob.ID)
	assert.NotEmpty(t, followers[0].DisplayName, "projection joins display attributes")

	following, err := suite.service.ListFollowing(suite.ctx, suite.alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, suite.carol.ID, following[0].ID)
}

func (suite *SocialServiceTestSuite) TestListFriends() {
	t := suite.T()

	requestID, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)
	require.NoError(t, suite.service.AcceptFriendRequest(suite.ctx, requestID, suite.bob.ID))

	friends, err := suite.service.ListFriends(suite.ctx, suite.alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, suite.bob.ID, friends[0].ID)
	assert.Equal(t, "bob", friends[0].Username)
}

func (suite *SocialServiceTestSuite) TestListIncomingAndSentRequests() {
	t := suite.T()

	_, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.carol.ID)
	require.NoError(t, err)
	_, err = suite.service.SendFriendRequest(suite.ctx, suite.bob.ID, suite.carol.ID)
	require.NoError(t, err)

	incoming, err := suite.service.ListIncomingRequests(suite.ctx, suite.carol.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 2)
	assert.NotEmpty(t, incoming[0].Sender.Username)

	sent, err := suite.service.ListSentRequests(suite.ctx, suite.alice.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, suite.carol.ID, sent[0].ReceiverID)

	count, err := suite.service.PendingRequestCount(suite.ctx, suite.carol.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func (suite *SocialServiceTestSuite) TestRequestBetween() {
	t := suite.T()

	requestID, err := suite.service.SendFriendRequest(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)

	req, err := suite.service.RequestBetween(suite.ctx, suite.alice.ID, suite.bob.ID)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, requestID, req.ID)

	req, err = suite.service.RequestBetween(suite.ctx, suite.bob.ID, suite.alice.ID)
	require.NoError(t, err)
	assert.Nil(t, req)
}

func TestSocialServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SocialServiceTestSuite))
}
