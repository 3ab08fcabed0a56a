package notifications

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/arc-self/tracehub/internal/adapters/mailer"
	"github.com/arc-self/tracehub/internal/repository/db"
)

func toError(v any) error {
	if v == nil {
		return nil
	}
	return v.(error)
}

// MockQuerier embeds db.Querier so it satisfies the full (generated)
// interface without restating every method; only the methods Publish and
// DispatchEmails actually call are recorded through the controller.
type MockQuerier struct {
	db.Querier
	ctrl     *gomock.Controller
	recorder *MockQuerierRecorder
}

type MockQuerierRecorder struct {
	mock *MockQuerier
}

func NewMockQuerier(ctrl *gomock.Controller) *MockQuerier {
	m := &MockQuerier{ctrl: ctrl}
	m.recorder = &MockQuerierRecorder{mock: m}
	return m
}

func (m *MockQuerier) EXPECT() *MockQuerierRecorder {
	return m.recorder
}

func (m *MockQuerier) GetNotificationPreference(ctx context.Context, arg db.GetNotificationPreferenceParams) (bool, error) {
	ret := m.ctrl.Call(m, "GetNotificationPreference", ctx, arg)
	return ret[0].(bool), toError(ret[1])
}
func (mr *MockQuerierRecorder) GetNotificationPreference(ctx, arg any) *gomock.Call {
	return mr.mock.ctrl.RecordCall(mr.mock, "GetNotificationPreference", ctx, arg)
}

func (m *MockQuerier) InsertNotification(ctx context.Context, arg db.InsertNotificationParams) (db.Notification, error) {
	ret := m.ctrl.Call(m, "InsertNotification", ctx, arg)
	return ret[0].(db.Notification), toError(ret[1])
}
func (mr *MockQuerierRecorder) InsertNotification(ctx, arg any) *gomock.Call {
	return mr.mock.ctrl.RecordCall(mr.mock, "InsertNotification", ctx, arg)
}

func (m *MockQuerier) ListNotificationsForUser(ctx context.Context, arg db.ListNotificationsForUserParams) ([]db.Notification, error) {
	ret := m.ctrl.Call(m, "ListNotificationsForUser", ctx, arg)
	ret0, _ := ret[0].([]db.Notification)
	return ret0, toError(ret[1])
}
func (mr *MockQuerierRecorder) ListNotificationsForUser(ctx, arg any) *gomock.Call {
	return mr.mock.ctrl.RecordCall(mr.mock, "ListNotificationsForUser", ctx, arg)
}

func (m *MockQuerier) MarkNotificationDelivered(ctx context.Context, id pgtype.UUID) error {
	ret := m.ctrl.Call(m, "MarkNotificationDelivered", ctx, id)
	return toError(ret[0])
}
func (mr *MockQuerierRecorder) MarkNotificationDelivered(ctx, id any) *gomock.Call {
	return mr.mock.ctrl.RecordCall(mr.mock, "MarkNotificationDelivered", ctx, id)
}

type MockMailer struct {
	ctrl     *gomock.Controller
	recorder *MockMailerRecorder
}

type MockMailerRecorder struct {
	mock *MockMailer
}

func NewMockMailer(ctrl *gomock.Controller) *MockMailer {
	m := &MockMailer{ctrl: ctrl}
	m.recorder = &MockMailerRecorder{mock: m}
	return m
}

func (m *MockMailer) EXPECT() *MockMailerRecorder {
	return m.recorder
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) (string, error) {
	ret := m.ctrl.Call(m, "Send", ctx, msg)
	return ret[0].(string), toError(ret[1])
}
func (mr *MockMailerRecorder) Send(ctx, msg any) *gomock.Call {
	return mr.mock.ctrl.RecordCall(mr.mock, "Send", ctx, msg)
}

const testOrgID = "11111111-1111-1111-1111-111111111111"
const testUserID = "22222222-2222-2222-2222-222222222222"

func TestPublish_SkipsDisabledChannel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mq := NewMockQuerier(ctrl)
	mq.EXPECT().GetNotificationPreference(gomock.Any(), gomock.Any()).Return(true, nil)
	mq.EXPECT().GetNotificationPreference(gomock.Any(), gomock.Any()).Return(false, nil)
	mq.EXPECT().InsertNotification(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, arg db.InsertNotificationParams) (db.Notification, error) {
			return db.Notification{ID: arg.ID, Channel: arg.Channel, Status: arg.Status}, nil
		})

	svc := NewService(mq, NewMockMailer(ctrl), zap.NewNop())
	notifs, err := svc.Publish(context.Background(), PublishInput{
		OrganizationID: testOrgID, UserID: testUserID, EventType: "shipment_departed",
	})
	require.NoError(t, err)
	assert.Len(t, notifs, 1)
	assert.Equal(t, ChannelInApp, notifs[0].Channel)
}

func TestPublish_InAppDeliveredImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mq := NewMockQuerier(ctrl)
	mq.EXPECT().GetNotificationPreference(gomock.Any(), gomock.Any()).Return(true, nil).Times(2)
	mq.EXPECT().InsertNotification(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, arg db.InsertNotificationParams) (db.Notification, error) {
			return db.Notification{ID: arg.ID, Channel: arg.Channel, Status: arg.Status}, nil
		}).Times(2)

	svc := NewService(mq, NewMockMailer(ctrl), zap.NewNop())
	notifs, err := svc.Publish(context.Background(), PublishInput{
		OrganizationID: testOrgID, UserID: testUserID, EventType: "shipment_departed",
	})
	require.NoError(t, err)
	for _, n := range notifs {
		if n.Channel == ChannelInApp {
			assert.Equal(t, "delivered", n.Status)
		}
		if n.Channel == ChannelEmail {
			assert.Equal(t, "pending", n.Status)
		}
	}
}

func TestDispatchEmails_SendsPendingEmailNotificationsOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uid, err := parseUUID(testUserID)
	require.NoError(t, err)
	mq := NewMockQuerier(ctrl)
	mq.EXPECT().ListNotificationsForUser(gomock.Any(), gomock.Any()).Return([]db.Notification{
		{ID: uid, Channel: ChannelEmail, Status: "pending", EventType: "shipment_departed", Title: "t", Body: "b"},
		{ID: uid, Channel: ChannelInApp, Status: "delivered"},
		{ID: uid, Channel: ChannelEmail, Status: "sent"},
	}, nil)
	mq.EXPECT().MarkNotificationDelivered(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	mm := NewMockMailer(ctrl)
	mm.EXPECT().Send(gomock.Any(), gomock.Any()).Return("msg-id", nil).Times(1)

	svc := NewService(mq, mm, zap.NewNop())
	err = svc.DispatchEmails(context.Background(), testUserID, "buyer@example.com")
	require.NoError(t, err)
}
