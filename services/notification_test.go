package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partypass-api/models"
)

func TestNotificationFromActivityMapping(t *testing.T) {
	activity := func(at models.ActivityType) *models.Activity {
		return &models.Activity{
			UserID:  "user-1",
			Type:    at,
			Message: "something happened",
			EventID: "event-1",
		}
	}

	tests := []struct {
		activityType models.ActivityType
		wantType     models.NotificationType
		wantPriority models.NotificationPriority
		wantURL      string
		expires      bool
	}{
		{models.ActivityEventCreated, models.NotificationSuccess, models.PriorityMedium, "/events/event-1", false},
		{models.ActivityEventUpdated, models.NotificationInfo, models.PriorityLow, "/events/event-1", true},
		{models.ActivityEventCancelled, models.NotificationWarning, models.PriorityHigh, "/events/event-1", false},
		{models.ActivityEventDeleted, models.NotificationInfo, models.PriorityLow, "", true},
		{models.ActivityGuestAdded, models.NotificationInfo, models.PriorityLow, "/events/event-1/guests", true},
		{models.ActivityGuestResponded, models.NotificationSuccess, models.PriorityMedium, "/events/event-1/guests", false},
		{models.ActivityGuestRemoved, models.NotificationInfo, models.PriorityLow, "", true},
		{models.ActivityContactAdded, models.NotificationInfo, models.PriorityLow, "/contacts", true},
		{models.ActivityContactUpdated, models.NotificationInfo, models.PriorityLow, "/contacts", true},
		{models.ActivityContactRemoved, models.NotificationInfo, models.PriorityLow, "/contacts", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.activityType), func(t *testing.T) {
			n, err := NotificationFromActivity(activity(tt.activityType))
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, n.Type)
			assert.Equal(t, tt.wantPriority, n.Priority)
			assert.Equal(t, tt.wantURL, n.ActionURL)
			assert.Equal(t, "user-1", n.UserID)
			assert.Equal(t, "something happened", n.Message)
			assert.NotEmpty(t, n.Title)
			if tt.expires {
				assert.NotNil(t, n.ExpiresAt)
			} else {
				assert.Nil(t, n.ExpiresAt)
			}
		})
	}
}

func TestNotificationFromActivityUnknownType(t *testing.T) {
	_, err := NotificationFromActivity(&models.Activity{Type: "payment_received"})
	assert.Error(t, err)
}
