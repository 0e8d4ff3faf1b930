package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talhabaigg/tsd3pl/internal/models"
)

type captureProvider struct {
	sent []EmailMessage
}

func (c *captureProvider) Send(_ context.Context, msg EmailMessage) error {
	c.sent = append(c.sent, msg)
	return nil
}

func TestNotifyAssignment(t *testing.T) {
	provider := &captureProvider{}
	notifier := NewAssignmentNotifier(provider, "https://issues.example.com/")

	user := &models.User{ID: 4, Name: "Dana", Email: "dana@example.com"}
	issue := &models.Issue{
		ID:       17,
		Type:     "safety",
		Title:    "Guard rail loose",
		Priority: models.PriorityCritical,
		Status:   models.StatusActive,
	}

	require.NoError(t, notifier.NotifyAssignment(context.Background(), user, issue))
	require.Len(t, provider.sent, 1)

	msg := provider.sent[0]
	assert.Equal(t, []string{"dana@example.com"}, msg.To)
	assert.Contains(t, msg.Subject, "Issue #17")
	assert.Contains(t, msg.Body, "Guard rail loose")
	assert.Contains(t, msg.Body, "https://issues.example.com/issues/17")
}

func TestNotifyAssignmentNoEmail(t *testing.T) {
	notifier := NewAssignmentNotifier(&captureProvider{}, "")
	err := notifier.NotifyAssignment(context.Background(), &models.User{Name: "Nobody"}, &models.Issue{ID: 1})
	require.Error(t, err)
}
