package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/talhabaigg/tsd3pl/internal/models"
)

// AssignmentNotifier delivers assignment notifications to users.
type AssignmentNotifier struct {
	provider EmailProvider
	appURL   string
}

// NewAssignmentNotifier creates a notifier over the given email provider.
// appURL is used to build the issue link in the message body.
func NewAssignmentNotifier(provider EmailProvider, appURL string) *AssignmentNotifier {
	return &AssignmentNotifier{provider: provider, appURL: strings.TrimRight(appURL, "/")}
}

// NotifyAssignment tells the user an issue was assigned to them.
func (n *AssignmentNotifier) NotifyAssignment(ctx context.Context, user *models.User, issue *models.Issue) error {
	if user == nil || user.Email == "" {
		return fmt.Errorf("assignment target has no email address")
	}

	msg := EmailMessage{
		To:      []string{user.Email},
		Subject: fmt.Sprintf("Issue #%d assigned to you: %s", issue.ID, issue.Title),
		Body:    n.buildBody(user, issue),
	}
	if err := n.provider.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send assignment notification: %w", err)
	}
	return nil
}

func (n *AssignmentNotifier) buildBody(user *models.User, issue *models.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", user.Name)
	fmt.Fprintf(&b, "Issue #%d has been assigned to you.\n\n", issue.ID)
	fmt.Fprintf(&b, "Title:    %s\n", issue.Title)
	fmt.Fprintf(&b, "Type:     %s\n", issue.Type)
	fmt.Fprintf(&b, "Priority: %s\n", issue.Priority)
	fmt.Fprintf(&b, "Status:   %s\n", issue.Status)
	if issue.DueDate != nil {
		fmt.Fprintf(&b, "Due:      %s\n", issue.DueDate.Format(models.DueDateLayout))
	}
	if n.appURL != "" {
		fmt.Fprintf(&b, "\n%s/issues/%d\n", n.appURL, issue.ID)
	}
	return b.String()
}
