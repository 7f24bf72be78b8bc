package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/SimonStenelid/X-team/internal/content"
)

func TestNewNotifier_DisabledReturnsNil(t *testing.T) {
	if n := NewNotifier(false, "xoxb-token", "#ops"); n != nil {
		t.Error("disabled notifier must be nil")
	}
	if n := NewNotifier(true, "", "#ops"); n != nil {
		t.Error("missing token must yield nil")
	}
	if n := NewNotifier(true, "xoxb-token", ""); n != nil {
		t.Error("missing channel must yield nil")
	}
	if n := NewNotifier(true, "xoxb-token", "#ops"); n == nil {
		t.Error("complete configuration must yield a notifier")
	}
}

func TestNilNotifier_IsSafe(t *testing.T) {
	var n *Notifier
	ctx := context.Background()

	// None of these may panic or error.
	n.PostSuccess(ctx, content.TypeNews, "post-1", 9.0)
	n.RunAborted(ctx, "no valid content")
	n.RunFailed(ctx, errors.New("boom"))
}
