// ABOUTME: Notification group: a timed stream of log notifications sent to the caller.
// ABOUTME: Exposes a static command list; the stream stops early when the call is cancelled.

package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/2389/course-gateway/internal/packs"
)

// NotificationGroupName is the discovery name of the notification group.
const NotificationGroupName = "notification"

const (
	notificationLogger = "notification_stream"
	maxNotifications   = 1000
	streamTimeout      = 15 * time.Minute
)

var notificationShape = packs.Shape{
	Fields: []packs.Field{
		{Name: "interval", Type: packs.TypeNumber, Description: "Interval between notifications in seconds"},
		{Name: "count", Type: packs.TypeNumber, Description: "Number of notifications to send"},
		{Name: "caller", Type: packs.TypeString, Description: "Identifier of the caller to include in notifications"},
	},
	Required: []string{"interval", "count", "caller"},
}

type notificationRequest struct {
	Interval float64 `json:"interval"`
	Count    float64 `json:"count"`
	Caller   string  `json:"caller"`
}

// NotificationGroup registers the notification stream command.
type NotificationGroup struct {
	// sleep waits between notifications; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

var _ packs.CommandLister = (*NotificationGroup)(nil)

// NewNotificationGroup creates the group.
func NewNotificationGroup() *NotificationGroup {
	return &NotificationGroup{sleep: sleepContext}
}

// Name implements packs.Group.
func (g *NotificationGroup) Name() string {
	return NotificationGroupName
}

// Commands implements packs.CommandLister.
func (g *NotificationGroup) Commands() []packs.Command {
	return []packs.Command{{
		Descriptor: packs.Descriptor{
			Name:        "start-notification-stream",
			Description: "Sends a stream of notifications with configurable count and interval",
			Input:       notificationShape,
			Timeout:     streamTimeout,
		},
		Handler: g.start,
	}}
}

func (g *NotificationGroup) start(ctx context.Context, call *packs.CallContext, args json.RawMessage) (packs.Result, error) {
	var req notificationRequest
	if err := packs.DecodeArgs(args, notificationShape, &req); err != nil {
		return nil, err
	}
	if req.Count < 0 || req.Count > maxNotifications || req.Count != float64(int(req.Count)) {
		return nil, packs.InvalidArgument("count", "expected a whole number between 0 and %d, got %v", maxNotifications, req.Count)
	}
	if req.Interval < 0 {
		return nil, packs.InvalidArgument("interval", "must not be negative, got %v", req.Interval)
	}

	count := int(req.Count)
	wait := time.Duration(req.Interval * float64(time.Second))
	for i := range count {
		msg := fmt.Sprintf("Notification %d/%d from caller: %s", i+1, count, req.Caller)
		if err := call.Notify(ctx, "info", notificationLogger, msg); err != nil {
			return nil, err
		}
		if i < count-1 {
			if err := g.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
	}

	interval := strconv.FormatFloat(req.Interval, 'f', -1, 64)
	return packs.TextResult(fmt.Sprintf("Sent %d notifications with %ss interval for caller: %s", count, interval, req.Caller)), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
