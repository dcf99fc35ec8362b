package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type NotificationType string

const (
	NotifyProjectCreated      NotificationType = "project_created"
	NotifyProjectDeleted      NotificationType = "project_deleted"
	NotifyMemberAdded         NotificationType = "member_added"
	NotifyMemberRoleChanged   NotificationType = "member_role_changed"
	NotifyMemberRemoved       NotificationType = "member_removed"
	NotifyConnectionUnhealthy NotificationType = "connection_unhealthy"
)

type NotificationMessage struct {
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// ProjectEvent describes a change to a project or its membership
type ProjectEvent struct {
	Type        NotificationType
	ProjectID   int64
	ProjectName string
	Actor       string // email of the caller
	Subject     string // email of the affected member, if any
	Role        string
}

type Notifier interface {
	Send(ctx context.Context, msg *NotificationMessage) error
	SendProjectEvent(ctx context.Context, event *ProjectEvent) error
}

// New builds the notifier for provider; anything but an enabled lark webhook only logs
func New(provider, webhookURL string, enabled bool, logger *zap.Logger) Notifier {
	logNotifier := NewLogNotifier(logger)
	if !enabled || provider != "lark" || webhookURL == "" {
		return logNotifier
	}
	return NewMultiNotifier(logger, logNotifier, NewLarkNotifier(webhookURL, enabled, logger))
}

// ProjectEventMessage renders an event as a card message
func ProjectEventMessage(event *ProjectEvent) *NotificationMessage {
	var title, color string

	switch event.Type {
	case NotifyProjectCreated:
		title = "Project created"
		color = "green"
	case NotifyProjectDeleted:
		title = "Project deleted"
		color = "red"
	case NotifyMemberAdded:
		title = "Member added"
		color = "blue"
	case NotifyMemberRoleChanged:
		title = "Member role changed"
		color = "blue"
	case NotifyMemberRemoved:
		title = "Member removed"
		color = "orange"
	case NotifyConnectionUnhealthy:
		title = "Database connection unhealthy"
		color = "red"
	default:
		title = "Project notification"
		color = "grey"
	}

	content := fmt.Sprintf("**Project**: %s (ID: %d)\n**By**: %s", event.ProjectName, event.ProjectID, event.Actor)
	if event.Subject != "" {
		content += fmt.Sprintf("\n**Member**: %s", event.Subject)
	}
	if event.Role != "" {
		content += fmt.Sprintf("\n**Role**: %s", event.Role)
	}

	return &NotificationMessage{
		Type:      event.Type,
		Title:     title,
		Content:   content,
		Timestamp: time.Now(),
		Extra: map[string]interface{}{
			"project_id":   event.ProjectID,
			"project_name": event.ProjectName,
			"color":        color,
		},
	}
}

// LarkNotifier posts interactive cards to a Lark webhook
type LarkNotifier struct {
	webhookURL string
	enabled    bool
	logger     *zap.Logger
	client     *http.Client
}

func NewLarkNotifier(webhookURL string, enabled bool, logger *zap.Logger) *LarkNotifier {
	return &LarkNotifier{
		webhookURL: webhookURL,
		enabled:    enabled,
		logger:     logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (n *LarkNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	if !n.enabled {
		n.logger.Debug("notification disabled, skip")
		return nil
	}

	if n.webhookURL == "" {
		n.logger.Warn("lark webhook url not configured")
		return nil
	}

	jsonData, err := json.Marshal(n.buildLarkMessage(msg))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lark api returned status %d", resp.StatusCode)
	}

	n.logger.Info("lark notification sent",
		zap.String("type", string(msg.Type)),
		zap.String("title", msg.Title))

	return nil
}

func (n *LarkNotifier) SendProjectEvent(ctx context.Context, event *ProjectEvent) error {
	return n.Send(ctx, ProjectEventMessage(event))
}

func (n *LarkNotifier) buildLarkMessage(msg *NotificationMessage) map[string]interface{} {
	color := "grey"
	if c, ok := msg.Extra["color"].(string); ok {
		color = c
	}

	return map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": msg.Title,
				},
				"template": color,
			},
			"elements": []interface{}{
				map[string]interface{}{
					"tag": "div",
					"text": map[string]interface{}{
						"tag":     "lark_md",
						"content": msg.Content,
					},
				},
				map[string]interface{}{
					"tag": "div",
					"text": map[string]interface{}{
						"tag":     "plain_text",
						"content": fmt.Sprintf("Time: %s", msg.Timestamp.Format("2006-01-02 15:04:05")),
					},
				},
			},
		},
	}
}

// MultiNotifier fans out to every notifier and keeps going on failure
type MultiNotifier struct {
	notifiers []Notifier
	logger    *zap.Logger
}

func NewMultiNotifier(logger *zap.Logger, notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{
		notifiers: notifiers,
		logger:    logger,
	}
}

func (m *MultiNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, msg); err != nil {
			m.logger.Error("send notification failed", zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

func (m *MultiNotifier) SendProjectEvent(ctx context.Context, event *ProjectEvent) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.SendProjectEvent(ctx, event); err != nil {
			m.logger.Error("send project notification failed", zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

// LogNotifier only writes notifications to the log
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger,
	}
}

func (n *LogNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	n.logger.Info("notification",
		zap.String("type", string(msg.Type)),
		zap.String("title", msg.Title),
		zap.String("content", msg.Content),
		zap.Any("extra", msg.Extra))
	return nil
}

func (n *LogNotifier) SendProjectEvent(ctx context.Context, event *ProjectEvent) error {
	n.logger.Info("project notification",
		zap.String("type", string(event.Type)),
		zap.Int64("project_id", event.ProjectID),
		zap.String("project_name", event.ProjectName),
		zap.String("actor", event.Actor),
		zap.String("member", event.Subject),
		zap.String("role", event.Role))
	return nil
}
