package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/config"
	"github.com/SketchShifter/vidtube_backend/internal/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

// Type イベントの種類
type Type string

const (
	CommentCreated Type = "comment.created"
	CommentReplied Type = "comment.replied"
	CommentDeleted Type = "comment.deleted"
)

// CommentEvent コメントに関する通知イベント
type CommentEvent struct {
	Type            Type              `json:"type"`
	CommentID       string            `json:"commentId"`
	ParentCommentID *string           `json:"parentCommentId,omitempty"`
	TargetKind      models.TargetKind `json:"targetKind"`
	TargetID        string            `json:"targetId"`
	ActorID         string            `json:"actorId"`
	RecipientID     string            `json:"recipientId,omitempty"`
	OccurredAt      time.Time         `json:"occurredAt"`
}

// NewCommentEvent コメントからイベントを作成
func NewCommentEvent(typ Type, comment *models.Comment, actorID string) CommentEvent {
	return CommentEvent{
		Type:            typ,
		CommentID:       comment.ID,
		ParentCommentID: comment.ParentCommentID,
		TargetKind:      comment.TargetKind,
		TargetID:        comment.TargetID,
		ActorID:         actorID,
		OccurredAt:      time.Now().UTC(),
	}
}

// Publisher イベントの送信先
type Publisher interface {
	Publish(ctx context.Context, event CommentEvent) error
}

// NopPublisher 何もしないPublisher
type NopPublisher struct{}

// Publish 何もしない
func (NopPublisher) Publish(context.Context, CommentEvent) error {
	return nil
}

// SQSPublisher Amazon SQSにイベントを送信する
type SQSPublisher struct {
	client   sqsiface.SQSAPI
	queueURL string
}

// NewSQSPublisher SQSPublisherを作成
func NewSQSPublisher(client sqsiface.SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

// Publish イベントをJSONにしてキューに送信
func (p *SQSPublisher) Publish(ctx context.Context, event CommentEvent) error {
	messageJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// SQSにメッセージを送信
	_, err = p.client.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(messageJSON)),
		MessageAttributes: map[string]*sqs.MessageAttributeValue{
			"type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Type)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SQSへの送信に失敗しました: %w", err)
	}
	return nil
}

// NewPublisher 設定に応じてPublisherを作成。キューURLが空ならNopPublisher
func NewPublisher(cfg *config.Config) (Publisher, error) {
	if cfg.AWS.CommentEventsQueueURL == "" {
		return NopPublisher{}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("AWSセッションの作成に失敗しました: %w", err)
	}

	return NewSQSPublisher(sqs.New(sess), cfg.AWS.CommentEventsQueueURL), nil
}
