package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/SketchShifter/vidtube_backend/internal/config"
	"github.com/SketchShifter/vidtube_backend/internal/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	sqsiface.SQSAPI
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessageWithContext(_ aws.Context, in *sqs.SendMessageInput, _ ...request.Option) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSPublisher(t *testing.T) {
	fake := &fakeSQS{}
	p := NewSQSPublisher(fake, "https://sqs.example/queue")

	parentID := models.NewID()
	comment := &models.Comment{ID: models.NewID(), ParentCommentID: &parentID, OwnerID: models.NewID()}
	comment.SetTarget(models.VideoTarget(models.NewID()))

	event := NewCommentEvent(CommentReplied, comment, comment.OwnerID)
	event.RecipientID = "recipient"
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "https://sqs.example/queue", aws.StringValue(in.QueueUrl))
	assert.Equal(t, "comment.replied", aws.StringValue(in.MessageAttributes["type"].StringValue))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.StringValue(in.MessageBody)), &body))
	assert.Equal(t, comment.ID, body["commentId"])
	assert.Equal(t, parentID, body["parentCommentId"])
	assert.Equal(t, "video", body["targetKind"])
	assert.Equal(t, "recipient", body["recipientId"])
}

func TestSQSPublisherError(t *testing.T) {
	fake := &fakeSQS{err: errors.New("throttled")}
	p := NewSQSPublisher(fake, "q")

	err := p.Publish(context.Background(), CommentEvent{Type: CommentDeleted})
	assert.Error(t, err)
}

func TestNewPublisherWithoutQueue(t *testing.T) {
	p, err := NewPublisher(&config.Config{})
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), CommentEvent{}))
}
