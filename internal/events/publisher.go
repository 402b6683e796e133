package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/logging"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
)

// MappingChangedType is the event_type attribute of mapping change notifications
const MappingChangedType = "product.warehouse_mapping.changed"

// SNSPublisher is the part of the SNS client used here
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// MappingChanged is published after a mapping has been replaced
type MappingChanged struct {
	EventType string                  `json:"event_type"`
	ProductID int                     `json:"product_id"`
	Mapping   models.WarehouseMapping `json:"mapping"`
	ChangedBy string                  `json:"changed_by,omitempty"`
	ChangedAt time.Time               `json:"changed_at"`
}

// Publisher sends mapping events to an SNS topic
type Publisher struct {
	client   SNSPublisher
	topicARN string
}

// NewPublisher creates a publisher; a nil client or empty topic disables it
func NewPublisher(cfg aws.Config, topicARN string) *Publisher {
	if topicARN == "" {
		return &Publisher{}
	}
	return &Publisher{client: sns.NewFromConfig(cfg), topicARN: topicARN}
}

// NewPublisherWithClient wires an explicit client
func NewPublisherWithClient(client SNSPublisher, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

// Enabled reports whether events are sent anywhere
func (p *Publisher) Enabled() bool { return p != nil && p.client != nil && p.topicARN != "" }

// PublishMappingChanged notifies downstream consumers that a product's sourcing changed
func (p *Publisher) PublishMappingChanged(ctx context.Context, ev MappingChanged) error {
	if !p.Enabled() {
		return nil
	}
	ev.EventType = MappingChangedType
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(MappingChangedType)},
			"product_id": {DataType: aws.String("Number"), StringValue: aws.String(strconv.Itoa(ev.ProductID))},
		},
	}
	out, err := p.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("publish mapping event: %w", err)
	}
	logging.LogKV("info", "mapping event published", map[string]interface{}{
		"product_id": ev.ProductID,
		"message_id": aws.ToString(out.MessageId),
	})
	return nil
}
