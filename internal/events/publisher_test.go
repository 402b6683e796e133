package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestPublishMappingChanged(t *testing.T) {
	fake := &fakeSNS{}
	p := NewPublisherWithClient(fake, "arn:aws:sns:eu-central-1:1:mappings")
	err := p.PublishMappingChanged(context.Background(), MappingChanged{
		ProductID: 12,
		Mapping:   models.WarehouseMapping{Type: models.StrategyZonalOnly, PrimaryWarehouses: []int{1}},
		ChangedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.inputs) != 1 {
		t.Fatalf("expected one publish, got %d", len(fake.inputs))
	}
	in := fake.inputs[0]
	if aws.ToString(in.MessageAttributes["product_id"].StringValue) != "12" {
		t.Fatalf("unexpected attributes %+v", in.MessageAttributes)
	}
	var ev MappingChanged
	if err := json.Unmarshal([]byte(aws.ToString(in.Message)), &ev); err != nil {
		t.Fatalf("message is not JSON: %v", err)
	}
	if ev.EventType != MappingChangedType || ev.Mapping.Type != models.StrategyZonalOnly {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestPublishMappingChanged_DisabledAndErrors(t *testing.T) {
	var disabled *Publisher
	if err := disabled.PublishMappingChanged(context.Background(), MappingChanged{}); err != nil {
		t.Fatalf("disabled publisher must be a no-op, got %v", err)
	}
	p := NewPublisherWithClient(&fakeSNS{err: errors.New("throttled")}, "arn")
	if err := p.PublishMappingChanged(context.Background(), MappingChanged{ProductID: 1}); err == nil {
		t.Fatal("expected publish error")
	}
}
