package service

import (
	"context"
	"encoding/json"
	"log"

	"agent-chatbot-be/internal/dto"
	"agent-chatbot-be/internal/repository/contract"
	"agent-chatbot-be/internal/repository/specification"
	"agent-chatbot-be/pkg/indexer"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	contents  contract.ContentRepository
	indexer   *indexer.Indexer
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	contents contract.ContentRepository,
	ix *indexer.Indexer,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		contents:  contents,
		indexer:   ix,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedContentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing content embedding for ContentId: %s", payload.ContentId)

	// Re-read the unit so the vector always reflects the latest write, not
	// the state at enqueue time.
	unit, err := cs.contents.FindOne(ctx, specification.ByID{ID: payload.ContentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get content unit %s: %v", payload.ContentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if unit == nil {
		log.Printf("[ERROR] Content unit not found: %s", payload.ContentId)
		msg.Ack() // Unit removed before processing? Ack.
		return
	}

	if err := cs.indexer.IngestUnit(ctx, unit); err != nil {
		log.Printf("[ERROR] Failed to ingest content unit %s: %v", payload.ContentId, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Content unit indexed: %s", payload.ContentId)
	msg.Ack()
}
