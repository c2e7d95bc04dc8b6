package ingest

import (
	"context"
	"encoding/json"
	"log"

	"github.com/IBM/sarama"

	"cybertrack/types"
)

// ArticleHandler processes one article delivered over Kafka. Returning an
// error leaves the message unmarked so the broker redelivers it; this is
// how store outages avoid dropping articles.
type ArticleHandler func(ctx context.Context, article *types.Article) error

// Consumer reads scraped-article JSON messages from a Kafka topic and
// hands them to the deduplication pipeline.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler ArticleHandler
	topic   string
	groupID string
	ready   chan bool
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler ArticleHandler
}

// NewConsumer creates a consumer-group reader for scraped articles.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		handler: cfg.Handler,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		ready:   make(chan bool),
	}, nil
}

// Start begins consuming. It returns once the consumer group session is
// established; consumption continues until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &groupHandler{articleHandler: c.handler, ready: c.ready}

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
				if err == context.Canceled {
					log.Println("Kafka consumer context canceled")
					return
				}
				log.Printf("Error from Kafka consumer: %v", err)
			}
			if ctx.Err() != nil {
				return
			}
			handler.ready = make(chan bool)
		}
	}()

	<-c.ready
	log.Printf("Kafka consumer started (group: %s, topic: %s)", c.groupID, c.topic)

	go func() {
		for err := range c.group.Errors() {
			log.Printf("Kafka consumer error: %v", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the consumer.
func (c *Consumer) Close() error {
	log.Println("Closing Kafka consumer...")
	return c.group.Close()
}

// groupHandler implements sarama.ConsumerGroupHandler.
type groupHandler struct {
	articleHandler ArticleHandler
	ready          chan bool
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			var article types.Article
			if err := json.Unmarshal(message.Value, &article); err != nil {
				log.Printf("Skipping malformed article message at offset %d: %v", message.Offset, err)
				session.MarkMessage(message, "")
				continue
			}

			if err := h.articleHandler(session.Context(), &article); err != nil {
				// Unmarked: broker redelivers after the store recovers.
				log.Printf("Failed to process article %s: %v", article.URL, err)
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
