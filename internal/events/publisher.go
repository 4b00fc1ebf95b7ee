package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
)

// Event subjects
const (
	SubjectProductCreated   = "catalog.product.created"
	SubjectProductUpdated   = "catalog.product.updated"
	SubjectProductDeleted   = "catalog.product.deleted"
	SubjectCategoryCreated  = "catalog.category.created"
	SubjectImportStarted    = "catalog.import.started"
	SubjectImportProgress   = "catalog.import.progress"
	SubjectImportCompleted  = "catalog.import.completed"
	SubjectImportFailed     = "catalog.import.failed"
)

// Event is the envelope all catalog events share
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Publisher emits catalog lifecycle events over NATS. A nil Publisher is
// safe to call, every method becomes a no-op, so the service runs without
// a broker in development.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS. An empty URL disables publishing.
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	if natsURL == "" {
		return nil, nil
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("catalog-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "catalog-events"),
	}, nil
}

// Close drains the NATS connection
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Drain()
}

func (p *Publisher) PublishProductCreated(ctx context.Context, product *models.Product) {
	p.publish(SubjectProductCreated, map[string]interface{}{
		"productId": product.ID.String(),
		"name":      product.Name,
		"slug":      product.Slug,
		"price":     product.Price,
	})
}

func (p *Publisher) PublishProductUpdated(ctx context.Context, product *models.Product, changedFields []string) {
	p.publish(SubjectProductUpdated, map[string]interface{}{
		"productId":     product.ID.String(),
		"name":          product.Name,
		"changedFields": changedFields,
	})
}

func (p *Publisher) PublishProductDeleted(ctx context.Context, productID uuid.UUID) {
	p.publish(SubjectProductDeleted, map[string]interface{}{
		"productId": productID.String(),
	})
}

func (p *Publisher) PublishCategoryCreated(ctx context.Context, category *models.Category) {
	p.publish(SubjectCategoryCreated, map[string]interface{}{
		"categoryId": category.ID.String(),
		"name":       category.Name,
		"slug":       category.Slug,
	})
}

func (p *Publisher) PublishImportStarted(ctx context.Context, totalRows int) {
	p.publish(SubjectImportStarted, map[string]interface{}{
		"totalRows": totalRows,
	})
}

func (p *Publisher) PublishImportProgress(ctx context.Context, progress models.ImportProgress) {
	p.publish(SubjectImportProgress, progress)
}

func (p *Publisher) PublishImportCompleted(ctx context.Context, summary *models.ImportSummary) {
	p.publish(SubjectImportCompleted, summary)
}

func (p *Publisher) PublishImportFailed(ctx context.Context, reason string) {
	p.publish(SubjectImportFailed, map[string]interface{}{
		"reason": reason,
	})
}

// publish fires the event without blocking the caller
func (p *Publisher) publish(subject string, data interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	event := Event{
		ID:        uuid.New().String(),
		Type:      subject,
		Source:    "catalog-service",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("Failed to encode event")
		return
	}

	go func() {
		if err := p.conn.Publish(subject, payload); err != nil {
			p.logger.WithError(err).WithField("subject", subject).Error("Failed to publish event")
		}
	}()
}
