package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/Replicator56/mini-crm/internal/infrastructure/logger"
	"github.com/Replicator56/mini-crm/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrClientNotFound is returned for any client id that does not exist
var ErrClientNotFound = shared.NewNotFoundError("Client not found.")

// ClientService handles client use cases
type ClientService struct {
	clients crm.ClientRepository
	logger  *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(clients crm.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{clients: clients, logger: logger}
}

// List returns clients matching query on name, email or phone, ordered by
// name. A blank query lists every client.
func (s *ClientService) List(ctx context.Context, query string) ([]*crm.Client, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "list")
	defer span.End()

	clients, err := s.clients.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	return clients, nil
}

// Get returns one client
func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*crm.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "failed to load client")
	}
	return client, nil
}

// Create validates and stores a new client
func (s *ClientService) Create(ctx context.Context, in crm.ClientInput) (*crm.Client, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "create")
	defer span.End()

	client, err := crm.NewClient(in)
	if err != nil {
		return nil, err
	}
	if err := s.clients.Create(ctx, client); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.log(ctx).Info("Client created", zap.String("client_id", client.ID.String()))
	return client, nil
}

// Update replaces all four fields of an existing client
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, in crm.ClientInput) (*crm.Client, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "update", attribute.String("client.id", id.String()))
	defer span.End()

	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "failed to load client")
	}
	if err := client.Replace(in); err != nil {
		return nil, err
	}
	if err := s.clients.Update(ctx, client); err != nil {
		telemetry.RecordError(span, err)
		return nil, s.mapError(err, "failed to update client")
	}

	s.log(ctx).Info("Client updated", zap.String("client_id", id.String()))
	return client, nil
}

// Delete removes the client and its appointment links
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "delete", attribute.String("client.id", id.String()))
	defer span.End()

	if err := s.clients.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return s.mapError(err, "failed to delete client")
	}

	s.log(ctx).Info("Client deleted", zap.String("client_id", id.String()))
	return nil
}

func (s *ClientService) mapError(err error, msg string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return ErrClientNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *ClientService) log(ctx context.Context) *zap.Logger {
	return logger.ForContext(ctx, s.logger)
}
