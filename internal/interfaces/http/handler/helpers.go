package handler

import (
	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/middleware"
	"github.com/google/uuid"
)

func errorNotice(bindErr error) flash.Notice {
	return flash.Error(middleware.ValidationMessage(bindErr))
}

// parseID parses a path id; ok is false for anything but a UUID
func parseID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	return id, err == nil && id != uuid.Nil
}
