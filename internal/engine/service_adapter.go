package engine

import (
	"tg-agegate/internal/gateway"
	"tg-agegate/internal/models"
	"tg-agegate/internal/service"
)

type serviceStores struct{}

func (serviceStores) GetPolicy(groupID int64) (*models.GroupPolicy, error) {
	return service.GetPolicy(groupID)
}

func (serviceStores) IsExempt(userID int64) (bool, error) {
	return service.IsExempt(userID)
}

// NewFromServices wires an engine to the process-wide stores.
func NewFromServices(gw gateway.Gateway) *Engine {
	return New(gw, serviceStores{}, serviceStores{}, service.LogChannelID, service.RecordRemoval)
}
