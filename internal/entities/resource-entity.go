package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"github.com/abikoy/ddu-rims/pkg/types"
)

// Resource lifecycle states.
const (
	ResourceStatusUnassigned  = "unassigned"
	ResourceStatusAssigned    = "assigned"
	ResourceStatusMaintenance = "maintenance"
	ResourceStatusRetired     = "retired"
)

// Resource classes.
const (
	ResourceTypeRoomFurniture  = "room_furniture"
	ResourceTypeEquipment      = "equipment"
	ResourceTypeSoftware       = "software"
	ResourceTypeOfficeSupplies = "office_supplies"
	ResourceTypeITResources    = "it_resources"
)

func ValidResourceStatus(status string) bool {
	switch status {
	case ResourceStatusUnassigned, ResourceStatusAssigned,
		ResourceStatusMaintenance, ResourceStatusRetired:
		return true
	}
	return false
}

func ValidResourceType(resourceType string) bool {
	switch resourceType {
	case ResourceTypeRoomFurniture, ResourceTypeEquipment, ResourceTypeSoftware,
		ResourceTypeOfficeSupplies, ResourceTypeITResources:
		return true
	}
	return false
}

// RegistryInfo is the provenance block every store-ledger entry carries.
type RegistryInfo struct {
	ExpenditureRegistryNo   string      `json:"expenditureRegistryNo" db:"expenditure_registry_no"`
	IncomingGoodsRegistryNo string      `json:"incomingGoodsRegistryNo" db:"incoming_goods_registry_no"`
	StockClassification     string      `json:"stockClassification" db:"stock_classification"`
	StoreNo                 string      `json:"storeNo" db:"store_no"`
	ShelfNo                 string      `json:"shelfNo" db:"shelf_no"`
	OutgoingGoodsRegistryNo string      `json:"outgoingGoodsRegistryNo" db:"outgoing_goods_registry_no"`
	OrderNo                 string      `json:"orderNo" db:"order_no"`
	DateOf                  time.Time   `json:"dateOf" db:"date_of"`
	SignatoryName           null.String `json:"signatoryName,omitempty" db:"signatory_name"`
	SignatoryDate           null.Time   `json:"signatoryDate,omitempty" db:"signatory_date"`
}

type Resource struct {
	ID         uint64 `json:"id" db:"id"`
	Department string `json:"department" db:"department"`

	RegistryInfo RegistryInfo `json:"registryInfo"`

	Description string      `json:"description" db:"description"`
	Model       null.String `json:"model,omitempty" db:"model"`
	Serial      null.String `json:"serial,omitempty" db:"serial"`
	FromNo      null.String `json:"fromNo,omitempty" db:"from_no"`
	ToNo        null.String `json:"toNo,omitempty" db:"to_no"`

	Quantity   int64       `json:"quantity" db:"quantity"`
	UnitPrice  types.Money `json:"unitPrice"`
	TotalPrice types.Money `json:"totalPrice"`

	ResourceType string      `json:"resourceType" db:"resource_type"`
	Status       string      `json:"status" db:"status"`
	Location     null.String `json:"location,omitempty" db:"location"`
	Remarks      null.String `json:"remarks,omitempty" db:"remarks"`

	AssignedTo null.Int64 `json:"assignedTo,omitempty" db:"assigned_to"`
	CreatedBy  uint64     `json:"createdBy" db:"created_by"`

	types.BaseEntity
}
