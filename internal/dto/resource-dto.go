package dto

import "time"

// MoneyDTO carries an exact birr amount as two integers.
type MoneyDTO struct {
	Birr  int64 `json:"birr" validate:"gte=0"`
	Cents int64 `json:"cents" validate:"gte=0,lte=99"`
}

type RegistryInfoDTO struct {
	ExpenditureRegistryNo   string     `json:"expenditureRegistryNo" validate:"required"`
	IncomingGoodsRegistryNo string     `json:"incomingGoodsRegistryNo" validate:"required"`
	StockClassification     string     `json:"stockClassification" validate:"required"`
	StoreNo                 string     `json:"storeNo" validate:"required"`
	ShelfNo                 string     `json:"shelfNo" validate:"required"`
	OutgoingGoodsRegistryNo string     `json:"outgoingGoodsRegistryNo" validate:"required"`
	OrderNo                 string     `json:"orderNo" validate:"required"`
	DateOf                  time.Time  `json:"dateOf" validate:"required"`
	SignatoryName           *string    `json:"signatoryName"`
	SignatoryDate           *time.Time `json:"signatoryDate"`
}

type CreateResourceDTO struct {
	Department string `json:"department" validate:"omitempty,department"`

	RegistryInfo RegistryInfoDTO `json:"registryInfo" validate:"required"`

	Description string  `json:"description" validate:"required"`
	Model       *string `json:"model"`
	Serial      *string `json:"serial"`
	FromNo      *string `json:"fromNo"`
	ToNo        *string `json:"toNo"`

	Quantity  int64    `json:"quantity" validate:"required,gt=0"`
	UnitPrice MoneyDTO `json:"unitPrice" validate:"required"`

	ResourceType string  `json:"resourceType" validate:"required,resource_type"`
	Status       string  `json:"status" validate:"omitempty,resource_status"`
	Location     *string `json:"location"`
	Remarks      *string `json:"remarks"`

	AssignedTo *uint64 `json:"assignedTo"`
}

// UpdateResourceDTO has every field optional: absent fields keep their
// stored value.
type UpdateResourceDTO struct {
	Department *string `json:"department" validate:"omitempty,department"`

	RegistryInfo *RegistryInfoDTO `json:"registryInfo"`

	Description *string `json:"description" validate:"omitempty,min=1"`
	Model       *string `json:"model"`
	Serial      *string `json:"serial"`
	FromNo      *string `json:"fromNo"`
	ToNo        *string `json:"toNo"`

	Quantity  *int64    `json:"quantity" validate:"omitempty,gt=0"`
	UnitPrice *MoneyDTO `json:"unitPrice"`

	ResourceType *string `json:"resourceType" validate:"omitempty,resource_type"`
	Status       *string `json:"status" validate:"omitempty,resource_status"`
	Location     *string `json:"location"`
	Remarks      *string `json:"remarks"`

	AssignedTo *uint64 `json:"assignedTo"`
}

// ResourceStatsRow is one aggregation bucket.
type ResourceStatsRow struct {
	Key        string `json:"key"`
	Count      int64  `json:"count"`
	Quantity   int64  `json:"quantity"`
	TotalBirr  int64  `json:"totalBirr"`
	TotalCents int64  `json:"totalCents"`
}

// ResourceStatsDTO groups inventory totals by type and by status.
type ResourceStatsDTO struct {
	Department string             `json:"department,omitempty"`
	Total      ResourceStatsRow   `json:"total"`
	ByType     []ResourceStatsRow `json:"byType"`
	ByStatus   []ResourceStatsRow `json:"byStatus"`
}
