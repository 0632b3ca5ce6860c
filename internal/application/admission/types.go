package admission

import (
	"time"

	"github.com/astrokernel/imperium/internal/domain/capacity"
	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/queue"
)

// StartResult is the success payload of every admission command
type StartResult struct {
	Entry           *queue.Entry
	EtaMinutes      int
	CapacityPerHour int
}

// CancelResult reports what a cancellation did. Repeating a cancel on an
// already-terminal entry succeeds with a zero refund.
type CancelResult struct {
	CancelledID     string `json:"cancelledId"`
	RevertedUpgrade bool   `json:"revertedUpgrade"`
	Deleted         bool   `json:"deleted"`
	RefundedCredits int64  `json:"refundedCredits"`
}

// BaseStatus is the read model for one base: derived snapshots plus live queues
type BaseStatus struct {
	Coord      string              `json:"coord"`
	Name       string              `json:"name"`
	Energy     ledger.EnergyReport `json:"energy"`
	Capacities capacity.Capacities `json:"capacities"`

	AreaUsed           int `json:"areaUsed"`
	AreaTotal          int `json:"areaTotal"`
	PopulationUsed     int `json:"populationUsed"`
	PopulationCapacity int `json:"populationCapacity"`

	Structures []RecordStatus `json:"structures"`
	Defenses   []RecordStatus `json:"defenses"`
	Queue      []EntryStatus  `json:"queue"`
}

// RecordStatus is the wire view of one structure/defense record
type RecordStatus struct {
	CatalogKey     string `json:"catalogKey"`
	Level          int    `json:"level"`
	IsActive       bool   `json:"isActive"`
	PendingUpgrade bool   `json:"pendingUpgrade"`
	CreditsCost    int64  `json:"creditsCost"`
}

// EntryStatus is the wire view of one live queue entry
type EntryStatus struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	CatalogKey  string `json:"catalogKey"`
	Quantity    int    `json:"quantity,omitempty"`
	TargetLevel int    `json:"targetLevel,omitempty"`
	Status      string `json:"status"`
	CreditsCost int64  `json:"creditsCost"`
	EtaSeconds  int64  `json:"etaSeconds"`
}

// CatalogList is the static buildable catalog of one queue kind
type CatalogList struct {
	Kind  string            `json:"kind"`
	Items []CatalogItemView `json:"items"`
}

// CatalogItemView is the client-facing shape of one catalog spec
type CatalogItemView struct {
	Key                   string         `json:"key"`
	Credits               int64          `json:"credits"`
	EnergyDelta           int            `json:"energyDelta"`
	AreaCost              int            `json:"areaCost,omitempty"`
	PopulationCost        int            `json:"populationCost,omitempty"`
	TechPrereqs           map[string]int `json:"techPrereqs,omitempty"`
	RequiredShipyardLevel int            `json:"requiredShipyardLevel,omitempty"`
}

// TransactionLog is one page of an empire's credit journal
type TransactionLog struct {
	Transactions []TransactionView `json:"transactions"`
	Total        int64             `json:"total"`
}

// TransactionView is the wire view of one journal row
type TransactionView struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	Amount        int64     `json:"amount"`
	BalanceBefore int64     `json:"balanceBefore"`
	BalanceAfter  int64     `json:"balanceAfter"`
	Description   string    `json:"description,omitempty"`
	EntryID       string    `json:"entryId,omitempty"`
	CatalogKey    string    `json:"catalogKey,omitempty"`
}

// EmpireOverview is the read model for one empire
type EmpireOverview struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	Credits    int64          `json:"credits"`
	TechLevels map[string]int `json:"techLevels"`
	UnitCounts map[string]int `json:"unitCounts"`
	Bases      []string       `json:"bases"`
}
