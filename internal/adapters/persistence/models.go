package persistence

import (
	"time"
)

// EmpireModel represents the empires table
type EmpireModel struct {
	ID           int       `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Credits      int64     `gorm:"column:credits;not null;default:0"`
	TechLevels   string    `gorm:"column:tech_levels;type:text"` // JSON map as text
	UnitCounts   string    `gorm:"column:unit_counts;type:text"` // JSON map as text
	LastIncomeAt time.Time `gorm:"column:last_income_at"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (EmpireModel) TableName() string {
	return "empires"
}

// BaseModel represents the bases table
type BaseModel struct {
	Coord       string `gorm:"column:coord;primaryKey"`
	Name        string `gorm:"column:name"`
	EmpireID    *int   `gorm:"column:empire_id;index"` // NULL = unowned
	SolarEnergy int    `gorm:"column:solar_energy;not null;default:0"`
	Fertility   int    `gorm:"column:fertility;not null;default:0"`
	Area        int    `gorm:"column:area;not null;default:0"`
}

func (BaseModel) TableName() string {
	return "bases"
}

// RecordModel represents the base_records table: one row per
// (base, catalog key) for structures and defenses alike
type RecordModel struct {
	Coord                 string     `gorm:"column:coord;primaryKey"`
	CatalogKey            string     `gorm:"column:catalog_key;primaryKey"`
	Kind                  string     `gorm:"column:kind;not null"`
	Level                 int        `gorm:"column:level;not null;default:0"`
	IsActive              bool       `gorm:"column:is_active;not null;default:false"`
	PendingUpgrade        bool       `gorm:"column:pending_upgrade;not null;default:false"`
	CreditsCost           int64      `gorm:"column:credits_cost;not null;default:0"`
	ConstructionStarted   *time.Time `gorm:"column:construction_started"`
	ConstructionCompleted *time.Time `gorm:"column:construction_completed"`
}

func (RecordModel) TableName() string {
	return "base_records"
}

// QueueEntryModel represents the queue_entries table. Seq is the
// autoincrement primary key giving strict creation order. The composite
// unique index on (identity_key, live) is the idempotency backstop: live is
// 1 for non-terminal rows and NULL for terminal ones, and NULLs never
// collide, so at most one live row per identity key can exist.
type QueueEntryModel struct {
	Seq         int64      `gorm:"column:seq;primaryKey;autoIncrement"`
	ID          string     `gorm:"column:id;uniqueIndex;not null"`
	Type        string     `gorm:"column:type;not null;index"`
	IdentityKey string     `gorm:"column:identity_key;not null;uniqueIndex:ux_queue_identity_live,priority:1"`
	Live        *int8      `gorm:"column:live;uniqueIndex:ux_queue_identity_live,priority:2"`
	EmpireID    int        `gorm:"column:empire_id;not null;index"`
	Coord       string     `gorm:"column:coord;not null;index"`
	CatalogKey  string     `gorm:"column:catalog_key;not null"`
	Quantity    int        `gorm:"column:quantity;not null;default:1"`
	TargetLevel int        `gorm:"column:target_level;not null;default:0"`
	EnergyDelta int        `gorm:"column:energy_delta;not null;default:0"`
	CreditsCost int64      `gorm:"column:credits_cost;not null;default:0"`
	Status      string     `gorm:"column:status;not null;index"`
	StartedAt   *time.Time `gorm:"column:started_at"`
	CompletesAt *time.Time `gorm:"column:completes_at;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (QueueEntryModel) TableName() string {
	return "queue_entries"
}

// TransactionModel represents the credit_transactions journal table.
// Rows are append-only; nothing ever updates or deletes them.
type TransactionModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	EmpireID      int       `gorm:"column:empire_id;not null;index"`
	Timestamp     time.Time `gorm:"column:timestamp;not null;index"`
	Type          string    `gorm:"column:type;not null;index"`
	Category      string    `gorm:"column:category;not null"`
	Amount        int64     `gorm:"column:amount;not null"`
	BalanceBefore int64     `gorm:"column:balance_before;not null"`
	BalanceAfter  int64     `gorm:"column:balance_after;not null"`
	Description   string    `gorm:"column:description"`
	EntryID       string    `gorm:"column:entry_id;index"`
	CatalogKey    string    `gorm:"column:catalog_key"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (TransactionModel) TableName() string {
	return "credit_transactions"
}
