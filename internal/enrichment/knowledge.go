package enrichment

import "time"

// KnowledgeRecord is learned metadata about a canonical food name. Records
// are shared across all users and keyed uniquely by canonical name; once
// created they are never deleted, and usage_count only ever grows.
type KnowledgeRecord struct {
	CanonicalName     string    `json:"canonical_name"`
	TypicalExpiryDays *int      `json:"typical_expiry_days,omitempty"`
	Perishable        bool      `json:"perishable"`
	Category          string    `json:"category,omitempty"`
	TypicalUnit       string    `json:"typical_unit,omitempty"`
	CaloriesPerUnit   *float64  `json:"calories_per_unit,omitempty"`
	UsageCount        int       `json:"usage_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// ItemDetails holds the attributes learned about a food item from the
// detail lookup collaborator
type ItemDetails struct {
	TypicalExpiryDays *int
	Perishable        bool
	Category          string
	TypicalUnit       string
	CaloriesPerUnit   *float64
}

// KnowledgeStore defines the interface for the shared knowledge cache
type KnowledgeStore interface {
	// LookupKnowledge returns the record for a canonical name, or nil
	// when no record exists
	LookupKnowledge(canonicalName string) (*KnowledgeRecord, error)

	// RecordKnowledgeUsage increments the usage count of an existing
	// record and persists the increment
	RecordKnowledgeUsage(canonicalName string) error

	// LearnKnowledge creates a record for a canonical name. When a
	// concurrent writer created the record first, the store converts the
	// create into a usage increment instead of failing or duplicating.
	LearnKnowledge(canonicalName string, details ItemDetails) (*KnowledgeRecord, error)
}

// ResolutionSource tags how a knowledge record was obtained
type ResolutionSource int

const (
	// ResolutionCached means the record already existed in the cache
	ResolutionCached ResolutionSource = iota
	// ResolutionLearned means the record was learned from the detail
	// lookup collaborator during this resolution
	ResolutionLearned
)

// Resolution is the outcome of resolving a canonical name against the
// knowledge cache
type Resolution struct {
	Record *KnowledgeRecord
	Source ResolutionSource
}
