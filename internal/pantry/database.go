package pantry

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/pantrykit/pantry-tracker/internal/enrichment"
)

const (
	pantryBucketName    = "pantry_items"
	knowledgeBucketName = "knowledge"
	mealPlanBucketName  = "meal_plans"
)

// DB defines the interface for database operations. Pantry items and meal
// plans are namespaced per user; knowledge records are global.
type DB interface {
	// SavePantryItem saves a pantry item under its user's namespace
	SavePantryItem(item *PantryItem) error

	// GetPantryItem retrieves one of a user's pantry items by ID
	GetPantryItem(userID, id string) (*PantryItem, error)

	// ListPantryItems returns all pantry items for a user
	ListPantryItems(userID string) ([]*PantryItem, error)

	// DeletePantryItem removes one of a user's pantry items
	DeletePantryItem(userID, id string) error

	// SaveMealPlan saves a meal plan under its user's namespace
	SaveMealPlan(plan *MealPlan) error

	// GetMealPlan retrieves one of a user's meal plans by ID
	GetMealPlan(userID, id string) (*MealPlan, error)

	// ListMealPlans returns all meal plans for a user
	ListMealPlans(userID string) ([]*MealPlan, error)

	// DeleteMealPlan removes one of a user's meal plans
	DeleteMealPlan(userID, id string) error

	// KnowledgeStore provides the global knowledge cache operations
	enrichment.KnowledgeStore

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db         *bbolt.DB
	timeSource TimeSource
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	return NewBoltDBWithDeps(path, &defaultTimeSource{})
}

// NewBoltDBWithDeps creates a new BoltDB instance with a custom time
// source for testing
func NewBoltDBWithDeps(path string, timeSrc TimeSource) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	// Create buckets if they don't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{pantryBucketName, knowledgeBucketName, mealPlanBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db, timeSource: timeSrc}, nil
}

// userBucket returns (creating if needed) the per-user sub-bucket inside a
// top-level bucket
func userBucket(tx *bbolt.Tx, bucketName, userID string) (*bbolt.Bucket, error) {
	return tx.Bucket([]byte(bucketName)).CreateBucketIfNotExists([]byte(userID))
}

// SavePantryItem saves a pantry item under its user's namespace
func (b *BoltDB) SavePantryItem(item *PantryItem) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, pantryBucketName, item.UserID)
		if err != nil {
			return fmt.Errorf("creating user bucket: %w", err)
		}
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshaling pantry item: %w", err)
		}
		return bucket.Put([]byte(item.ID), data)
	})
}

// GetPantryItem retrieves one of a user's pantry items by ID
func (b *BoltDB) GetPantryItem(userID, id string) (*PantryItem, error) {
	var item *PantryItem
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(pantryBucketName)).Bucket([]byte(userID))
		if bucket == nil {
			return fmt.Errorf("pantry item not found: %s", id)
		}
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("pantry item not found: %s", id)
		}
		return json.Unmarshal(data, &item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListPantryItems returns all pantry items for a user
func (b *BoltDB) ListPantryItems(userID string) ([]*PantryItem, error) {
	items := make([]*PantryItem, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(pantryBucketName)).Bucket([]byte(userID))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var item PantryItem
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshaling pantry item: %w", err)
			}
			items = append(items, &item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeletePantryItem removes one of a user's pantry items
func (b *BoltDB) DeletePantryItem(userID, id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(pantryBucketName)).Bucket([]byte(userID))
		if bucket == nil || bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("pantry item not found: %s", id)
		}
		return bucket.Delete([]byte(id))
	})
}

// SaveMealPlan saves a meal plan under its user's namespace
func (b *BoltDB) SaveMealPlan(plan *MealPlan) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, mealPlanBucketName, plan.UserID)
		if err != nil {
			return fmt.Errorf("creating user bucket: %w", err)
		}
		data, err := json.Marshal(plan)
		if err != nil {
			return fmt.Errorf("marshaling meal plan: %w", err)
		}
		return bucket.Put([]byte(plan.ID), data)
	})
}

// GetMealPlan retrieves one of a user's meal plans by ID
func (b *BoltDB) GetMealPlan(userID, id string) (*MealPlan, error) {
	var plan *MealPlan
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(mealPlanBucketName)).Bucket([]byte(userID))
		if bucket == nil {
			return fmt.Errorf("meal plan not found: %s", id)
		}
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("meal plan not found: %s", id)
		}
		return json.Unmarshal(data, &plan)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// ListMealPlans returns all meal plans for a user
func (b *BoltDB) ListMealPlans(userID string) ([]*MealPlan, error) {
	plans := make([]*MealPlan, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(mealPlanBucketName)).Bucket([]byte(userID))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var plan MealPlan
			if err := json.Unmarshal(v, &plan); err != nil {
				return fmt.Errorf("unmarshaling meal plan: %w", err)
			}
			plans = append(plans, &plan)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// DeleteMealPlan removes one of a user's meal plans
func (b *BoltDB) DeleteMealPlan(userID, id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(mealPlanBucketName)).Bucket([]byte(userID))
		if bucket == nil || bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("meal plan not found: %s", id)
		}
		return bucket.Delete([]byte(id))
	})
}

// LookupKnowledge returns the knowledge record for a canonical name, or
// nil when no record exists
func (b *BoltDB) LookupKnowledge(canonicalName string) (*enrichment.KnowledgeRecord, error) {
	var record *enrichment.KnowledgeRecord
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(knowledgeBucketName)).Get([]byte(canonicalName))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, fmt.Errorf("looking up knowledge: %w", err)
	}
	return record, nil
}

// RecordKnowledgeUsage increments the usage count of an existing record
func (b *BoltDB) RecordKnowledgeUsage(canonicalName string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(knowledgeBucketName))
		data := bucket.Get([]byte(canonicalName))
		if data == nil {
			return fmt.Errorf("knowledge record not found: %s", canonicalName)
		}
		var record enrichment.KnowledgeRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("unmarshaling knowledge record: %w", err)
		}
		record.UsageCount++
		updated, err := json.Marshal(&record)
		if err != nil {
			return fmt.Errorf("marshaling knowledge record: %w", err)
		}
		return bucket.Put([]byte(canonicalName), updated)
	})
}

// LearnKnowledge creates a knowledge record for a canonical name. The
// read-modify-write runs inside a single bbolt update transaction, so two
// receipts racing to learn the same name cannot both create: the loser
// sees the winner's record and increments its usage count instead.
func (b *BoltDB) LearnKnowledge(canonicalName string, details enrichment.ItemDetails) (*enrichment.KnowledgeRecord, error) {
	var record enrichment.KnowledgeRecord
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(knowledgeBucketName))
		if data := bucket.Get([]byte(canonicalName)); data != nil {
			if err := json.Unmarshal(data, &record); err != nil {
				return fmt.Errorf("unmarshaling knowledge record: %w", err)
			}
			record.UsageCount++
		} else {
			record = enrichment.KnowledgeRecord{
				CanonicalName:     canonicalName,
				TypicalExpiryDays: details.TypicalExpiryDays,
				Perishable:        details.Perishable,
				Category:          details.Category,
				TypicalUnit:       details.TypicalUnit,
				CaloriesPerUnit:   details.CaloriesPerUnit,
				UsageCount:        1,
				CreatedAt:         b.timeSource.Now(),
			}
		}
		data, err := json.Marshal(&record)
		if err != nil {
			return fmt.Errorf("marshaling knowledge record: %w", err)
		}
		return bucket.Put([]byte(canonicalName), data)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
