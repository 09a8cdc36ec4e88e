package pantry

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pantrykit/pantry-tracker/internal/enrichment"
	"github.com/pantrykit/pantry-tracker/internal/mealplan"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SavePantryItem", func() {
		var (
			item *PantryItem
			err  error
		)

		BeforeEach(func() {
			item = &PantryItem{
				ID:        "item-1",
				UserID:    "alice",
				ItemName:  "Banana",
				Quantity:  2,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
		})

		JustBeforeEach(func() {
			err = db.SavePantryItem(item)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should save the item under the user's namespace", func() {
				saved, getErr := db.GetPantryItem("alice", "item-1")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.ItemName).To(Equal("Banana"))
			})

			It("should not leak the item into another user's namespace", func() {
				_, getErr := db.GetPantryItem("bob", "item-1")
				Expect(getErr).To(HaveOccurred())
			})
		})
	})

	Describe("ListPantryItems", func() {
		var (
			items []*PantryItem
			err   error
		)

		JustBeforeEach(func() {
			items, err = db.ListPantryItems("alice")
		})

		When("the user has items", func() {
			BeforeEach(func() {
				Expect(db.SavePantryItem(&PantryItem{ID: "a", UserID: "alice", ItemName: "Banana"})).To(Succeed())
				Expect(db.SavePantryItem(&PantryItem{ID: "b", UserID: "alice", ItemName: "Milk"})).To(Succeed())
				Expect(db.SavePantryItem(&PantryItem{ID: "c", UserID: "bob", ItemName: "Eggs"})).To(Succeed())
			})

			It("returns only that user's items", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(items).To(HaveLen(2))
			})
		})

		When("the user has no items", func() {
			It("returns an empty list", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(items).To(BeEmpty())
			})
		})
	})

	Describe("DeletePantryItem", func() {
		var (
			deleteID string
			err      error
		)

		BeforeEach(func() {
			deleteID = "item-1"
			Expect(db.SavePantryItem(&PantryItem{ID: "item-1", UserID: "alice", ItemName: "Banana"})).To(Succeed())
		})

		JustBeforeEach(func() {
			err = db.DeletePantryItem("alice", deleteID)
		})

		When("the item exists", func() {
			It("removes it", func() {
				Expect(err).NotTo(HaveOccurred())
				_, getErr := db.GetPantryItem("alice", "item-1")
				Expect(getErr).To(HaveOccurred())
			})
		})

		When("the item does not exist", func() {
			BeforeEach(func() {
				deleteID = "nonexistent"
			})

			It("returns an error", func() {
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("LookupKnowledge", func() {
		var (
			record *enrichment.KnowledgeRecord
			err    error
		)

		JustBeforeEach(func() {
			record, err = db.LookupKnowledge("Banana")
		})

		When("no record exists", func() {
			It("returns nil without an error", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(record).To(BeNil())
			})
		})

		When("a record exists", func() {
			BeforeEach(func() {
				_, learnErr := db.LearnKnowledge("Banana", enrichment.DefaultDetails())
				Expect(learnErr).NotTo(HaveOccurred())
			})

			It("returns the record", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(record).NotTo(BeNil())
				Expect(record.CanonicalName).To(Equal("Banana"))
				Expect(record.UsageCount).To(Equal(1))
			})
		})
	})

	Describe("LearnKnowledge", func() {
		var (
			record *enrichment.KnowledgeRecord
			err    error
		)

		JustBeforeEach(func() {
			record, err = db.LearnKnowledge("Banana", enrichment.DefaultDetails())
		})

		When("the name is new", func() {
			It("creates a record with usage count 1", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(record.UsageCount).To(Equal(1))
				Expect(*record.TypicalExpiryDays).To(Equal(7))
				Expect(record.TypicalUnit).To(Equal("piece"))
			})
		})

		When("the database has an injected time source", func() {
			var fixed time.Time

			JustBeforeEach(func() {
				fixed = time.Date(2024, 5, 30, 12, 0, 0, 0, time.UTC)
				tdb, openErr := NewBoltDBWithDeps(filepath.Join(tmpDir, "fixed.db"), &stubTimeSource{now: fixed})
				Expect(openErr).NotTo(HaveOccurred())
				defer tdb.Close()
				record, err = tdb.LearnKnowledge("Banana", enrichment.DefaultDetails())
			})

			It("stamps the creation time from the time source", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(record.CreatedAt).To(Equal(fixed))
			})
		})

		When("another writer created the record first", func() {
			BeforeEach(func() {
				_, learnErr := db.LearnKnowledge("Banana", enrichment.DefaultDetails())
				Expect(learnErr).NotTo(HaveOccurred())
			})

			It("converts the create into an increment", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(record.UsageCount).To(Equal(2))
			})

			It("keeps a single record", func() {
				saved, lookupErr := db.LookupKnowledge("Banana")
				Expect(lookupErr).NotTo(HaveOccurred())
				Expect(saved.UsageCount).To(Equal(2))
			})
		})
	})

	Describe("RecordKnowledgeUsage", func() {
		var err error

		JustBeforeEach(func() {
			err = db.RecordKnowledgeUsage("Banana")
		})

		When("the record exists", func() {
			BeforeEach(func() {
				_, learnErr := db.LearnKnowledge("Banana", enrichment.DefaultDetails())
				Expect(learnErr).NotTo(HaveOccurred())
			})

			It("increments the usage count", func() {
				Expect(err).NotTo(HaveOccurred())
				record, lookupErr := db.LookupKnowledge("Banana")
				Expect(lookupErr).NotTo(HaveOccurred())
				Expect(record.UsageCount).To(Equal(2))
			})
		})

		When("the record does not exist", func() {
			It("returns an error", func() {
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("meal plans", func() {
		var plan *MealPlan

		BeforeEach(func() {
			plan = &MealPlan{
				ID:     "plan-1",
				UserID: "alice",
				Name:   "Week of June 1",
				Meals: []mealplan.Meal{
					{Name: "Banana Smoothie", MealType: "breakfast"},
				},
				CreatedAt: time.Now(),
			}
			Expect(db.SaveMealPlan(plan)).To(Succeed())
		})

		It("round-trips a meal plan", func() {
			saved, err := db.GetMealPlan("alice", "plan-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Name).To(Equal("Week of June 1"))
			Expect(saved.Meals).To(HaveLen(1))
			Expect(saved.Meals[0].Name).To(Equal("Banana Smoothie"))
		})

		It("lists a user's meal plans", func() {
			plans, err := db.ListMealPlans("alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(plans).To(HaveLen(1))
		})

		It("deletes a meal plan", func() {
			Expect(db.DeleteMealPlan("alice", "plan-1")).To(Succeed())
			_, err := db.GetMealPlan("alice", "plan-1")
			Expect(err).To(HaveOccurred())
		})
	})
})
