package parsing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TokenizeLine", func() {
	var (
		line string
		item CandidateItem
		ok   bool
	)

	JustBeforeEach(func() {
		item, ok = TokenizeLine(line)
	})

	When("the line has a quantity prefix and a trailing price", func() {
		BeforeEach(func() {
			line = "2x Bananas $3.99"
		})

		It("produces a candidate", func() {
			Expect(ok).To(BeTrue())
		})

		It("extracts the item name", func() {
			Expect(item.ReceiptName).To(Equal("Bananas"))
		})

		It("extracts the quantity", func() {
			Expect(item.Quantity).To(Equal("2"))
		})
	})

	When("the line is a bare item name", func() {
		BeforeEach(func() {
			line = "Milk"
		})

		It("produces a candidate", func() {
			Expect(ok).To(BeTrue())
		})

		It("keeps the whole line as the name", func() {
			Expect(item.ReceiptName).To(Equal("Milk"))
		})

		It("defaults the quantity to 1", func() {
			Expect(item.Quantity).To(Equal("1"))
		})
	})

	When("the line has a price without a currency symbol", func() {
		BeforeEach(func() {
			line = "Milk 2.50"
		})

		It("strips the price from the name", func() {
			Expect(ok).To(BeTrue())
			Expect(item.ReceiptName).To(Equal("Milk"))
		})
	})

	When("the quantity has no x suffix", func() {
		BeforeEach(func() {
			line = "3 Avocados $4.50"
		})

		It("extracts the quantity digits", func() {
			Expect(ok).To(BeTrue())
			Expect(item.Quantity).To(Equal("3"))
			Expect(item.ReceiptName).To(Equal("Avocados"))
		})
	})

	When("the quantity uses an uppercase X", func() {
		BeforeEach(func() {
			line = "4X Yogurt $5.00"
		})

		It("matches case-insensitively", func() {
			Expect(ok).To(BeTrue())
			Expect(item.Quantity).To(Equal("4"))
			Expect(item.ReceiptName).To(Equal("Yogurt"))
		})
	})

	When("stripping the price leaves a name that is too short", func() {
		BeforeEach(func() {
			line = "ab $3.99"
		})

		It("drops the candidate", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("a written quantity does not match the digit pattern", func() {
		BeforeEach(func() {
			line = "a dozen eggs"
		})

		It("defaults the quantity to 1", func() {
			Expect(ok).To(BeTrue())
			Expect(item.Quantity).To(Equal("1"))
			Expect(item.ReceiptName).To(Equal("a dozen eggs"))
		})
	})
})
